// internal/models/common.go
package models

// Location is a fully resolved address. Geocoding happens in the client
// before submission; the server only ever sees the final components.
type Location struct {
	Place     string  `bson:"place" json:"place"`
	District  string  `bson:"district" json:"district"`
	State     string  `bson:"state" json:"state"`
	Pincode   string  `bson:"pincode" json:"pincode"`
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
}

// Dimensions of a single material item, in feet.
type Dimensions struct {
	LengthFt float64 `bson:"lengthFt" json:"lengthFt"`
	WidthFt  float64 `bson:"widthFt" json:"widthFt"`
	HeightFt float64 `bson:"heightFt" json:"heightFt"`
}

// Material is one item inside a load. Photos are opaque URLs returned by
// the photo upload endpoint.
type Material struct {
	Name          string     `bson:"name" json:"name"`
	TotalWeightKg float64    `bson:"totalWeightKg" json:"totalWeightKg"`
	Dimensions    Dimensions `bson:"dimensions" json:"dimensions"`
	PackType      string     `bson:"packType" json:"packType"`
	Photos        []string   `bson:"photos,omitempty" json:"photos"`
}
