// internal/models/vehicle.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	VehicleStatusAvailable   = "AVAILABLE"
	VehicleStatusUnavailable = "UNAVAILABLE"
)

// OperatingArea is the area a vehicle owner prefers to take loads in.
type OperatingArea struct {
	State    string `bson:"state" json:"state"`
	District string `bson:"district" json:"district"`
	Place    string `bson:"place" json:"place"`
}

type Vehicle struct {
	ID                     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID                string             `bson:"ownerID" json:"ownerID"`
	VehicleNumber          string             `bson:"vehicleNumber" json:"vehicleNumber"` // registration plate
	VehicleType            string             `bson:"vehicleType" json:"vehicleType"`     // e.g. "10-wheel"
	VehicleSizeFt          float64            `bson:"vehicleSizeFt" json:"vehicleSizeFt"`
	PassingLimitTons       float64            `bson:"passingLimitTons" json:"passingLimitTons"`
	TrailerType            string             `bson:"trailerType" json:"trailerType"`
	Availability           time.Time          `bson:"availability" json:"availability"` // earliest date the vehicle is free
	Status                 string             `bson:"status" json:"status"`             // AVAILABLE, UNAVAILABLE
	IsApproved             bool               `bson:"isApproved" json:"isApproved"`
	PreferredOperatingArea OperatingArea      `bson:"preferredOperatingArea" json:"preferredOperatingArea"`
	Rating                 float64            `bson:"rating" json:"rating"`
	TotalTrips             int                `bson:"totalTrips" json:"totalTrips"`
	Photos                 []string           `bson:"photos,omitempty" json:"photos"`
	CreatedAt              time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt              time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// MatchedVehicle is a per-load view of a vehicle: the vehicle itself plus
// the compatibility result and the caller's application state for that load.
// It is computed on demand and never persisted.
type MatchedVehicle struct {
	Vehicle            Vehicle `json:"vehicle"`
	CompatibilityScore int     `json:"compatibilityScore"`
	Eligible           bool    `json:"eligible"`
	IsRequested        bool    `json:"isRequested"`
	RequestStatus      string  `json:"requestStatus,omitempty"`
	BidPrice           float64 `json:"bidPrice,omitempty"`
}
