// internal/models/load.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	LoadStatusOpen     = "OPEN"
	LoadStatusAssigned = "ASSIGNED"
)

// VehicleRequirement describes the vehicle a load provider is asking for.
type VehicleRequirement struct {
	VehicleType string  `bson:"vehicleType" json:"vehicleType"` // e.g. "10-wheel"
	SizeFt      float64 `bson:"sizeFt" json:"sizeFt"`
	TrailerType string  `bson:"trailerType" json:"trailerType"`
}

type Load struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProviderID         string             `bson:"providerID" json:"providerID"`
	LoadingLocation    Location           `bson:"loadingLocation" json:"loadingLocation"`
	UnloadingLocation  Location           `bson:"unloadingLocation" json:"unloadingLocation"`
	VehicleRequirement VehicleRequirement `bson:"vehicleRequirement" json:"vehicleRequirement"`
	Materials          []Material         `bson:"materials" json:"materials"`
	LoadingDate        time.Time          `bson:"loadingDate" json:"loadingDate"`
	PaymentTerms       string             `bson:"paymentTerms" json:"paymentTerms"`
	WithXBowSupport    bool               `bson:"withXBowSupport" json:"withXBowSupport"`
	Status             string             `bson:"status" json:"status"` // OPEN, ASSIGNED
	AssignedVehicleID  string             `bson:"assignedVehicleID,omitempty" json:"assignedVehicleID,omitempty"`
	// BiddingOpenUntil is the server-side reservation marker: while it lies
	// in the future the load has an active bidding session.
	BiddingOpenUntil time.Time `bson:"biddingOpenUntil,omitempty" json:"-"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// TotalWeightKg is always recomputed from the materials. The sum is never
// stored on the document, so a stale copy cannot disagree with the items.
func (l *Load) TotalWeightKg() float64 {
	var total float64
	for _, m := range l.Materials {
		total += m.TotalWeightKg
	}
	return total
}
