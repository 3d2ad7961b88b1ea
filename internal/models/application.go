// internal/models/application.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationRejected ApplicationStatus = "rejected"
)

// Terminal reports whether the application has reached a final state.
// accepted and rejected are both terminal; no transition leaves them.
func (s ApplicationStatus) Terminal() bool {
	return s == ApplicationAccepted || s == ApplicationRejected
}

// VehicleApplication is a vehicle owner's request to carry a load. The load
// owns its applications; each application references exactly one vehicle.
type VehicleApplication struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	LoadID           string             `bson:"loadID" json:"loadID"`
	VehicleID        string             `bson:"vehicleID" json:"vehicleID"`
	VehicleOwnerID   string             `bson:"vehicleOwnerID" json:"vehicleOwnerID"`
	VehicleOwnerName string             `bson:"vehicleOwnerName" json:"vehicleOwnerName"`
	BidPrice         float64            `bson:"bidPrice" json:"bidPrice"`
	Message          string             `bson:"message,omitempty" json:"message,omitempty"`
	Status           ApplicationStatus  `bson:"status" json:"status"`
	AgreedPrice      float64            `bson:"agreedPrice,omitempty" json:"agreedPrice,omitempty"`
	AppliedAt        time.Time          `bson:"appliedAt" json:"appliedAt"`
	RespondedAt      *time.Time         `bson:"respondedAt,omitempty" json:"respondedAt,omitempty"`
}
