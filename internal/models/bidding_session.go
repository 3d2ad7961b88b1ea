// internal/models/bidding_session.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SessionStatus string

// Session status is derived from the clock against [StartTime, EndTime) and
// is never stored on the document.
const (
	SessionScheduled SessionStatus = "scheduled"
	SessionOpen      SessionStatus = "open"
	SessionClosed    SessionStatus = "closed"
)

// Bid is one vehicle owner's offer inside a bidding session. A vehicle holds
// at most one bid per session; re-bidding overwrites amount and timestamp.
type Bid struct {
	VehicleID string    `bson:"vehicleID" json:"vehicleID"`
	OwnerID   string    `bson:"ownerID" json:"ownerID"`
	OwnerName string    `bson:"ownerName" json:"ownerName"`
	Amount    float64   `bson:"amount" json:"amount"`
	PlacedAt  time.Time `bson:"placedAt" json:"placedAt"`
}

// BiddingSession is a time-windowed auction for a load. At most one
// non-closed session exists per load. Min/MaxBidAmount of zero means the
// bound is not set.
type BiddingSession struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	LoadID          string             `bson:"loadID" json:"loadID"`
	CreatedBy       string             `bson:"createdBy" json:"createdBy"`
	StartTime       time.Time          `bson:"startTime" json:"startTime"`
	EndTime         time.Time          `bson:"endTime" json:"endTime"`
	MinBidAmount    float64            `bson:"minBidAmount,omitempty" json:"minBidAmount,omitempty"`
	MaxBidAmount    float64            `bson:"maxBidAmount,omitempty" json:"maxBidAmount,omitempty"`
	Bids            []Bid              `bson:"bids" json:"bids"`
	WinnerVehicleID string             `bson:"winnerVehicleID,omitempty" json:"winnerVehicleID,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
}

// FindBid returns the bid placed for the given vehicle, or nil.
func (s *BiddingSession) FindBid(vehicleID string) *Bid {
	for i := range s.Bids {
		if s.Bids[i].VehicleID == vehicleID {
			return &s.Bids[i]
		}
	}
	return nil
}
