package matching

import (
	"time"

	"freight-match-api-server/internal/models"
)

// SessionStatus derives the lifecycle state of a session from the clock.
// The status is never stored; [StartTime, EndTime) is the single source.
func SessionStatus(s models.BiddingSession, now time.Time) models.SessionStatus {
	switch {
	case now.Before(s.StartTime):
		return models.SessionScheduled
	case now.Before(s.EndTime):
		return models.SessionOpen
	default:
		return models.SessionClosed
	}
}

// NewSession validates the window and the single-active-session invariant.
// active is the load's current non-closed session, nil if there is none;
// the caller is responsible for looking it up under the same consistency it
// uses to insert.
func NewSession(l models.Load, active *models.BiddingSession, start, end time.Time, minBid, maxBid float64, createdBy string, now time.Time) (models.BiddingSession, error) {
	if start.Before(now) {
		return models.BiddingSession{}, Validationf("start time must not be in the past")
	}
	if !end.After(start) {
		return models.BiddingSession{}, Validationf("end time must be after start time")
	}
	if minBid < 0 || maxBid < 0 {
		return models.BiddingSession{}, Validationf("bid bounds must not be negative")
	}
	if minBid > 0 && maxBid > 0 && minBid > maxBid {
		return models.BiddingSession{}, Validationf("minimum bid must not exceed maximum bid")
	}
	if active != nil && SessionStatus(*active, now) != models.SessionClosed {
		return models.BiddingSession{}, Conflictf("load %s already has an active bidding session", l.ID.Hex())
	}
	return models.BiddingSession{
		LoadID:       l.ID.Hex(),
		CreatedBy:    createdBy,
		StartTime:    start,
		EndTime:      end,
		MinBidAmount: minBid,
		MaxBidAmount: maxBid,
		Bids:         []models.Bid{},
		CreatedAt:    now,
	}, nil
}

// ValidateBid checks a bid against the session window and bounds. It does
// not mutate the session; UpsertBid applies the accepted bid.
func ValidateBid(s models.BiddingSession, amount float64, now time.Time) error {
	if status := SessionStatus(s, now); status != models.SessionOpen {
		return Statef("bidding session is %s, bids are only accepted while open", status)
	}
	if amount <= 0 {
		return Validationf("bid amount must be greater than zero")
	}
	if s.MinBidAmount > 0 && amount < s.MinBidAmount {
		return Validationf("bid amount %.2f is below the minimum of %.2f", amount, s.MinBidAmount)
	}
	if s.MaxBidAmount > 0 && amount > s.MaxBidAmount {
		return Validationf("bid amount %.2f is above the maximum of %.2f", amount, s.MaxBidAmount)
	}
	return nil
}

// UpsertBid places or updates a bid in the session. One bid per vehicle:
// re-invocation overwrites the previous amount and timestamp.
func UpsertBid(s *models.BiddingSession, bid models.Bid, now time.Time) error {
	if err := ValidateBid(*s, bid.Amount, now); err != nil {
		return err
	}
	bid.PlacedAt = now
	for i := range s.Bids {
		if s.Bids[i].VehicleID == bid.VehicleID {
			s.Bids[i] = bid
			return nil
		}
	}
	s.Bids = append(s.Bids, bid)
	return nil
}

// SelectWinner marks the winning vehicle once the session has closed.
// Selection is terminal: a second call fails even for the same vehicle.
func SelectWinner(s *models.BiddingSession, vehicleID string, now time.Time) error {
	if status := SessionStatus(*s, now); status != models.SessionClosed {
		return Statef("bidding session is %s, the winner can only be selected after close", status)
	}
	if s.WinnerVehicleID != "" {
		return Conflictf("a winner has already been selected for this session")
	}
	if s.FindBid(vehicleID) == nil {
		return Validationf("vehicle %s has no bid in this session", vehicleID)
	}
	s.WinnerVehicleID = vehicleID
	return nil
}
