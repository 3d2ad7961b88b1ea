package matching

import (
	"testing"
	"time"

	"freight-match-api-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var sessionNow = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

// openSession returns a session whose window is [10:00, 12:00) on the test day.
func openSession() models.BiddingSession {
	return models.BiddingSession{
		ID:        primitive.NewObjectID(),
		LoadID:    primitive.NewObjectID().Hex(),
		StartTime: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		Bids:      []models.Bid{},
	}
}

func at(hour, min int) time.Time {
	return time.Date(2024, 1, 1, hour, min, 0, 0, time.UTC)
}

func TestNewSession(t *testing.T) {
	load := testLoad()

	s, err := NewSession(load, nil, at(10, 0), at(12, 0), 1000, 20000, "provider-1", sessionNow)
	require.NoError(t, err)
	assert.Equal(t, load.ID.Hex(), s.LoadID)
	assert.Equal(t, models.SessionScheduled, SessionStatus(s, sessionNow))
	assert.NotNil(t, s.Bids)
}

func TestNewSessionValidation(t *testing.T) {
	load := testLoad()

	tests := []struct {
		name       string
		start, end time.Time
		min, max   float64
		wantKind   Kind
	}{
		{"end before start", at(10, 0), at(9, 0), 0, 0, KindValidation},
		{"end equals start", at(10, 0), at(10, 0), 0, 0, KindValidation},
		{"start in the past", at(7, 0), at(12, 0), 0, 0, KindValidation},
		{"negative minimum", at(10, 0), at(12, 0), -1, 0, KindValidation},
		{"inverted bounds", at(10, 0), at(12, 0), 5000, 1000, KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSession(load, nil, tt.start, tt.end, tt.min, tt.max, "provider-1", sessionNow)
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, KindOf(err))
		})
	}
}

func TestNewSessionSingleActive(t *testing.T) {
	load := testLoad()
	active := openSession()

	// a scheduled or open session blocks a new one
	_, err := NewSession(load, &active, at(13, 0), at(15, 0), 0, 0, "provider-1", sessionNow)
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))

	// once the existing session is closed a new one is allowed
	later := at(12, 30)
	require.Equal(t, models.SessionClosed, SessionStatus(active, later))
	_, err = NewSession(load, &active, at(13, 0), at(15, 0), 0, 0, "provider-1", later)
	assert.NoError(t, err)
}

func TestSessionStatusDerivation(t *testing.T) {
	s := openSession()

	assert.Equal(t, models.SessionScheduled, SessionStatus(s, at(9, 59)))
	assert.Equal(t, models.SessionOpen, SessionStatus(s, at(10, 0)))
	assert.Equal(t, models.SessionOpen, SessionStatus(s, at(11, 59)))
	assert.Equal(t, models.SessionClosed, SessionStatus(s, at(12, 0)))
	assert.Equal(t, models.SessionClosed, SessionStatus(s, at(12, 1)))
}

func TestUpsertBidWindow(t *testing.T) {
	s := openSession()
	bid := models.Bid{VehicleID: "veh-1", OwnerID: "own-1", Amount: 5000}

	// 11:59 succeeds, 12:01 is a state error
	require.NoError(t, UpsertBid(&s, bid, at(11, 59)))

	err := UpsertBid(&s, bid, at(12, 1))
	require.Error(t, err)
	assert.Equal(t, KindState, KindOf(err))

	err = UpsertBid(&s, bid, at(9, 30))
	require.Error(t, err)
	assert.Equal(t, KindState, KindOf(err))
}

func TestUpsertBidOverwrites(t *testing.T) {
	s := openSession()

	require.NoError(t, UpsertBid(&s, models.Bid{VehicleID: "veh-1", Amount: 6000}, at(10, 30)))
	require.NoError(t, UpsertBid(&s, models.Bid{VehicleID: "veh-2", Amount: 5500}, at(10, 35)))
	require.NoError(t, UpsertBid(&s, models.Bid{VehicleID: "veh-1", Amount: 5200}, at(11, 0)))

	require.Len(t, s.Bids, 2, "same vehicle re-bidding must not add a record")
	b := s.FindBid("veh-1")
	require.NotNil(t, b)
	assert.Equal(t, 5200.0, b.Amount)
	assert.Equal(t, at(11, 0), b.PlacedAt)
}

func TestUpsertBidBounds(t *testing.T) {
	s := openSession()
	s.MinBidAmount = 1000
	s.MaxBidAmount = 8000
	now := at(10, 30)

	tests := []struct {
		name   string
		amount float64
		ok     bool
	}{
		{"below minimum", 900, false},
		{"at minimum", 1000, true},
		{"inside bounds", 4000, true},
		{"at maximum", 8000, true},
		{"above maximum", 8001, false},
		{"zero amount", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := UpsertBid(&s, models.Bid{VehicleID: "veh-" + tt.name, Amount: tt.amount}, now)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Equal(t, KindValidation, KindOf(err))
			}
		})
	}
}

func TestSelectWinner(t *testing.T) {
	s := openSession()
	require.NoError(t, UpsertBid(&s, models.Bid{VehicleID: "veh-1", Amount: 5000}, at(10, 30)))

	// before close the selection is a state error
	err := SelectWinner(&s, "veh-1", at(11, 0))
	require.Error(t, err)
	assert.Equal(t, KindState, KindOf(err))

	closed := at(12, 30)
	require.NoError(t, SelectWinner(&s, "veh-1", closed))
	assert.Equal(t, "veh-1", s.WinnerVehicleID)

	// terminal: even re-selecting the same vehicle conflicts
	err = SelectWinner(&s, "veh-1", closed)
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestSelectWinnerRequiresBid(t *testing.T) {
	s := openSession()
	require.NoError(t, UpsertBid(&s, models.Bid{VehicleID: "veh-1", Amount: 5000}, at(10, 30)))

	err := SelectWinner(&s, "veh-9", at(12, 30))
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Empty(t, s.WinnerVehicleID)
}
