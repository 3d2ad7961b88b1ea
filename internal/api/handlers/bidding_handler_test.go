package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The bid write filters carry the invariants: every write requires the
// window to still be open, the in-place rewrite requires an existing entry
// for the vehicle, and the first push requires its absence. Two concurrent
// first bids can therefore never both insert, and a close between
// validation and write modifies nothing.
func TestBidWriteFilters(t *testing.T) {
	sessionID := primitive.NewObjectID()
	now := time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC)

	update := bidUpdateFilter(sessionID, "veh-1", now)
	insert := bidInsertFilter(sessionID, "veh-1", now)

	for name, filter := range map[string]bson.M{"update": update, "insert": insert} {
		assert.Equal(t, sessionID, filter["_id"], name)
		assert.Equal(t, bson.M{"$lte": now}, filter["startTime"], name)
		assert.Equal(t, bson.M{"$gt": now}, filter["endTime"], name)
	}

	assert.Equal(t, "veh-1", update["bids.vehicleID"])
	assert.Equal(t, bson.M{"$ne": "veh-1"}, insert["bids.vehicleID"])
}

func TestBidFiltersExcludeEachOther(t *testing.T) {
	sessionID := primitive.NewObjectID()
	now := time.Now()

	update := bidUpdateFilter(sessionID, "veh-1", now)
	insert := bidInsertFilter(sessionID, "veh-1", now)
	assert.NotEqual(t, update["bids.vehicleID"], insert["bids.vehicleID"],
		"a session state matching both filters would double-record the bid")
}

// The reservation filter only matches while no bidding window reaches past
// now, so of two concurrent session creates exactly one can modify the load.
func TestLoadBiddingReservationFilter(t *testing.T) {
	loadID := primitive.NewObjectID()
	now := time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC)

	filter := loadBiddingReservationFilter(loadID, "provider-1", now)
	assert.Equal(t, loadID, filter["_id"])
	assert.Equal(t, "provider-1", filter["providerID"])
	require.Contains(t, filter, "$or")
	assert.Equal(t, bson.A{
		bson.M{"biddingOpenUntil": bson.M{"$exists": false}},
		bson.M{"biddingOpenUntil": bson.M{"$lte": now}},
	}, filter["$or"])
}
