// internal/api/handlers/bidding_handler.go
package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"freight-match-api-server/internal/matching"
	"freight-match-api-server/internal/models"
	"freight-match-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// optionsFindOneNewest sorts by creation time so FindOne returns the
// load's most recent session.
func optionsFindOneNewest() *options.FindOneOptions {
	return options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
}

// openWindowFilter matches a session only while its bidding window is open.
func openWindowFilter(sessionID primitive.ObjectID, now time.Time) bson.M {
	return bson.M{
		"_id":       sessionID,
		"startTime": bson.M{"$lte": now},
		"endTime":   bson.M{"$gt": now},
	}
}

// bidUpdateFilter additionally requires an existing bid for the vehicle, so
// a positional $set rewrites that entry in place.
func bidUpdateFilter(sessionID primitive.ObjectID, vehicleID string, now time.Time) bson.M {
	filter := openWindowFilter(sessionID, now)
	filter["bids.vehicleID"] = vehicleID
	return filter
}

// bidInsertFilter requires the vehicle to have no bid yet, so concurrent
// first bids cannot both push an entry.
func bidInsertFilter(sessionID primitive.ObjectID, vehicleID string, now time.Time) bson.M {
	filter := openWindowFilter(sessionID, now)
	filter["bids.vehicleID"] = bson.M{"$ne": vehicleID}
	return filter
}

// loadBiddingReservationFilter matches the load only while no bidding
// window reaches past now. Loads created before any session carry no marker.
func loadBiddingReservationFilter(loadID primitive.ObjectID, providerID string, now time.Time) bson.M {
	return bson.M{
		"_id":        loadID,
		"providerID": providerID,
		"$or": bson.A{
			bson.M{"biddingOpenUntil": bson.M{"$exists": false}},
			bson.M{"biddingOpenUntil": bson.M{"$lte": now}},
		},
	}
}

type BiddingHandler struct {
	DB  *mongo.Database
	Hub *socket.Hub
}

type CreateSessionPayload struct {
	StartTime    time.Time `json:"startTime" binding:"required"`
	EndTime      time.Time `json:"endTime" binding:"required"`
	MinBidAmount float64   `json:"minBidAmount"`
	MaxBidAmount float64   `json:"maxBidAmount"`
}

// CreateSession opens a bidding window for one of the caller's loads. The
// engine validates the window; the single-active-session invariant is
// enforced by an atomic reservation on the load before the insert.
func (h *BiddingHandler) CreateSession(c *gin.Context) {
	loadID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	var payload CreateSessionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	providerID := c.GetString("user_id")

	var load models.Load
	if err := h.DB.Collection("loads").FindOne(context.Background(),
		bson.M{"_id": loadID, "providerID": providerID}).Decode(&load); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Load not found or not yours"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve load"})
		return
	}

	sessions := h.DB.Collection("bidding_sessions")
	now := time.Now()

	// The newest non-closed session, if any, blocks a second one.
	var active *models.BiddingSession
	var latest models.BiddingSession
	err := sessions.FindOne(context.Background(),
		bson.M{"loadID": loadID.Hex(), "endTime": bson.M{"$gt": now}}).Decode(&latest)
	switch err {
	case nil:
		active = &latest
	case mongo.ErrNoDocuments:
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check existing sessions"})
		return
	}

	session, err := matching.NewSession(load, active, payload.StartTime, payload.EndTime,
		payload.MinBidAmount, payload.MaxBidAmount, providerID, now)
	if err != nil {
		engineError(c, err)
		return
	}

	// Reserving the load first makes the single-active-session invariant
	// atomic: the conditional update only matches while no window reaches
	// past now, so of two concurrent creates exactly one extends the
	// reservation and the other sees zero modified documents.
	loads := h.DB.Collection("loads")
	reservation, err := loads.UpdateOne(context.Background(),
		loadBiddingReservationFilter(loadID, providerID, now),
		bson.M{"$set": bson.M{"biddingOpenUntil": session.EndTime}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reserve load for bidding"})
		return
	}
	if reservation.ModifiedCount == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Load already has an active bidding session"})
		return
	}

	result, err := sessions.InsertOne(context.Background(), session)
	if err != nil {
		log.Printf("CRITICAL: load %s reserved for bidding but the session could not be stored. Rolling back...", loadID.Hex())
		if _, rbErr := loads.UpdateOne(context.Background(),
			bson.M{"_id": loadID, "biddingOpenUntil": session.EndTime},
			bson.M{"$unset": bson.M{"biddingOpenUntil": ""}}); rbErr != nil {
			log.Printf("CRITICAL: failed to release bidding reservation for load %s: %v", loadID.Hex(), rbErr)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create bidding session"})
		return
	}
	session.ID = result.InsertedID.(primitive.ObjectID)

	c.JSON(http.StatusCreated, gin.H{
		"session": session,
		"status":  matching.SessionStatus(session, now),
	})
}

// GetSessionForLoad returns the load's newest session with its bids. All
// bids are visible to every participant; filtering who may see what is an
// authorization concern the engine does not own.
func (h *BiddingHandler) GetSessionForLoad(c *gin.Context) {
	loadID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	opts := optionsFindOneNewest()
	var session models.BiddingSession
	err := h.DB.Collection("bidding_sessions").FindOne(context.Background(),
		bson.M{"loadID": loadID.Hex()}, opts).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "No bidding session for this load"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session": session,
		"status":  matching.SessionStatus(session, time.Now()),
	})
}

type PlaceBidPayload struct {
	VehicleID string  `json:"vehicleID" binding:"required"`
	Amount    float64 `json:"amount" binding:"required"`
}

// PlaceBid places or updates the caller's bid in an open session. One bid
// per vehicle: the write either rewrites the existing entry in place or
// pushes a first one, and every write is guarded by the open window so a
// bid can neither land nor be lost after close.
func (h *BiddingHandler) PlaceBid(c *gin.Context) {
	sessionID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	var payload PlaceBidPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	vehicleID, err := primitive.ObjectIDFromHex(payload.VehicleID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vehicleID: must be a 24-character hex object ID"})
		return
	}

	ownerID := c.GetString("user_id")

	count, err := h.DB.Collection("vehicles").CountDocuments(context.Background(),
		bson.M{"_id": vehicleID, "ownerID": ownerID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check vehicle"})
		return
	}
	if count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found or not yours"})
		return
	}

	sessions := h.DB.Collection("bidding_sessions")

	var session models.BiddingSession
	if err := sessions.FindOne(context.Background(), bson.M{"_id": sessionID}).Decode(&session); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Bidding session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve session"})
		return
	}

	now := time.Now()
	bid := models.Bid{
		VehicleID: vehicleID.Hex(),
		OwnerID:   ownerID,
		OwnerName: c.GetString("user_name"),
		Amount:    payload.Amount,
		PlacedAt:  now,
	}
	if err := matching.ValidateBid(session, bid.Amount, now); err != nil {
		engineError(c, err)
		return
	}

	// One atomic write per outcome, each requiring the window to still be
	// open: an existing bid is rewritten in place, a first bid is pushed
	// only while no entry for the vehicle exists. If the session closes
	// between validation and write, nothing is modified and the stored
	// bids are untouched.
	rewrite := bson.M{"$set": bson.M{"bids.$": bid}}
	updateResult, err := sessions.UpdateOne(context.Background(),
		bidUpdateFilter(sessionID, bid.VehicleID, now), rewrite)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error while updating bid"})
		return
	}
	if updateResult.MatchedCount == 0 {
		pushResult, err := sessions.UpdateOne(context.Background(),
			bidInsertFilter(sessionID, bid.VehicleID, now),
			bson.M{"$push": bson.M{"bids": bid}})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error while placing bid"})
			return
		}
		if pushResult.ModifiedCount == 0 {
			// Either the window closed, or a concurrent first bid for the
			// same vehicle won the push. Retrying the in-place rewrite
			// disambiguates the two.
			retryResult, err := sessions.UpdateOne(context.Background(),
				bidUpdateFilter(sessionID, bid.VehicleID, now), rewrite)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error while updating bid"})
				return
			}
			if retryResult.MatchedCount == 0 {
				c.JSON(http.StatusConflict, gin.H{"error": "Bidding session closed before the bid was recorded"})
				return
			}
		}
	}

	h.Hub.Notify(session.CreatedBy, "bid_placed", bid)

	c.JSON(http.StatusOK, bid)
}

type SelectWinnerPayload struct {
	VehicleID string `json:"vehicleID" binding:"required"`
}

// SelectWinner picks the winning vehicle after the session has closed.
// Terminal: the conditional update refuses to overwrite an existing winner.
func (h *BiddingHandler) SelectWinner(c *gin.Context) {
	sessionID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	var payload SelectWinnerPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sessions := h.DB.Collection("bidding_sessions")

	var session models.BiddingSession
	if err := sessions.FindOne(context.Background(), bson.M{"_id": sessionID}).Decode(&session); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Bidding session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve session"})
		return
	}
	if session.CreatedBy != c.GetString("user_id") {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the session creator can select a winner"})
		return
	}

	if err := matching.SelectWinner(&session, payload.VehicleID, time.Now()); err != nil {
		engineError(c, err)
		return
	}

	updateResult, err := sessions.UpdateOne(
		context.Background(),
		bson.M{"_id": sessionID, "winnerVehicleID": bson.M{"$in": bson.A{nil, ""}}},
		bson.M{"$set": bson.M{"winnerVehicleID": session.WinnerVehicleID}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error during winner selection"})
		return
	}
	if updateResult.ModifiedCount == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "A winner was already selected for this session"})
		return
	}

	winning := session.FindBid(session.WinnerVehicleID)
	if winning != nil {
		h.Hub.Notify(winning.OwnerID, "bid_won", session)
	}
	for _, b := range session.Bids {
		if b.VehicleID != session.WinnerVehicleID {
			h.Hub.Notify(b.OwnerID, "bidding_closed", gin.H{"sessionID": sessionID.Hex(), "winnerVehicleID": session.WinnerVehicleID})
		}
	}
	log.Printf("Bidding session %s closed, winner vehicle %s", sessionID.Hex(), session.WinnerVehicleID)

	c.JSON(http.StatusOK, gin.H{"session": session})
}
