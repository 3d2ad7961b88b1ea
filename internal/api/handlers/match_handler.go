// internal/api/handlers/match_handler.go
package handlers

import (
	"context"
	"net/http"

	"freight-match-api-server/internal/matching"
	"freight-match-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type MatchHandler struct {
	DB *mongo.Database
}

// GetMatches ranks candidate vehicles for a load. The scoring and the sort
// live in the matching package; this handler only assembles its inputs, so
// every presentation of the list shares one scorer.
func (h *MatchHandler) GetMatches(c *gin.Context) {
	loadID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	var load models.Load
	err := h.DB.Collection("loads").FindOne(context.Background(), bson.M{"_id": loadID}).Decode(&load)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Load not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve load"})
		return
	}

	// Only approved vehicles are candidates; the per-vehicle eligibility
	// gate is applied by the engine.
	cursor, err := h.DB.Collection("vehicles").Find(context.Background(), bson.M{"isApproved": true})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query vehicles"})
		return
	}
	defer cursor.Close(context.Background())

	var vehicles []models.Vehicle
	if err := cursor.All(context.Background(), &vehicles); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode vehicles"})
		return
	}

	appCursor, err := h.DB.Collection("applications").Find(context.Background(), bson.M{"loadID": loadID.Hex()})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query applications"})
		return
	}
	defer appCursor.Close(context.Background())

	var applications []models.VehicleApplication
	if err := appCursor.All(context.Background(), &applications); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode applications"})
		return
	}

	opt := matching.SortByScore
	switch c.Query("sort") {
	case "lowest_bid":
		opt = matching.SortByLowestBid
	case "highest_bid":
		opt = matching.SortByHighestBid
	case "", "score":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown sort option, use score, lowest_bid or highest_bid"})
		return
	}

	matches := matching.RankVehicles(load, vehicles, applications, opt)
	c.JSON(http.StatusOK, matches)
}
