// internal/api/handlers/application_handler.go
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
)

type ApplicationHandler struct {
	DB  *mongo.Database
	Hub *socket.Hub
}

type ApplyPayload struct {
	VehicleID string  `json:"vehicleID" binding:"required"`
	BidPrice  float64 `json:"bidPrice" binding:"required"`
	Message   string  `json:"message"`
}

// Apply files a vehicle owner's application for a load. The engine gates
// eligibility; the handler persists the result and notifies the provider.
func (h *ApplicationHandler) Apply(c *gin.Context) {
	loadID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	var payload ApplyPayload
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

	var load models.Load
	if err := h.DB.Collection("loads").FindOne(context.Background(), bson.M{"_id": loadID}).Decode(&load); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Load not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve load"})
		return
	}

	// The vehicle must belong to the caller.
	var vehicle models.Vehicle
	if err := h.DB.Collection("vehicles").FindOne(context.Background(), bson.M{"_id": vehicleID, "ownerID": ownerID}).Decode(&vehicle); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found or not yours"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve vehicle"})
		return
	}

	applications := h.DB.Collection("applications")
	count, err := applications.CountDocuments(context.Background(), bson.M{"loadID": loadID.Hex(), "vehicleID": vehicleID.Hex()})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check existing applications"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "This vehicle has already applied to this load"})
		return
	}

	owner := models.User{Name: c.GetString("user_name")}
	owner.ID, _ = primitive.ObjectIDFromHex(ownerID)

	app, err := matching.Apply(load, vehicle, owner, payload.BidPrice, payload.Message, time.Now())
	if err != nil {
		engineError(c, err)
		return
	}

	result, err := applications.InsertOne(context.Background(), app)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create application"})
		return
	}
	app.ID = result.InsertedID.(primitive.ObjectID)

	h.Hub.Notify(load.ProviderID, "new_application", app)

	c.JSON(http.StatusCreated, app)
}

// GetApplicationsForLoad lists every application for one of the caller's
// loads.
func (h *ApplicationHandler) GetApplicationsForLoad(c *gin.Context) {
	loadID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	count, err := h.DB.Collection("loads").CountDocuments(context.Background(),
		bson.M{"_id": loadID, "providerID": c.GetString("user_id")})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check load"})
		return
	}
	if count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Load not found or not yours"})
		return
	}

	h.listApplications(c, bson.M{"loadID": loadID.Hex()})
}

// GetMyApplications lists the authenticated owner's applications.
func (h *ApplicationHandler) GetMyApplications(c *gin.Context) {
	filter := bson.M{"vehicleOwnerID": c.GetString("user_id")}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}
	h.listApplications(c, filter)
}

func (h *ApplicationHandler) listApplications(c *gin.Context, filter bson.M) {
	cursor, err := h.DB.Collection("applications").Find(context.Background(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query applications"})
		return
	}
	defer cursor.Close(context.Background())

	var apps []models.VehicleApplication
	if err = cursor.All(context.Background(), &apps); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode applications"})
		return
	}
	if apps == nil {
		apps = []models.VehicleApplication{}
	}
	c.JSON(http.StatusOK, apps)
}

type AcceptPayload struct {
	AgreedPrice float64 `json:"agreedPrice" binding:"required"`
}

// acceptRollbackUpdate returns an accepted application to its pending state
// after a failed load assignment.
func acceptRollbackUpdate() bson.M {
	return bson.M{"$set": bson.M{
		"status":      models.ApplicationPending,
		"agreedPrice": 0,
		"respondedAt": nil,
	}}
}

// Accept accepts a pending application. The engine validates the
// transition against the latest stored state, then a conditional UpdateOne
// makes the accept atomic: whichever request flips pending to accepted
// first wins, a concurrent one sees zero modified documents and fails with
// a conflict. Assigning the load afterwards is rolled back if it cannot be
// completed.
func (h *ApplicationHandler) Accept(c *gin.Context) {
	appID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	var payload AcceptPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	applications := h.DB.Collection("applications")

	var app models.VehicleApplication
	if err := applications.FindOne(context.Background(), bson.M{"_id": appID}).Decode(&app); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve application"})
		return
	}

	// Ownership check: only the load's provider may respond.
	loadID, err := primitive.ObjectIDFromHex(app.LoadID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Application has a malformed load reference"})
		return
	}
	var load models.Load
	if err := h.DB.Collection("loads").FindOne(context.Background(),
		bson.M{"_id": loadID, "providerID": c.GetString("user_id")}).Decode(&load); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Load not found or not yours"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve load"})
		return
	}

	siblingCursor, err := applications.Find(context.Background(), bson.M{"loadID": app.LoadID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query sibling applications"})
		return
	}
	var siblings []models.VehicleApplication
	if err := siblingCursor.All(context.Background(), &siblings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode sibling applications"})
		return
	}

	accepted, err := matching.Accept(app, siblings, payload.AgreedPrice, time.Now())
	if err != nil {
		engineError(c, err)
		return
	}

	// First one wins: the filter re-checks the pending status.
	updateResult, err := applications.UpdateOne(
		context.Background(),
		bson.M{"_id": appID, "status": models.ApplicationPending},
		bson.M{"$set": bson.M{
			"status":      accepted.Status,
			"agreedPrice": accepted.AgreedPrice,
			"respondedAt": accepted.RespondedAt,
		}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error during accept"})
		return
	}
	if updateResult.ModifiedCount == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "This application was already responded to"})
		return
	}

	// Bind the load to the accepted vehicle. The filter requires the load
	// to still be OPEN so a double-assign cannot slip through.
	loadResult, err := h.DB.Collection("loads").UpdateOne(
		context.Background(),
		bson.M{"_id": loadID, "status": models.LoadStatusOpen},
		bson.M{"$set": bson.M{
			"status":            models.LoadStatusAssigned,
			"assignedVehicleID": accepted.VehicleID,
			"updatedAt":         time.Now(),
		}},
	)
	if err != nil || loadResult.ModifiedCount == 0 {
		log.Printf("CRITICAL: application %s accepted but load %s could not be assigned. Rolling back...", appID.Hex(), app.LoadID)
		if _, rbErr := applications.UpdateOne(context.Background(), bson.M{"_id": appID}, acceptRollbackUpdate()); rbErr != nil {
			log.Printf("CRITICAL: failed to roll back application %s, it is accepted while load %s stays unassigned: %v", appID.Hex(), app.LoadID, rbErr)
		}
		c.JSON(http.StatusConflict, gin.H{"error": "Load is no longer open for assignment"})
		return
	}

	h.Hub.Notify(accepted.VehicleOwnerID, "application_accepted", accepted)

	c.JSON(http.StatusOK, accepted)
}

// Reject rejects a pending application. Siblings are untouched.
func (h *ApplicationHandler) Reject(c *gin.Context) {
	appID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	applications := h.DB.Collection("applications")

	var app models.VehicleApplication
	if err := applications.FindOne(context.Background(), bson.M{"_id": appID}).Decode(&app); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve application"})
		return
	}

	loadID, err := primitive.ObjectIDFromHex(app.LoadID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Application has a malformed load reference"})
		return
	}
	count, err := h.DB.Collection("loads").CountDocuments(context.Background(),
		bson.M{"_id": loadID, "providerID": c.GetString("user_id")})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check load"})
		return
	}
	if count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Load not found or not yours"})
		return
	}

	rejected, err := matching.Reject(app, time.Now())
	if err != nil {
		engineError(c, err)
		return
	}

	updateResult, err := applications.UpdateOne(
		context.Background(),
		bson.M{"_id": appID, "status": models.ApplicationPending},
		bson.M{"$set": bson.M{"status": rejected.Status, "respondedAt": rejected.RespondedAt}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error during reject"})
		return
	}
	if updateResult.ModifiedCount == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "This application was already responded to"})
		return
	}

	h.Hub.Notify(rejected.VehicleOwnerID, "application_rejected", rejected)

	c.JSON(http.StatusOK, rejected)
}
