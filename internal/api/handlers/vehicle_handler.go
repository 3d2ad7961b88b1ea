// internal/api/handlers/vehicle_handler.go
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"freight-match-api-server/internal/models"
	"freight-match-api-server/internal/s3"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type VehicleHandler struct {
	DB         *mongo.Database
	S3Uploader *s3.Uploader
}

type CreateVehiclePayload struct {
	VehicleNumber          string               `json:"vehicleNumber" binding:"required"`
	VehicleType            string               `json:"vehicleType" binding:"required"`
	VehicleSizeFt          float64              `json:"vehicleSizeFt" binding:"required,gt=0"`
	PassingLimitTons       float64              `json:"passingLimitTons" binding:"required,gt=0"`
	TrailerType            string               `json:"trailerType" binding:"required"`
	Availability           time.Time            `json:"availability" binding:"required"`
	PreferredOperatingArea models.OperatingArea `json:"preferredOperatingArea"`
}

// CreateVehicle registers a vehicle for the authenticated owner. New
// vehicles start unapproved; an admin approves them before they can apply
// to loads.
func (h *VehicleHandler) CreateVehicle(c *gin.Context) {
	var payload CreateVehiclePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vehicles := h.DB.Collection("vehicles")
	count, err := vehicles.CountDocuments(context.Background(), bson.M{"vehicleNumber": payload.VehicleNumber})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check existing vehicles"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "A vehicle with this number is already registered"})
		return
	}

	newVehicle := models.Vehicle{
		OwnerID:                c.GetString("user_id"),
		VehicleNumber:          payload.VehicleNumber,
		VehicleType:            payload.VehicleType,
		VehicleSizeFt:          payload.VehicleSizeFt,
		PassingLimitTons:       payload.PassingLimitTons,
		TrailerType:            payload.TrailerType,
		Availability:           payload.Availability,
		Status:                 models.VehicleStatusAvailable,
		IsApproved:             false,
		PreferredOperatingArea: payload.PreferredOperatingArea,
		CreatedAt:              time.Now(),
		UpdatedAt:              time.Now(),
	}

	result, err := vehicles.InsertOne(context.Background(), newVehicle)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create vehicle"})
		return
	}
	newVehicle.ID = result.InsertedID.(primitive.ObjectID)

	c.JSON(http.StatusCreated, newVehicle)
}

// GetMyVehicles lists the authenticated owner's vehicles.
func (h *VehicleHandler) GetMyVehicles(c *gin.Context) {
	cursor, err := h.DB.Collection("vehicles").Find(context.Background(), bson.M{"ownerID": c.GetString("user_id")})
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
	if vehicles == nil {
		vehicles = []models.Vehicle{}
	}
	c.JSON(http.StatusOK, vehicles)
}

// SetVehicleStatus lets the owner flip a vehicle between AVAILABLE and
// UNAVAILABLE.
func (h *VehicleHandler) SetVehicleStatus(c *gin.Context) {
	vehicleID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required,oneof=AVAILABLE UNAVAILABLE"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.DB.Collection("vehicles").UpdateOne(
		context.Background(),
		bson.M{"_id": vehicleID, "ownerID": c.GetString("user_id")},
		bson.M{"$set": bson.M{"status": req.Status, "updatedAt": time.Now()}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update vehicle"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found or not yours"})
		return
	}
	c.Status(http.StatusNoContent)
}

// ApproveVehicle marks a vehicle as approved. Admin only.
func (h *VehicleHandler) ApproveVehicle(c *gin.Context) {
	vehicleID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	result, err := h.DB.Collection("vehicles").UpdateOne(
		context.Background(),
		bson.M{"_id": vehicleID},
		bson.M{"$set": bson.M{"isApproved": true, "updatedAt": time.Now()}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve vehicle"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadVehiclePhoto uploads one photo for the caller's vehicle and appends
// the resulting URL.
func (h *VehicleHandler) UploadVehiclePhoto(c *gin.Context) {
	vehicleID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	count, err := h.DB.Collection("vehicles").CountDocuments(context.Background(),
		bson.M{"_id": vehicleID, "ownerID": c.GetString("user_id")})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check vehicle"})
		return
	}
	if count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found or not yours"})
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A 'photo' file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open uploaded file"})
		return
	}
	defer file.Close()

	objectKey := fmt.Sprintf("vehicles/%s/%s", vehicleID.Hex(), uuid.New().String())
	url, err := h.S3Uploader.UploadFile(c.Request.Context(), file, objectKey, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to upload photo", "details": err.Error()})
		return
	}

	_, err = h.DB.Collection("vehicles").UpdateOne(
		context.Background(),
		bson.M{"_id": vehicleID},
		bson.M{"$push": bson.M{"photos": url}, "$set": bson.M{"updatedAt": time.Now()}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Photo uploaded but failed to attach to vehicle"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url})
}
