// internal/api/handlers/load_handler.go
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"freight-match-api-server/internal/models"
	"freight-match-api-server/internal/s3"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type LoadHandler struct {
	DB         *mongo.Database
	S3Uploader *s3.Uploader
}

type CreateLoadPayload struct {
	LoadingLocation    models.Location           `json:"loadingLocation" binding:"required"`
	UnloadingLocation  models.Location           `json:"unloadingLocation" binding:"required"`
	VehicleRequirement models.VehicleRequirement `json:"vehicleRequirement" binding:"required"`
	Materials          []models.Material         `json:"materials" binding:"required,min=1,dive"`
	LoadingDate        time.Time                 `json:"loadingDate" binding:"required"`
	PaymentTerms       string                    `json:"paymentTerms" binding:"required"`
	WithXBowSupport    bool                      `json:"withXBowSupport"`
}

// CreateLoad posts a new load. Materials must be non-empty; the total
// weight is derived from them on every read, never stored.
func (h *LoadHandler) CreateLoad(c *gin.Context) {
	var payload CreateLoadPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	for i, m := range payload.Materials {
		if m.TotalWeightKg <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("material %d must have a positive weight", i)})
			return
		}
	}

	newLoad := models.Load{
		ProviderID:         c.GetString("user_id"),
		LoadingLocation:    payload.LoadingLocation,
		UnloadingLocation:  payload.UnloadingLocation,
		VehicleRequirement: payload.VehicleRequirement,
		Materials:          payload.Materials,
		LoadingDate:        payload.LoadingDate,
		PaymentTerms:       payload.PaymentTerms,
		WithXBowSupport:    payload.WithXBowSupport,
		Status:             models.LoadStatusOpen,
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}

	result, err := h.DB.Collection("loads").InsertOne(context.Background(), newLoad)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create load"})
		return
	}
	newLoad.ID = result.InsertedID.(primitive.ObjectID)

	c.JSON(http.StatusCreated, newLoad)
}

// GetLoad returns one load with its derived total weight.
func (h *LoadHandler) GetLoad(c *gin.Context) {
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

	c.JSON(http.StatusOK, gin.H{"load": load, "totalWeightKg": load.TotalWeightKg()})
}

// GetMyLoads lists the loads posted by the authenticated provider.
func (h *LoadHandler) GetMyLoads(c *gin.Context) {
	filter := bson.M{"providerID": c.GetString("user_id")}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}

	h.listLoads(c, filter)
}

// GetOpenLoads lists loads still open for applications, for vehicle owners
// browsing the board.
func (h *LoadHandler) GetOpenLoads(c *gin.Context) {
	filter := bson.M{"status": models.LoadStatusOpen}
	if state := c.Query("state"); state != "" {
		filter["loadingLocation.state"] = state
	}
	if district := c.Query("district"); district != "" {
		filter["loadingLocation.district"] = district
	}

	h.listLoads(c, filter)
}

func (h *LoadHandler) listLoads(c *gin.Context, filter bson.M) {
	cursor, err := h.DB.Collection("loads").Find(context.Background(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query loads"})
		return
	}
	defer cursor.Close(context.Background())

	var loads []models.Load
	if err = cursor.All(context.Background(), &loads); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode loads"})
		return
	}
	if loads == nil {
		loads = []models.Load{}
	}
	c.JSON(http.StatusOK, loads)
}

// UploadMaterialPhoto uploads one photo for a material of the caller's load
// and appends the resulting URL to that material.
func (h *LoadHandler) UploadMaterialPhoto(c *gin.Context) {
	loadID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}
	materialIndex, err := strconv.Atoi(c.Param("materialIndex"))
	if err != nil || materialIndex < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid material index"})
		return
	}

	var load models.Load
	err = h.DB.Collection("loads").FindOne(context.Background(), bson.M{"_id": loadID, "providerID": c.GetString("user_id")}).Decode(&load)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Load not found or not yours"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve load"})
		return
	}
	if materialIndex >= len(load.Materials) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Material index out of range"})
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

	objectKey := fmt.Sprintf("loads/%s/materials/%d/%s", loadID.Hex(), materialIndex, uuid.New().String())
	url, err := h.S3Uploader.UploadFile(c.Request.Context(), file, objectKey, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to upload photo", "details": err.Error()})
		return
	}

	field := fmt.Sprintf("materials.%d.photos", materialIndex)
	_, err = h.DB.Collection("loads").UpdateOne(
		context.Background(),
		bson.M{"_id": loadID},
		bson.M{"$push": bson.M{field: url}, "$set": bson.M{"updatedAt": time.Now()}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Photo uploaded but failed to attach to load"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url})
}
