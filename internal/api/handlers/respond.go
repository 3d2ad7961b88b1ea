package handlers

import (
	"net/http"

	"freight-match-api-server/internal/matching"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// engineError maps a rules-engine error kind to an HTTP status. Every kind
// surfaces its detail; invariant violations are never swallowed.
func engineError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch matching.KindOf(err) {
	case matching.KindValidation:
		status = http.StatusBadRequest
	case matching.KindState, matching.KindConflict:
		status = http.StatusConflict
	case matching.KindNotFound:
		status = http.StatusNotFound
	case matching.KindExternal:
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// parseObjectID validates the 24-hex persisted identifier format before
// any database call. Draft entities never reach these endpoints.
func parseObjectID(c *gin.Context, param string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + param + ": must be a 24-character hex object ID"})
		return primitive.NilObjectID, false
	}
	return id, true
}
