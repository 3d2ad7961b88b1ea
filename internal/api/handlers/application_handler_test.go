package handlers

import (
	"testing"

	"freight-match-api-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.mongodb.org/mongo-driver/bson"
)

// A failed load assignment must leave the application exactly as it was
// before the accept: pending, with no agreed price and no response stamp.
func TestAcceptRollbackUpdate(t *testing.T) {
	set, ok := acceptRollbackUpdate()["$set"].(bson.M)
	require.True(t, ok)

	assert.Equal(t, models.ApplicationPending, set["status"])
	assert.Equal(t, 0, set["agreedPrice"])
	assert.Nil(t, set["respondedAt"])
}
