package matching

import (
	"testing"
	"time"

	"freight-match-api-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testOwner() models.User {
	return models.User{
		ID:   primitive.NewObjectID(),
		Name: "Ramesh Transport",
		Role: models.RoleVehicleOwner,
	}
}

func TestApply(t *testing.T) {
	now := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	load := testLoad()
	vehicle := testVehicle()
	owner := testOwner()

	app, err := Apply(load, vehicle, owner, 15000, "can pick up a day early", now)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationPending, app.Status)
	assert.Equal(t, load.ID.Hex(), app.LoadID)
	assert.Equal(t, vehicle.ID.Hex(), app.VehicleID)
	assert.Equal(t, owner.Name, app.VehicleOwnerName)
	assert.Equal(t, now, app.AppliedAt)
	assert.Nil(t, app.RespondedAt)
}

func TestApplyRejectsBadInput(t *testing.T) {
	now := time.Now()
	load := testLoad()
	owner := testOwner()

	t.Run("non-positive bid price", func(t *testing.T) {
		_, err := Apply(load, testVehicle(), owner, 0, "", now)
		require.Error(t, err)
		assert.Equal(t, KindValidation, KindOf(err))
	})

	t.Run("ineligible vehicle", func(t *testing.T) {
		v := testVehicle()
		v.IsApproved = false
		_, err := Apply(load, v, owner, 15000, "", now)
		require.Error(t, err)
		assert.Equal(t, KindValidation, KindOf(err))
	})

	t.Run("load already assigned", func(t *testing.T) {
		l := testLoad()
		l.Status = models.LoadStatusAssigned
		_, err := Apply(l, testVehicle(), owner, 15000, "", now)
		require.Error(t, err)
		assert.Equal(t, KindState, KindOf(err))
	})
}

func TestAcceptThenSiblingConflicts(t *testing.T) {
	now := time.Now()
	load := testLoad()
	owner := testOwner()

	first, err := Apply(load, testVehicle(), owner, 15000, "", now)
	require.NoError(t, err)
	first.ID = primitive.NewObjectID()
	second, err := Apply(load, testVehicle(), owner, 14000, "", now)
	require.NoError(t, err)
	second.ID = primitive.NewObjectID()

	accepted, err := Accept(first, []models.VehicleApplication{first, second}, 14500, now)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationAccepted, accepted.Status)
	assert.Equal(t, 14500.0, accepted.AgreedPrice)
	require.NotNil(t, accepted.RespondedAt)

	// the load is filled: accepting the sibling must fail with a conflict
	_, err = Accept(second, []models.VehicleApplication{accepted, second}, 14000, now)
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestAcceptValidation(t *testing.T) {
	now := time.Now()
	app := models.VehicleApplication{ID: primitive.NewObjectID(), Status: models.ApplicationPending}

	t.Run("non-positive agreed price", func(t *testing.T) {
		_, err := Accept(app, nil, 0, now)
		require.Error(t, err)
		assert.Equal(t, KindValidation, KindOf(err))
	})

	t.Run("already rejected", func(t *testing.T) {
		rejected := app
		rejected.Status = models.ApplicationRejected
		_, err := Accept(rejected, nil, 12000, now)
		require.Error(t, err)
		assert.Equal(t, KindState, KindOf(err))
	})

	t.Run("accept is not repeatable", func(t *testing.T) {
		accepted, err := Accept(app, nil, 12000, now)
		require.NoError(t, err)
		_, err = Accept(accepted, nil, 12000, now)
		require.Error(t, err)
		assert.Equal(t, KindState, KindOf(err))
	})
}

func TestReject(t *testing.T) {
	now := time.Now()
	app := models.VehicleApplication{ID: primitive.NewObjectID(), Status: models.ApplicationPending}

	rejected, err := Reject(app, now)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationRejected, rejected.Status)
	require.NotNil(t, rejected.RespondedAt)

	// terminal: a second reject fails
	_, err = Reject(rejected, now)
	require.Error(t, err)
	assert.Equal(t, KindState, KindOf(err))
}

// Rejecting one application leaves its siblings untouched: they stay
// pending and still score the same.
func TestRejectDoesNotAffectSiblings(t *testing.T) {
	now := time.Now()
	load := testLoad()
	owner := testOwner()

	vehicle := testVehicle()
	scoreBefore := Score(vehicle, load)

	sibling, err := Apply(load, vehicle, owner, 15000, "", now)
	require.NoError(t, err)

	other := models.VehicleApplication{ID: primitive.NewObjectID(), Status: models.ApplicationPending}
	_, err = Reject(other, now)
	require.NoError(t, err)

	assert.Equal(t, models.ApplicationPending, sibling.Status)
	assert.Equal(t, scoreBefore, Score(vehicle, load))
	assert.True(t, Eligible(vehicle, load))
}
