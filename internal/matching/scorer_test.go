package matching

import (
	"testing"
	"time"

	"freight-match-api-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testLoad() models.Load {
	return models.Load{
		ID: primitive.NewObjectID(),
		VehicleRequirement: models.VehicleRequirement{
			VehicleType: "10-wheel",
			SizeFt:      20,
			TrailerType: "flatbed",
		},
		Materials: []models.Material{
			{Name: "steel coils", TotalWeightKg: 5000},
			{Name: "steel sheets", TotalWeightKg: 3000},
		},
		LoadingDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Status:      models.LoadStatusOpen,
	}
}

func testVehicle() models.Vehicle {
	return models.Vehicle{
		ID:               primitive.NewObjectID(),
		VehicleNumber:    "KA-01-AB-1234",
		VehicleType:      "10-wheel",
		VehicleSizeFt:    22,
		PassingLimitTons: 10,
		TrailerType:      "flatbed",
		Availability:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:           models.VehicleStatusAvailable,
		IsApproved:       true,
	}
}

func TestScore(t *testing.T) {
	load := testLoad() // requires 10-wheel, 20ft, 8000kg total, flatbed

	tests := []struct {
		name    string
		mutate  func(*models.Vehicle)
		want    int
	}{
		{"perfect match", func(v *models.Vehicle) {}, 100},
		{"type mismatch", func(v *models.Vehicle) { v.VehicleType = "6-wheel" }, 70},
		{"size too small", func(v *models.Vehicle) { v.VehicleSizeFt = 18 }, 75},
		{"capacity too small", func(v *models.Vehicle) { v.PassingLimitTons = 7.5 }, 75},
		{"trailer mismatch", func(v *models.Vehicle) { v.TrailerType = "container" }, 80},
		{"capacity exactly at limit", func(v *models.Vehicle) { v.PassingLimitTons = 8 }, 100},
		{"size exactly at requirement", func(v *models.Vehicle) { v.VehicleSizeFt = 20 }, 100},
		{
			"nothing matches",
			func(v *models.Vehicle) {
				v.VehicleType = "6-wheel"
				v.VehicleSizeFt = 18
				v.PassingLimitTons = 5
				v.TrailerType = "container"
			},
			0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := testVehicle()
			tt.mutate(&v)
			got := Score(v, load)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, 100)
		})
	}
}

// A perfect 10-wheel 22ft/10T vehicle scores 100 and is eligible; a
// 6-wheel 18ft/5T vehicle scores 0 and is not.
func TestScoreScenario(t *testing.T) {
	load := testLoad()

	a := testVehicle()
	assert.Equal(t, 100, Score(a, load))
	assert.True(t, Eligible(a, load))

	b := testVehicle()
	b.VehicleType = "6-wheel"
	b.VehicleSizeFt = 18
	b.PassingLimitTons = 5
	b.TrailerType = "container"
	assert.Equal(t, 0, Score(b, load))
	assert.False(t, Eligible(b, load))
}

func TestEligible(t *testing.T) {
	load := testLoad()

	tests := []struct {
		name   string
		mutate func(*models.Vehicle)
		want   bool
	}{
		{"fully eligible", func(v *models.Vehicle) {}, true},
		{"too small", func(v *models.Vehicle) { v.VehicleSizeFt = 18 }, false},
		{"over weight", func(v *models.Vehicle) { v.PassingLimitTons = 7 }, false},
		{"unavailable", func(v *models.Vehicle) { v.Status = models.VehicleStatusUnavailable }, false},
		{"not approved", func(v *models.Vehicle) { v.IsApproved = false }, false},
		{"free after loading date", func(v *models.Vehicle) {
			v.Availability = load.LoadingDate.Add(24 * time.Hour)
		}, false},
		{"free exactly on loading date", func(v *models.Vehicle) {
			v.Availability = load.LoadingDate
		}, true},
		// type and trailer mismatches reduce the score but not eligibility
		{"wrong type still eligible", func(v *models.Vehicle) { v.VehicleType = "12-wheel" }, true},
		{"wrong trailer still eligible", func(v *models.Vehicle) { v.TrailerType = "container" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := testVehicle()
			tt.mutate(&v)
			assert.Equal(t, tt.want, Eligible(v, load))
		})
	}
}

// Raising capacity or size on an eligible vehicle must never make it
// ineligible.
func TestEligibilityMonotonic(t *testing.T) {
	load := testLoad()
	v := testVehicle()
	require.True(t, Eligible(v, load))

	for i := 0; i < 20; i++ {
		v.PassingLimitTons += 1.5
		v.VehicleSizeFt += 2
		assert.True(t, Eligible(v, load), "passingLimit=%v size=%v", v.PassingLimitTons, v.VehicleSizeFt)
	}
}

func TestRankVehicles(t *testing.T) {
	load := testLoad()

	perfect := testVehicle()
	perfect.Rating = 4.0
	wrongTrailer := testVehicle()
	wrongTrailer.TrailerType = "container" // 80
	wrongType := testVehicle()
	wrongType.VehicleType = "6-wheel" // 70

	ranked := RankVehicles(load, []models.Vehicle{wrongType, wrongTrailer, perfect}, nil, SortByScore)
	require.Len(t, ranked, 3)
	assert.Equal(t, []int{100, 80, 70}, []int{
		ranked[0].CompatibilityScore,
		ranked[1].CompatibilityScore,
		ranked[2].CompatibilityScore,
	})
}

func TestRankVehiclesRatingTieBreak(t *testing.T) {
	load := testLoad()

	low := testVehicle()
	low.Rating = 3.1
	high := testVehicle()
	high.Rating = 4.8

	ranked := RankVehicles(load, []models.Vehicle{low, high}, nil, SortByScore)
	require.Len(t, ranked, 2)
	assert.Equal(t, high.ID, ranked[0].Vehicle.ID)
	assert.Equal(t, low.ID, ranked[1].Vehicle.ID)
}

func TestRankVehiclesBidSort(t *testing.T) {
	load := testLoad()

	cheap := testVehicle()
	costly := testVehicle()
	noBid := testVehicle()

	apps := []models.VehicleApplication{
		{VehicleID: cheap.ID.Hex(), BidPrice: 12000, Status: models.ApplicationPending},
		{VehicleID: costly.ID.Hex(), BidPrice: 18000, Status: models.ApplicationPending},
	}
	vehicles := []models.Vehicle{costly, noBid, cheap}

	asc := RankVehicles(load, vehicles, apps, SortByLowestBid)
	require.Len(t, asc, 3)
	assert.Equal(t, cheap.ID, asc[0].Vehicle.ID)
	assert.Equal(t, costly.ID, asc[1].Vehicle.ID)
	assert.Equal(t, noBid.ID, asc[2].Vehicle.ID) // vehicles without a bid sort last

	desc := RankVehicles(load, vehicles, apps, SortByHighestBid)
	assert.Equal(t, costly.ID, desc[0].Vehicle.ID)
	assert.Equal(t, cheap.ID, desc[1].Vehicle.ID)

	assert.True(t, asc[0].IsRequested)
	assert.Equal(t, "pending", asc[0].RequestStatus)
}
