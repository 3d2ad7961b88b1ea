package matching

import (
	"sort"

	"freight-match-api-server/internal/models"
)

// Score weights. They sum to exactly 100; the clamp in Score is defensive.
const (
	weightVehicleType = 30
	weightVehicleSize = 25
	weightCapacity    = 25
	weightTrailerType = 20

	kgPerTon = 1000.0
)

// Score rates how well a vehicle fits a load, 0..100. Deterministic and
// side-effect free: the same inputs always give the same score.
func Score(v models.Vehicle, l models.Load) int {
	req := l.VehicleRequirement
	score := 0
	if v.VehicleType == req.VehicleType {
		score += weightVehicleType
	}
	if v.VehicleSizeFt >= req.SizeFt {
		score += weightVehicleSize
	}
	if v.PassingLimitTons >= l.TotalWeightKg()/kgPerTon {
		score += weightCapacity
	}
	if v.TrailerType == req.TrailerType {
		score += weightTrailerType
	}
	if score > 100 {
		score = 100
	}
	return score
}

// Eligible is the hard gate for applying to a load. It is stricter than the
// score: a vehicle can score well and still be ineligible (unapproved, busy,
// or not free before the loading date). Ineligible vehicles keep their score
// for display but must never enter the apply action set.
func Eligible(v models.Vehicle, l models.Load) bool {
	if v.VehicleSizeFt < l.VehicleRequirement.SizeFt {
		return false
	}
	if v.PassingLimitTons < l.TotalWeightKg()/kgPerTon {
		return false
	}
	if v.Status != models.VehicleStatusAvailable {
		return false
	}
	if !v.IsApproved {
		return false
	}
	return !v.Availability.After(l.LoadingDate)
}

// SortOption selects the secondary sort key for ranked matches. The primary
// key is always score descending.
type SortOption string

const (
	// SortByScore breaks score ties by vehicle rating, best first.
	SortByScore SortOption = "score"
	// SortByLowestBid breaks ties by bid price ascending - the load
	// provider view, cheapest offer first.
	SortByLowestBid SortOption = "lowest_bid"
	// SortByHighestBid breaks ties by bid price descending.
	SortByHighestBid SortOption = "highest_bid"
)

// RankVehicles scores every candidate against the load and returns them
// sorted. Bid prices and request status come from the applications already
// filed for this load, keyed by vehicle ID.
func RankVehicles(l models.Load, vehicles []models.Vehicle, applications []models.VehicleApplication, opt SortOption) []models.MatchedVehicle {
	appByVehicle := make(map[string]models.VehicleApplication, len(applications))
	for _, a := range applications {
		appByVehicle[a.VehicleID] = a
	}

	matched := make([]models.MatchedVehicle, 0, len(vehicles))
	for _, v := range vehicles {
		m := models.MatchedVehicle{
			Vehicle:            v,
			CompatibilityScore: Score(v, l),
			Eligible:           Eligible(v, l),
		}
		if app, ok := appByVehicle[v.ID.Hex()]; ok {
			m.IsRequested = true
			m.RequestStatus = string(app.Status)
			m.BidPrice = app.BidPrice
		}
		matched = append(matched, m)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.CompatibilityScore != b.CompatibilityScore {
			return a.CompatibilityScore > b.CompatibilityScore
		}
		switch opt {
		case SortByLowestBid:
			return lessByBid(a, b, true)
		case SortByHighestBid:
			return lessByBid(a, b, false)
		default:
			return a.Vehicle.Rating > b.Vehicle.Rating
		}
	})
	return matched
}

// lessByBid orders by bid price; vehicles without a bid sort last either way.
func lessByBid(a, b models.MatchedVehicle, ascending bool) bool {
	if a.IsRequested != b.IsRequested {
		return a.IsRequested
	}
	if !a.IsRequested {
		return false
	}
	if ascending {
		return a.BidPrice < b.BidPrice
	}
	return a.BidPrice > b.BidPrice
}
