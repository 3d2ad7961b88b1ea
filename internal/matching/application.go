package matching

import (
	"time"

	"freight-match-api-server/internal/models"
)

// Apply validates a vehicle owner's application to a load and returns the
// new pending application. The caller persists it and notifies the provider.
func Apply(l models.Load, v models.Vehicle, owner models.User, bidPrice float64, message string, now time.Time) (models.VehicleApplication, error) {
	if l.Status != models.LoadStatusOpen {
		return models.VehicleApplication{}, Statef("load is no longer open for applications")
	}
	if bidPrice <= 0 {
		return models.VehicleApplication{}, Validationf("bid price must be greater than zero")
	}
	if !Eligible(v, l) {
		return models.VehicleApplication{}, Validationf("vehicle %s is not eligible for this load", v.VehicleNumber)
	}
	return models.VehicleApplication{
		LoadID:           l.ID.Hex(),
		VehicleID:        v.ID.Hex(),
		VehicleOwnerID:   owner.ID.Hex(),
		VehicleOwnerName: owner.Name,
		BidPrice:         bidPrice,
		Message:          message,
		Status:           models.ApplicationPending,
		AppliedAt:        now,
	}, nil
}

// Accept moves a pending application to accepted and stamps the agreed
// price. siblings are the other applications filed for the same load: once
// any of them is accepted the load is filled and further accepts must fail.
func Accept(app models.VehicleApplication, siblings []models.VehicleApplication, agreedPrice float64, now time.Time) (models.VehicleApplication, error) {
	if agreedPrice <= 0 {
		return models.VehicleApplication{}, Validationf("agreed price must be greater than zero")
	}
	for _, s := range siblings {
		if s.ID != app.ID && s.Status == models.ApplicationAccepted {
			return models.VehicleApplication{}, Conflictf("load already has an accepted application")
		}
	}
	if app.Status != models.ApplicationPending {
		return models.VehicleApplication{}, Statef("application is %s, only pending applications can be accepted", app.Status)
	}
	app.Status = models.ApplicationAccepted
	app.AgreedPrice = agreedPrice
	app.RespondedAt = &now
	return app, nil
}

// Reject moves a pending application to rejected. Sibling applications for
// the same load are not affected.
func Reject(app models.VehicleApplication, now time.Time) (models.VehicleApplication, error) {
	if app.Status != models.ApplicationPending {
		return models.VehicleApplication{}, Statef("application is %s, only pending applications can be rejected", app.Status)
	}
	app.Status = models.ApplicationRejected
	app.RespondedAt = &now
	return app, nil
}
