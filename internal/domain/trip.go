package domain

import (
	"time"
)

// Trip is one journey of a vehicle along a route. At most one trip per
// vehicle may be active (EndTime == nil) at any time; the application check
// in the trip service is backed by a partial unique index on
// trips(vehicle_id) WHERE end_time IS NULL.
type Trip struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	DriverID  uint `json:"driver_id" gorm:"index"`
	VehicleID uint `json:"vehicle_id" gorm:"index"`
	RouteID   uint `json:"route_id"`

	// Date plus SequenceNumber order a driver's trips within a day.
	// SequenceNumber is 1-based and assigned as max existing + 1.
	Date           time.Time `json:"date" gorm:"type:date"`
	SequenceNumber int       `json:"sequence_number"`

	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	InZone    bool       `json:"in_zone"`

	// QRToken is a short-lived opaque token authorizing in-trip payments.
	// It is rotated at most once per freshness window.
	QRToken            string     `json:"-" gorm:"size:32;index"`
	QRTokenGeneratedAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

// Active reports whether the trip is still open.
func (t *Trip) Active() bool {
	return t.EndTime == nil
}
