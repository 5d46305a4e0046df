package domain

import (
	"time"
)

// Device is an on-vehicle payment/tracking unit, optionally assigned 1:1
// to a driver (Driver.AssignedDeviceID).
type Device struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:100"`
	CreatedAt time.Time `json:"created_at"`
}

// DeviceLocation is one reading of an append-only position time series.
type DeviceLocation struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	DeviceID  uint      `json:"device_id" gorm:"index"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}
