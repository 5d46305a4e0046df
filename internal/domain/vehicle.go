package domain

import (
	"time"
)

// Vehicle is owned by exactly one driver; a driver may own several.
type Vehicle struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Number    string    `json:"number" gorm:"uniqueIndex;size:50"` // plate number
	DriverID  uint      `json:"driver_id" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
}
