package domain

import (
	"strings"
)

type Governorate struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;size:100"`
}

type City struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	Name          string `json:"name" gorm:"size:100"`
	GovernorateID *uint  `json:"governorate_id,omitempty"`
}

// Route is an ordered sequence of stops within a city. A route used to
// start a trip must have at least one stop.
type Route struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	CityID uint   `json:"city_id"`
	Stops  []Stop `json:"stops" gorm:"foreignKey:RouteID"`
}

// DisplayName derives the route's name from its stops in order.
func (r *Route) DisplayName() string {
	names := make([]string, 0, len(r.Stops))
	for _, s := range r.Stops {
		names = append(names, s.Name)
	}
	return strings.Join(names, " - ")
}

// Stop carries the bounding rectangle used for geofencing.
type Stop struct {
	ID      uint    `json:"id" gorm:"primaryKey"`
	RouteID uint    `json:"route_id" gorm:"index"`
	Name    string  `json:"name" gorm:"size:100"`
	MinLat  float64 `json:"min_lat"`
	MinLng  float64 `json:"min_lng"`
	MaxLat  float64 `json:"max_lat"`
	MaxLng  float64 `json:"max_lng"`
}

// Contains reports whether the point falls within the stop's rectangle.
func (s *Stop) Contains(lat, lng float64) bool {
	return s.MinLat <= lat && lat <= s.MaxLat &&
		s.MinLng <= lng && lng <= s.MaxLng
}
