package domain

import (
	"time"
)

// ActorKind distinguishes the two account types. National id and phone
// must be unique across both kinds, not only within one table.
type ActorKind string

const (
	ActorKindPassenger ActorKind = "passenger"
	ActorKindDriver    ActorKind = "driver"
)

// ActorRef is a tagged reference to either a Passenger or a Driver.
type ActorRef struct {
	Kind ActorKind `json:"kind"`
	ID   uint      `json:"id"`
}

// Less orders references by kind, then id.
func (r ActorRef) Less(o ActorRef) bool {
	if r.Kind != o.Kind {
		return r.Kind < o.Kind
	}
	return r.ID < o.ID
}

// WalletLockOrder returns the two refs in the global wallet locking order.
// Every transaction that row-locks more than one wallet must acquire the
// locks in this order, or a concurrent transfer and fare payment over the
// same pair of wallets can deadlock.
func WalletLockOrder(a, b ActorRef) [2]ActorRef {
	if b.Less(a) {
		return [2]ActorRef{b, a}
	}
	return [2]ActorRef{a, b}
}

type Passenger struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	UID           string    `json:"uid" gorm:"uniqueIndex;size:100"`
	Name          string    `json:"name"`
	NationalID    string    `json:"national_id" gorm:"uniqueIndex;size:14"`
	Phone         string    `json:"phone" gorm:"uniqueIndex;size:11"`
	Email         string    `json:"email" gorm:"uniqueIndex"`
	Password      string    `json:"-"` // bcrypt hash
	GovernorateID *uint     `json:"governorate_id,omitempty"`
	CityID        *uint     `json:"city_id,omitempty"`
	IsActive      bool      `json:"is_active" gorm:"default:true"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (p *Passenger) Ref() ActorRef {
	return ActorRef{Kind: ActorKindPassenger, ID: p.ID}
}

type Driver struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	UID           string `json:"uid" gorm:"uniqueIndex;size:100"`
	Name          string `json:"name"`
	NationalID    string `json:"national_id" gorm:"uniqueIndex;size:14"`
	Phone         string `json:"phone" gorm:"uniqueIndex;size:11"`
	Email         string `json:"email" gorm:"uniqueIndex"`
	Password      string `json:"-"` // bcrypt hash
	LicenseNumber string `json:"license_number" gorm:"uniqueIndex;size:50"`
	GovernorateID *uint  `json:"governorate_id,omitempty"`
	CityID        *uint  `json:"city_id,omitempty"`
	IsActive      bool   `json:"is_active" gorm:"default:true"`

	// InZone is the last geofence evaluation for this driver. The
	// false->true transition closes the active trip and settles the wallet.
	InZone bool `json:"in_zone"`

	AssignedDeviceID *uint `json:"assigned_device_id,omitempty" gorm:"uniqueIndex"`
	AssignedRouteID  *uint `json:"assigned_route_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (d *Driver) Ref() ActorRef {
	return ActorRef{Kind: ActorKindDriver, ID: d.ID}
}
