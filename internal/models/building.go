package models

import "github.com/google/uuid"

// Building is a physical location that hosts organizations.
type Building struct {
	ID      uuid.UUID // UUIDv7
	Address string
	// Coordinate holds the stored "lat,lon" text, nil when unknown.
	Coordinate *string
}

// HasCoordinate reports whether the building has a stored coordinate.
func (b *Building) HasCoordinate() bool {
	return b.Coordinate != nil
}
