package models

import "github.com/google/uuid"

// Organization represents a listed organization located in a single building.
type Organization struct {
	ID         uuid.UUID // UUIDv7
	Name       string
	BuildingID uuid.UUID // FK to buildings
}

// OrganizationPhone is a phone number owned by an organization.
// Phone numbers are unique across all organizations.
type OrganizationPhone struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	PhoneNumber    string
}

// OrganizationActivity tags an organization with an activity. The same pair
// may be stored more than once.
type OrganizationActivity struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	ActivityID     uuid.UUID
}
