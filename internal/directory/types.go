package directory

import "github.com/google/uuid"

// AddressOrganization is one organization found at an address.
type AddressOrganization struct {
	Address          string
	Coordinate       *string
	OrganizationID   uuid.UUID
	OrganizationName string
}

// OrganizationRef identifies an organization by id and name.
type OrganizationRef struct {
	ID   uuid.UUID
	Name string
}

// TreeOrganization is an organization matched through an activity tree,
// with the names of the matching activities in ascending order.
type TreeOrganization struct {
	ID         uuid.UUID
	Name       string
	Activities []string
}

// BuildingRef describes a building without its tenants.
type BuildingRef struct {
	ID         uuid.UUID
	Address    string
	Coordinate *string
}

// NearbyBuilding is a building within the search radius.
type NearbyBuilding struct {
	BuildingRef
	DistanceMeters float64
	Organizations  []OrganizationRef
}

// NearbyResult holds the buildings around a center, closest first.
type NearbyResult struct {
	Center       BuildingRef
	RadiusMeters float64
	Buildings    []NearbyBuilding
}

// OrganizationDetail aggregates an organization with its building, phone
// numbers and activity names.
type OrganizationDetail struct {
	ID           uuid.UUID
	Name         string
	Building     BuildingRef
	PhoneNumbers []string
	Activities   []string
}

// SearchResult is the outcome of a name search. Count equals len(Organizations).
type SearchResult struct {
	Count         int
	Organizations []OrganizationDetail
}

// ActivityNode is a flattened activity.
type ActivityNode struct {
	ID       uuid.UUID
	Name     string
	ParentID *uuid.UUID
}
