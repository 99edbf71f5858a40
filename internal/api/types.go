// Package api holds the JSON wire types of the directory HTTP API, shared by
// the server handlers and the Go client.
package api

import "github.com/google/uuid"

// BasePath prefixes every directory route.
const BasePath = "/v1/secunda"

// Building is a building as it appears on the wire. Coordinate keeps the
// stored "lat,lon" text and is null when the building has none.
type Building struct {
	ID         uuid.UUID `json:"id"`
	Address    string    `json:"address"`
	Coordinate *string   `json:"latitude_longitude"`
}

// OrganizationRef is an organization id and name.
type OrganizationRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// AddressOrganization is one row of the organizations-at-address listing.
type AddressOrganization struct {
	Address          string    `json:"address"`
	Coordinate       *string   `json:"latitude_longitude"`
	OrganizationID   uuid.UUID `json:"organization_id"`
	OrganizationName string    `json:"organization_name"`
}

type AddressOrganizationsResponse struct {
	Address       string                `json:"address"`
	Organizations []AddressOrganization `json:"organizations"`
}

type ActivityOrganizationsResponse struct {
	Activity      string            `json:"activity"`
	Organizations []OrganizationRef `json:"organizations"`
}

// TreeOrganization is an organization with the activity names of the tree it
// matched on.
type TreeOrganization struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Activities []string  `json:"activities"`
}

type ActivityTreeOrganizationsResponse struct {
	Activity      string             `json:"activity"`
	Organizations []TreeOrganization `json:"organizations"`
}

type NearbyBuilding struct {
	Building
	DistanceMeters float64           `json:"distance_m"`
	Organizations  []OrganizationRef `json:"organizations"`
}

type NearbyResponse struct {
	Center       Building         `json:"center"`
	RadiusMeters float64          `json:"radius_m"`
	Buildings    []NearbyBuilding `json:"buildings"`
}

// Organization is the full organization aggregate.
type Organization struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Building     Building  `json:"building"`
	PhoneNumbers []string  `json:"phone_numbers"`
	Activities   []string  `json:"activities"`
}

type SearchResponse struct {
	Query         string         `json:"query"`
	Count         int            `json:"count"`
	Organizations []Organization `json:"organizations"`
}

type Activity struct {
	ID       uuid.UUID  `json:"id"`
	Name     string     `json:"name"`
	ParentID *uuid.UUID `json:"parent_id"`
}

type ActivitiesResponse struct {
	Parent     string     `json:"parent,omitempty"`
	Activities []Activity `json:"activities"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}
