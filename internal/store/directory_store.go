package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/secunda/directory/internal/models"
)

// Sentinel errors for directory store operations. Every entity specific
// sentinel wraps ErrNotFound so callers can test for either.
var (
	ErrNotFound             = errors.New("not found")
	ErrBuildingNotFound     = fmt.Errorf("building %w", ErrNotFound)
	ErrOrganizationNotFound = fmt.Errorf("organization %w", ErrNotFound)
	ErrActivityNotFound     = fmt.Errorf("activity %w", ErrNotFound)
)

// DirectoryStore provides read-only access to the organization directory.
type DirectoryStore interface {
	// ReadTx runs fn inside a single consistent read scope. The scope is
	// released when fn returns, whatever the outcome. Errors returned by fn
	// are passed through unchanged.
	ReadTx(ctx context.Context, fn func(ctx context.Context, r Reader) error) error

	// Ping checks the store is reachable.
	Ping(ctx context.Context) error
}

// Reader exposes the queries available inside a read scope.
type Reader interface {
	// ListBuildings returns all buildings. When withCoordinate is set only
	// buildings with a stored coordinate are returned.
	ListBuildings(ctx context.Context, withCoordinate bool) ([]*models.Building, error)

	// GetBuilding returns ErrBuildingNotFound if the building doesn't exist.
	GetBuilding(ctx context.Context, id uuid.UUID) (*models.Building, error)

	// ListBuildingsByAddress returns buildings whose address matches exactly.
	ListBuildingsByAddress(ctx context.Context, address string) ([]*models.Building, error)

	// ListOrganizationsByBuilding returns the organizations housed in a building.
	ListOrganizationsByBuilding(ctx context.Context, buildingID uuid.UUID) ([]*models.Organization, error)

	// SearchOrganizationsByName returns at most limit organizations whose name
	// contains fragment, compared case-insensitively, ordered by name.
	SearchOrganizationsByName(ctx context.Context, fragment string, limit int) ([]*models.Organization, error)

	// GetOrganization returns ErrOrganizationNotFound if the organization doesn't exist.
	GetOrganization(ctx context.Context, id uuid.UUID) (*models.Organization, error)

	// ListPhoneNumbers returns the phone numbers of an organization.
	ListPhoneNumbers(ctx context.Context, organizationID uuid.UUID) ([]string, error)

	// ListActivityNames returns the names of the activities an organization is
	// tagged with. Duplicate tags produce duplicate names.
	ListActivityNames(ctx context.Context, organizationID uuid.UUID) ([]string, error)

	// ListRootActivitiesByName returns root activities with exactly this name.
	ListRootActivitiesByName(ctx context.Context, name string) ([]*models.Activity, error)

	// ListActivitiesByName returns activities at any depth with exactly this name.
	ListActivitiesByName(ctx context.Context, name string) ([]*models.Activity, error)

	// ListChildActivities returns the direct children of an activity.
	ListChildActivities(ctx context.Context, parentID uuid.UUID) ([]*models.Activity, error)

	// ListRootActivities returns every activity without a parent.
	ListRootActivities(ctx context.Context) ([]*models.Activity, error)

	// ListTaggedOrganizations joins organizations to the given activities.
	// One row is returned per stored tag, so duplicates are possible.
	ListTaggedOrganizations(ctx context.Context, activityIDs []uuid.UUID) ([]*TaggedOrganization, error)
}

// TaggedOrganization is one organization/activity pairing produced by
// ListTaggedOrganizations.
type TaggedOrganization struct {
	OrganizationID   uuid.UUID
	OrganizationName string
	BuildingID       uuid.UUID
	ActivityID       uuid.UUID
	ActivityName     string
}

// DatasetLoader replaces the contents of a store with a dataset.
type DatasetLoader interface {
	Load(ctx context.Context, ds *models.Dataset) error
}
