package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/secunda/directory/internal/models"
	"github.com/secunda/directory/internal/store"
)

// DirectoryStore implements store.DirectoryStore using in-memory storage.
// Data is lost on restart, load it with Load.
type DirectoryStore struct {
	mu sync.RWMutex

	// slices keep insertion order, maps index them
	buildings     []*models.Building
	activities    []*models.Activity
	organizations []*models.Organization
	phones        []*models.OrganizationPhone
	tags          []*models.OrganizationActivity

	buildingsByID     map[uuid.UUID]*models.Building
	activitiesByID    map[uuid.UUID]*models.Activity
	organizationsByID map[uuid.UUID]*models.Organization
}

// NewDirectoryStore creates an empty in-memory directory store.
func NewDirectoryStore() *DirectoryStore {
	return &DirectoryStore{
		buildingsByID:     make(map[uuid.UUID]*models.Building),
		activitiesByID:    make(map[uuid.UUID]*models.Activity),
		organizationsByID: make(map[uuid.UUID]*models.Organization),
	}
}

// Load replaces the store contents with a copy of the dataset.
// References are not checked, use models.Dataset.Validate beforehand.
func (s *DirectoryStore) Load(ctx context.Context, ds *models.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buildings = s.buildings[:0]
	s.activities = s.activities[:0]
	s.organizations = s.organizations[:0]
	s.phones = s.phones[:0]
	s.tags = s.tags[:0]
	clear(s.buildingsByID)
	clear(s.activitiesByID)
	clear(s.organizationsByID)

	for i := range ds.Buildings {
		b := cloneBuilding(&ds.Buildings[i])
		s.buildings = append(s.buildings, b)
		s.buildingsByID[b.ID] = b
	}
	for i := range ds.Activities {
		a := cloneActivity(&ds.Activities[i])
		s.activities = append(s.activities, a)
		s.activitiesByID[a.ID] = a
	}
	for i := range ds.Organizations {
		o := ds.Organizations[i]
		s.organizations = append(s.organizations, &o)
		s.organizationsByID[o.ID] = &o
	}
	for i := range ds.OrganizationPhones {
		p := ds.OrganizationPhones[i]
		s.phones = append(s.phones, &p)
	}
	for i := range ds.OrganizationActivities {
		t := ds.OrganizationActivities[i]
		s.tags = append(s.tags, &t)
	}

	return nil
}

// ReadTx runs fn while holding a shared read lock.
func (s *DirectoryStore) ReadTx(ctx context.Context, fn func(ctx context.Context, r store.Reader) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return fn(ctx, &reader{s: s})
}

// Ping always succeeds for the in-memory store.
func (s *DirectoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// reader assumes the read lock is already held by ReadTx.
type reader struct {
	s *DirectoryStore
}

func (r *reader) ListBuildings(ctx context.Context, withCoordinate bool) ([]*models.Building, error) {
	var out []*models.Building
	for _, b := range r.s.buildings {
		if withCoordinate && b.Coordinate == nil {
			continue
		}
		out = append(out, cloneBuilding(b))
	}
	return out, nil
}

func (r *reader) GetBuilding(ctx context.Context, id uuid.UUID) (*models.Building, error) {
	b, exists := r.s.buildingsByID[id]
	if !exists {
		return nil, store.ErrBuildingNotFound
	}
	return cloneBuilding(b), nil
}

func (r *reader) ListBuildingsByAddress(ctx context.Context, address string) ([]*models.Building, error) {
	var out []*models.Building
	for _, b := range r.s.buildings {
		if b.Address == address {
			out = append(out, cloneBuilding(b))
		}
	}
	return out, nil
}

func (r *reader) ListOrganizationsByBuilding(ctx context.Context, buildingID uuid.UUID) ([]*models.Organization, error) {
	var out []*models.Organization
	for _, o := range r.s.organizations {
		if o.BuildingID == buildingID {
			clone := *o
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *reader) SearchOrganizationsByName(ctx context.Context, fragment string, limit int) ([]*models.Organization, error) {
	if limit <= 0 {
		return nil, nil
	}

	needle := strings.ToLower(fragment)
	var out []*models.Organization
	for _, o := range r.s.organizations {
		if strings.Contains(strings.ToLower(o.Name), needle) {
			clone := *o
			out = append(out, &clone)
		}
	}

	slices.SortStableFunc(out, func(a, b *models.Organization) int {
		return strings.Compare(a.Name, b.Name)
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *reader) GetOrganization(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	o, exists := r.s.organizationsByID[id]
	if !exists {
		return nil, store.ErrOrganizationNotFound
	}
	clone := *o
	return &clone, nil
}

func (r *reader) ListPhoneNumbers(ctx context.Context, organizationID uuid.UUID) ([]string, error) {
	var out []string
	for _, p := range r.s.phones {
		if p.OrganizationID == organizationID {
			out = append(out, p.PhoneNumber)
		}
	}
	return out, nil
}

func (r *reader) ListActivityNames(ctx context.Context, organizationID uuid.UUID) ([]string, error) {
	var out []string
	for _, t := range r.s.tags {
		if t.OrganizationID != organizationID {
			continue
		}
		if a, exists := r.s.activitiesByID[t.ActivityID]; exists {
			out = append(out, a.Name)
		}
	}
	return out, nil
}

func (r *reader) ListRootActivitiesByName(ctx context.Context, name string) ([]*models.Activity, error) {
	return r.filterActivities(func(a *models.Activity) bool {
		return a.ParentID == nil && a.Name == name
	}), nil
}

func (r *reader) ListActivitiesByName(ctx context.Context, name string) ([]*models.Activity, error) {
	return r.filterActivities(func(a *models.Activity) bool {
		return a.Name == name
	}), nil
}

func (r *reader) ListChildActivities(ctx context.Context, parentID uuid.UUID) ([]*models.Activity, error) {
	return r.filterActivities(func(a *models.Activity) bool {
		return a.ParentID != nil && *a.ParentID == parentID
	}), nil
}

func (r *reader) ListRootActivities(ctx context.Context) ([]*models.Activity, error) {
	return r.filterActivities(func(a *models.Activity) bool {
		return a.ParentID == nil
	}), nil
}

func (r *reader) ListTaggedOrganizations(ctx context.Context, activityIDs []uuid.UUID) ([]*store.TaggedOrganization, error) {
	wanted := make(map[uuid.UUID]struct{}, len(activityIDs))
	for _, id := range activityIDs {
		wanted[id] = struct{}{}
	}

	var out []*store.TaggedOrganization
	for _, t := range r.s.tags {
		if _, ok := wanted[t.ActivityID]; !ok {
			continue
		}
		org, orgExists := r.s.organizationsByID[t.OrganizationID]
		act, actExists := r.s.activitiesByID[t.ActivityID]
		if !orgExists || !actExists {
			continue
		}
		// inner join semantics: the building must exist as well
		if _, exists := r.s.buildingsByID[org.BuildingID]; !exists {
			continue
		}
		out = append(out, &store.TaggedOrganization{
			OrganizationID:   org.ID,
			OrganizationName: org.Name,
			BuildingID:       org.BuildingID,
			ActivityID:       act.ID,
			ActivityName:     act.Name,
		})
	}
	return out, nil
}

func (r *reader) filterActivities(match func(a *models.Activity) bool) []*models.Activity {
	var out []*models.Activity
	for _, a := range r.s.activities {
		if match(a) {
			out = append(out, cloneActivity(a))
		}
	}
	return out
}

func cloneBuilding(b *models.Building) *models.Building {
	clone := *b
	if b.Coordinate != nil {
		c := *b.Coordinate
		clone.Coordinate = &c
	}
	return &clone
}

func cloneActivity(a *models.Activity) *models.Activity {
	clone := *a
	if a.ParentID != nil {
		p := *a.ParentID
		clone.ParentID = &p
	}
	return &clone
}
