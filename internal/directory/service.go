// Package directory implements the read-only queries of the organization
// directory on top of a store.DirectoryStore.
package directory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/secunda/directory/internal/hierarchy"
	"github.com/secunda/directory/internal/logger"
	"github.com/secunda/directory/internal/models"
	"github.com/secunda/directory/internal/store"
	"github.com/secunda/directory/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Service runs directory queries. It holds no mutable state and is safe for
// concurrent use.
type Service struct {
	store   store.DirectoryStore
	metrics *telemetry.Metrics
	tracer  trace.Tracer
}

// NewService creates a Service reading from st.
func NewService(st store.DirectoryStore) *Service {
	return &Service{
		store:   st,
		metrics: telemetry.GetMetrics(),
		tracer:  telemetry.Tracer(),
	}
}

// observe runs fn inside a read transaction wrapped with a span, metrics and
// a debug log line. fn returns the number of items produced.
func (s *Service) observe(ctx context.Context, op string, fn func(ctx context.Context, r store.Reader) (int, error), attrs ...attribute.KeyValue) error {
	ctx, span := s.tracer.Start(ctx, "directory."+op, trace.WithAttributes(attrs...))
	defer span.End()

	opAttr := metric.WithAttributes(attribute.String("operation", op))
	s.metrics.QueriesTotal.Add(ctx, 1, opAttr)
	started := time.Now()

	var count int
	err := s.store.ReadTx(ctx, func(ctx context.Context, r store.Reader) error {
		var err error
		count, err = fn(ctx, r)
		return err
	})

	duration := time.Since(started)
	s.metrics.QueryDuration.Record(ctx, float64(duration.Microseconds())/1000, opAttr)

	if err != nil {
		class := Classify(err)
		s.metrics.QueryErrorsTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("operation", op),
			attribute.String("class", class.String()),
		))
		span.RecordError(err)
		span.SetStatus(codes.Error, class.String())

		event := logger.Ctx(ctx).Debug()
		if class == ClassStoreFailure || class == ClassInvalidState {
			event = logger.Ctx(ctx).Error()
		}
		event.Err(err).Str("operation", op).Str("class", class.String()).Dur("duration", duration).Msg("Directory query failed")
		return err
	}

	s.metrics.QueryResultsTotal.Add(ctx, int64(count), opAttr)
	span.SetAttributes(attribute.Int("directory.results", count))

	logger.Ctx(ctx).Debug().
		Str("operation", op).
		Int("results", count).
		Dur("duration", duration).
		Msg("Directory query")

	return nil
}

// OrganizationsByAddress lists the organizations housed in buildings whose
// address matches exactly.
func (s *Service) OrganizationsByAddress(ctx context.Context, address string) ([]AddressOrganization, error) {
	var out []AddressOrganization
	err := s.observe(ctx, "organizations_by_address", func(ctx context.Context, r store.Reader) (int, error) {
		buildings, err := r.ListBuildingsByAddress(ctx, address)
		if err != nil {
			return 0, err
		}

		for _, b := range buildings {
			orgs, err := r.ListOrganizationsByBuilding(ctx, b.ID)
			if err != nil {
				return 0, err
			}
			for _, o := range orgs {
				out = append(out, AddressOrganization{
					Address:          b.Address,
					Coordinate:       b.Coordinate,
					OrganizationID:   o.ID,
					OrganizationName: o.Name,
				})
			}
		}
		return len(out), nil
	}, attribute.String("directory.address", address))
	if err != nil {
		return nil, err
	}
	return out, nil
}

// OrganizationsByActivity lists each organization tagged with an activity of
// exactly this name once. The activity may sit at any depth.
func (s *Service) OrganizationsByActivity(ctx context.Context, name string) ([]OrganizationRef, error) {
	var out []OrganizationRef
	err := s.observe(ctx, "organizations_by_activity", func(ctx context.Context, r store.Reader) (int, error) {
		activities, err := r.ListActivitiesByName(ctx, name)
		if err != nil {
			return 0, err
		}
		if len(activities) == 0 {
			return 0, nil
		}

		ids := make([]uuid.UUID, 0, len(activities))
		for _, a := range activities {
			ids = append(ids, a.ID)
		}

		rows, err := r.ListTaggedOrganizations(ctx, ids)
		if err != nil {
			return 0, err
		}

		seen := make(map[uuid.UUID]struct{}, len(rows))
		for _, row := range rows {
			if _, dup := seen[row.OrganizationID]; dup {
				continue
			}
			seen[row.OrganizationID] = struct{}{}
			out = append(out, OrganizationRef{ID: row.OrganizationID, Name: row.OrganizationName})
		}
		return len(out), nil
	}, attribute.String("directory.activity", name))
	if err != nil {
		return nil, err
	}
	return out, nil
}

// OrganizationsByActivityTree lists the organizations tagged with the named
// root activity or any of its descendants, grouped per organization and
// ordered by organization name. Returns store.ErrActivityNotFound when no root
// activity has that name.
func (s *Service) OrganizationsByActivityTree(ctx context.Context, rootName string) ([]TreeOrganization, error) {
	var out []TreeOrganization
	err := s.observe(ctx, "organizations_by_activity_tree", func(ctx context.Context, r store.Reader) (int, error) {
		tree, err := s.resolve(ctx, r, rootName)
		if err != nil {
			return 0, err
		}

		rows, err := r.ListTaggedOrganizations(ctx, tree.IDs())
		if err != nil {
			return 0, err
		}

		out = groupByOrganization(rows)
		return len(out), nil
	}, attribute.String("directory.activity", rootName))
	if err != nil {
		return nil, err
	}
	return out, nil
}

// groupByOrganization collapses join rows into one entry per organization.
// Activities are de-duplicated by id and sorted by name; organizations are
// sorted by name with the id breaking ties. Comparison is byte-wise.
func groupByOrganization(rows []*store.TaggedOrganization) []TreeOrganization {
	type group struct {
		org        TreeOrganization
		activities map[uuid.UUID]struct{}
	}

	groups := make(map[uuid.UUID]*group)
	var order []uuid.UUID
	for _, row := range rows {
		g, ok := groups[row.OrganizationID]
		if !ok {
			g = &group{
				org:        TreeOrganization{ID: row.OrganizationID, Name: row.OrganizationName},
				activities: make(map[uuid.UUID]struct{}),
			}
			groups[row.OrganizationID] = g
			order = append(order, row.OrganizationID)
		}
		if _, dup := g.activities[row.ActivityID]; dup {
			continue
		}
		g.activities[row.ActivityID] = struct{}{}
		g.org.Activities = append(g.org.Activities, row.ActivityName)
	}

	out := make([]TreeOrganization, 0, len(order))
	for _, id := range order {
		org := groups[id].org
		slices.Sort(org.Activities)
		out = append(out, org)
	}

	slices.SortFunc(out, func(a, b TreeOrganization) int {
		return cmp.Or(
			strings.Compare(a.Name, b.Name),
			slices.Compare(a.Activities, b.Activities),
			strings.Compare(a.ID.String(), b.ID.String()),
		)
	})
	return out
}

// SearchOrganizations finds up to limit organizations whose name contains
// fragment, ignoring case. No match is an empty result, not an error.
func (s *Service) SearchOrganizations(ctx context.Context, fragment string, limit int) (*SearchResult, error) {
	result := &SearchResult{Organizations: []OrganizationDetail{}}
	err := s.observe(ctx, "search_organizations", func(ctx context.Context, r store.Reader) (int, error) {
		orgs, err := r.SearchOrganizationsByName(ctx, fragment, limit)
		if err != nil {
			return 0, err
		}

		for _, o := range orgs {
			detail, err := loadDetail(ctx, r, o)
			if err != nil {
				return 0, err
			}
			result.Organizations = append(result.Organizations, *detail)
		}
		result.Count = len(result.Organizations)
		return result.Count, nil
	}, attribute.String("directory.query", fragment), attribute.Int("directory.limit", limit))
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListActivities returns every root activity when parentName is empty, or the
// named root and all of its descendants otherwise. Both are sorted by name.
// Returns store.ErrActivityNotFound when parentName matches no root.
func (s *Service) ListActivities(ctx context.Context, parentName string) ([]ActivityNode, error) {
	var out []ActivityNode
	err := s.observe(ctx, "list_activities", func(ctx context.Context, r store.Reader) (int, error) {
		var activities []*models.Activity
		if parentName == "" {
			roots, err := r.ListRootActivities(ctx)
			if err != nil {
				return 0, err
			}
			activities = roots
		} else {
			tree, err := s.resolve(ctx, r, parentName)
			if err != nil {
				return 0, err
			}
			activities = tree.Nodes
		}

		out = make([]ActivityNode, 0, len(activities))
		for _, a := range activities {
			out = append(out, ActivityNode{ID: a.ID, Name: a.Name, ParentID: a.ParentID})
		}
		slices.SortFunc(out, func(a, b ActivityNode) int {
			return cmp.Or(strings.Compare(a.Name, b.Name), strings.Compare(a.ID.String(), b.ID.String()))
		})
		return len(out), nil
	}, attribute.String("directory.parent", parentName))
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetOrganization returns the full detail of one organization.
// Returns store.ErrOrganizationNotFound when the id is unknown.
func (s *Service) GetOrganization(ctx context.Context, id uuid.UUID) (*OrganizationDetail, error) {
	var detail *OrganizationDetail
	err := s.observe(ctx, "get_organization", func(ctx context.Context, r store.Reader) (int, error) {
		org, err := r.GetOrganization(ctx, id)
		if err != nil {
			return 0, err
		}

		detail, err = loadDetail(ctx, r, org)
		if err != nil {
			return 0, err
		}
		return 1, nil
	}, attribute.String("directory.organization_id", id.String()))
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func loadDetail(ctx context.Context, r store.Reader, org *models.Organization) (*OrganizationDetail, error) {
	building, err := r.GetBuilding(ctx, org.BuildingID)
	if err != nil {
		if Classify(err) == ClassNotFound {
			return nil, fmt.Errorf("%w: organization %s references missing building %s", ErrInvalidState, org.ID, org.BuildingID)
		}
		return nil, err
	}

	phones, err := r.ListPhoneNumbers(ctx, org.ID)
	if err != nil {
		return nil, err
	}

	activities, err := r.ListActivityNames(ctx, org.ID)
	if err != nil {
		return nil, err
	}

	return &OrganizationDetail{
		ID:           org.ID,
		Name:         org.Name,
		Building:     toBuildingRef(building),
		PhoneNumbers: nonNil(phones),
		Activities:   nonNil(activities),
	}, nil
}

// resolve expands a root activity, turning an empty tree into a not found error.
func (s *Service) resolve(ctx context.Context, r store.Reader, rootName string) (*hierarchy.Tree, error) {
	tree, err := hierarchy.Resolve(ctx, r, rootName)
	if err != nil {
		return nil, err
	}
	if tree.Empty() {
		return nil, fmt.Errorf("%w: %q", store.ErrActivityNotFound, rootName)
	}

	s.metrics.HierarchyNodesResolved.Record(ctx, int64(len(tree.Nodes)))
	return tree, nil
}

func toBuildingRef(b *models.Building) BuildingRef {
	return BuildingRef{ID: b.ID, Address: b.Address, Coordinate: b.Coordinate}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
