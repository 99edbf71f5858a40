package directory

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/secunda/directory/internal/geo"
	"github.com/secunda/directory/internal/logger"
	"github.com/secunda/directory/internal/models"
	"github.com/secunda/directory/internal/store"
	"go.opentelemetry.io/otel/attribute"
)

// Nearby returns up to limit buildings within radiusMeters of the center
// building, closest first, each with its organizations. The center itself is
// included at distance zero.
//
// A negative or NaN radius, or a limit below one, yields an empty result.
// Returns store.ErrBuildingNotFound when the center does not exist and
// ErrInvalidState when its coordinate is missing or unparseable. Candidates
// with unparseable coordinates are skipped.
func (s *Service) Nearby(ctx context.Context, centerID uuid.UUID, radiusMeters float64, limit int) (*NearbyResult, error) {
	result := &NearbyResult{RadiusMeters: radiusMeters, Buildings: []NearbyBuilding{}}
	if radiusMeters < 0 || math.IsNaN(radiusMeters) || limit <= 0 {
		return result, nil
	}

	err := s.observe(ctx, "nearby", func(ctx context.Context, r store.Reader) (int, error) {
		center, err := r.GetBuilding(ctx, centerID)
		if err != nil {
			return 0, err
		}
		result.Center = toBuildingRef(center)

		if center.Coordinate == nil {
			return 0, fmt.Errorf("%w: building %s has no coordinate", ErrInvalidState, center.ID)
		}
		lat, lon, err := geo.ParseCoordinate(*center.Coordinate)
		if err != nil {
			return 0, fmt.Errorf("%w: building %s: %w", ErrInvalidState, center.ID, err)
		}

		candidates, err := r.ListBuildings(ctx, true)
		if err != nil {
			return 0, err
		}

		matches := s.withinRadius(ctx, candidates, lat, lon, radiusMeters)
		if len(matches) > limit {
			matches = matches[:limit]
		}

		for _, m := range matches {
			orgs, err := r.ListOrganizationsByBuilding(ctx, m.ID)
			if err != nil {
				return 0, err
			}
			m.Organizations = make([]OrganizationRef, 0, len(orgs))
			for _, o := range orgs {
				m.Organizations = append(m.Organizations, OrganizationRef{ID: o.ID, Name: o.Name})
			}
			result.Buildings = append(result.Buildings, m)
		}
		return len(result.Buildings), nil
	},
		attribute.String("directory.center_id", centerID.String()),
		attribute.Float64("directory.radius_m", radiusMeters),
		attribute.Int("directory.limit", limit),
	)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// withinRadius filters candidates to those within radius of (lat, lon) and
// sorts them by distance, breaking ties by building id.
func (s *Service) withinRadius(ctx context.Context, candidates []*models.Building, lat, lon, radius float64) []NearbyBuilding {
	box := geo.BoundingBox(lat, lon, radius)
	// a box crossing the antimeridian does not wrap, so fall back to exact distance only
	useBox := box.MinLon >= -180 && box.MaxLon <= 180

	var scanned, skipped int64
	var matches []NearbyBuilding
	for _, b := range candidates {
		if b.Coordinate == nil {
			continue
		}
		scanned++

		bLat, bLon, err := geo.ParseCoordinate(*b.Coordinate)
		if err != nil {
			skipped++
			logger.Ctx(ctx).Warn().
				Err(err).
				Str("building_id", b.ID.String()).
				Msg("Skipping building with unparseable coordinate")
			continue
		}

		if useBox && !box.Contains(bLat, bLon) {
			continue
		}

		distance := geo.DistanceMeters(lat, lon, bLat, bLon)
		if distance > radius {
			continue
		}

		matches = append(matches, NearbyBuilding{
			BuildingRef:    toBuildingRef(b),
			DistanceMeters: distance,
		})
	}

	s.metrics.BuildingsScannedTotal.Add(ctx, scanned)
	if skipped > 0 {
		s.metrics.BuildingsSkippedTotal.Add(ctx, skipped)
	}

	slices.SortFunc(matches, func(a, b NearbyBuilding) int {
		return cmp.Or(
			cmp.Compare(a.DistanceMeters, b.DistanceMeters),
			strings.Compare(a.ID.String(), b.ID.String()),
		)
	})
	return matches
}
