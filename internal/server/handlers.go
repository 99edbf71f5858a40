package server

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/secunda/directory/internal/api"
	"github.com/secunda/directory/internal/directory"
	httpmiddleware "github.com/secunda/directory/internal/http"
	"github.com/secunda/directory/internal/logger"
)

const (
	defaultNearbyRadiusMeters = 1000
	defaultNearbyLimit        = 50
	defaultSearchLimit        = 20
	maxSearchLimit            = 100
)

func (s *Server) organizationsByAddress(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if address == "" {
		httpmiddleware.WriteError(w, http.StatusBadRequest, "address is required")
		return
	}

	rows, err := s.service.OrganizationsByAddress(r.Context(), address)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := api.AddressOrganizationsResponse{Address: address, Organizations: make([]api.AddressOrganization, 0, len(rows))}
	for _, row := range rows {
		resp.Organizations = append(resp.Organizations, api.AddressOrganization{
			Address:          row.Address,
			Coordinate:       row.Coordinate,
			OrganizationID:   row.OrganizationID,
			OrganizationName: row.OrganizationName,
		})
	}
	httpmiddleware.WriteJSON(w, r, http.StatusOK, resp)
}

func (s *Server) organizationsByActivity(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	orgs, err := s.service.OrganizationsByActivity(r.Context(), name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpmiddleware.WriteJSON(w, r, http.StatusOK, api.ActivityOrganizationsResponse{
		Activity:      name,
		Organizations: toOrganizationRefs(orgs),
	})
}

func (s *Server) organizationsByActivityTree(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	orgs, err := s.service.OrganizationsByActivityTree(r.Context(), name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := api.ActivityTreeOrganizationsResponse{Activity: name, Organizations: make([]api.TreeOrganization, 0, len(orgs))}
	for _, o := range orgs {
		resp.Organizations = append(resp.Organizations, api.TreeOrganization{ID: o.ID, Name: o.Name, Activities: o.Activities})
	}
	httpmiddleware.WriteJSON(w, r, http.StatusOK, resp)
}

func (s *Server) nearby(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httpmiddleware.WriteError(w, http.StatusBadRequest, "invalid building id")
		return
	}

	query := r.URL.Query()
	radius, err := floatParam(query.Get("radius_m"), defaultNearbyRadiusMeters)
	if err != nil {
		httpmiddleware.WriteError(w, http.StatusBadRequest, "invalid radius_m: "+err.Error())
		return
	}
	limit, err := intParam(query.Get("limit"), defaultNearbyLimit)
	if err != nil {
		httpmiddleware.WriteError(w, http.StatusBadRequest, "invalid limit: "+err.Error())
		return
	}

	result, err := s.service.Nearby(r.Context(), id, radius, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := api.NearbyResponse{
		Center:       toBuilding(result.Center),
		RadiusMeters: result.RadiusMeters,
		Buildings:    make([]api.NearbyBuilding, 0, len(result.Buildings)),
	}
	for _, b := range result.Buildings {
		resp.Buildings = append(resp.Buildings, api.NearbyBuilding{
			Building:       toBuilding(b.BuildingRef),
			DistanceMeters: b.DistanceMeters,
			Organizations:  toOrganizationRefs(b.Organizations),
		})
	}
	httpmiddleware.WriteJSON(w, r, http.StatusOK, resp)
}

func (s *Server) searchOrganizations(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := query.Get("q")
	if q == "" {
		httpmiddleware.WriteError(w, http.StatusBadRequest, "q is required")
		return
	}

	limit, err := intParam(query.Get("limit"), defaultSearchLimit)
	if err != nil {
		httpmiddleware.WriteError(w, http.StatusBadRequest, "invalid limit: "+err.Error())
		return
	}
	limit = min(limit, maxSearchLimit)

	result, err := s.service.SearchOrganizations(r.Context(), q, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := api.SearchResponse{Query: q, Count: result.Count, Organizations: make([]api.Organization, 0, len(result.Organizations))}
	for _, o := range result.Organizations {
		resp.Organizations = append(resp.Organizations, toOrganization(o))
	}
	httpmiddleware.WriteJSON(w, r, http.StatusOK, resp)
}

func (s *Server) listActivities(w http.ResponseWriter, r *http.Request) {
	parent := r.URL.Query().Get("parent")

	nodes, err := s.service.ListActivities(r.Context(), parent)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := api.ActivitiesResponse{Parent: parent, Activities: make([]api.Activity, 0, len(nodes))}
	for _, n := range nodes {
		resp.Activities = append(resp.Activities, api.Activity{ID: n.ID, Name: n.Name, ParentID: n.ParentID})
	}
	httpmiddleware.WriteJSON(w, r, http.StatusOK, resp)
}

func (s *Server) getOrganization(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httpmiddleware.WriteError(w, http.StatusBadRequest, "invalid organization id")
		return
	}

	detail, err := s.service.GetOrganization(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpmiddleware.WriteJSON(w, r, http.StatusOK, toOrganization(*detail))
}

// writeServiceError maps a query error to its HTTP status. Store failures
// are logged and reported without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch directory.Classify(err) {
	case directory.ClassNotFound:
		httpmiddleware.WriteError(w, http.StatusNotFound, err.Error())
	case directory.ClassInvalidState:
		logger.Ctx(r.Context()).Warn().Err(err).Msg("query hit inconsistent data")
		httpmiddleware.WriteError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		logger.Ctx(r.Context()).Error().Err(err).Msg("query failed")
		httpmiddleware.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}

// floatParam parses a finite float, returning def for an empty value.
func floatParam(raw string, def float64) (float64, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not finite", raw)
	}
	return v, nil
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer", raw)
	}
	return v, nil
}
