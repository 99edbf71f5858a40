package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/secunda/directory/internal/api"
	httpmiddleware "github.com/secunda/directory/internal/http"
	"github.com/secunda/directory/internal/models"
	"github.com/secunda/directory/internal/store"
	"github.com/secunda/directory/internal/store/memory"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	center, near, far, broken uuid.UUID
	cars, speakers            uuid.UUID
	autosound, cables, bakery uuid.UUID
}

func strptr(s string) *string { return &s }

func newFixture() (*fixture, *models.Dataset) {
	f := &fixture{
		center: uuid.New(), near: uuid.New(), far: uuid.New(), broken: uuid.New(),
		cars: uuid.New(), speakers: uuid.New(),
		autosound: uuid.New(), cables: uuid.New(), bakery: uuid.New(),
	}

	ds := &models.Dataset{
		Buildings: []models.Building{
			{ID: f.center, Address: "Москва, Малый Купаввенский пр, д.5", Coordinate: strptr("55.753933,37.620795")},
			{ID: f.near, Address: "Москва, 2-й Кабельный пр, д.37", Coordinate: strptr("55.752023,37.617499")},
			{ID: f.far, Address: "Москва, Шоссе Энтузиастов, д.29", Coordinate: strptr("55.829622,37.637486")},
			{ID: f.broken, Address: "Москва, Без координат"},
		},
		Activities: []models.Activity{
			{ID: f.cars, Name: "Машины"},
			{ID: f.speakers, Name: "Колонки", ParentID: &f.cars},
		},
		Organizations: []models.Organization{
			{ID: f.autosound, Name: "ООО Автозвук", BuildingID: f.center},
			{ID: f.cables, Name: "ИП Провода", BuildingID: f.near},
			{ID: f.bakery, Name: "ООО Хлеб", BuildingID: f.far},
		},
		OrganizationPhones: []models.OrganizationPhone{
			{ID: uuid.New(), OrganizationID: f.autosound, PhoneNumber: "+79990000001"},
		},
		OrganizationActivities: []models.OrganizationActivity{
			{ID: uuid.New(), OrganizationID: f.autosound, ActivityID: f.speakers},
			{ID: uuid.New(), OrganizationID: f.cables, ActivityID: f.cars},
		},
	}
	return f, ds
}

func newTestServer(t *testing.T, reg prometheus.Registerer) (*fixture, *httptest.Server) {
	t.Helper()

	f, ds := newFixture()
	st := memory.NewDirectoryStore()
	require.NoError(t, st.Load(context.Background(), ds))

	var metrics *httpmiddleware.Metrics
	if reg != nil {
		metrics = httpmiddleware.NewMetrics(reg)
	}

	ts := httptest.NewServer(NewServer(st, metrics).Handler())
	t.Cleanup(ts.Close)
	return f, ts
}

func getJSON(t *testing.T, rawURL string, out any) int {
	t.Helper()

	resp, err := http.Get(rawURL)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestServer_OrganizationsByAddress(t *testing.T) {
	f, ts := newTestServer(t, nil)

	var resp api.AddressOrganizationsResponse
	status := getJSON(t, ts.URL+api.BasePath+"/buildings/organizations?address="+url.QueryEscape("Москва, Малый Купаввенский пр, д.5"), &resp)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, resp.Organizations, 1)
	require.Equal(t, f.autosound, resp.Organizations[0].OrganizationID)
	require.Equal(t, "55.753933,37.620795", *resp.Organizations[0].Coordinate)

	status = getJSON(t, ts.URL+api.BasePath+"/buildings/organizations?address=nowhere", &resp)
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, resp.Organizations)

	var errResp api.ErrorResponse
	status = getJSON(t, ts.URL+api.BasePath+"/buildings/organizations", &errResp)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "address is required", errResp.Error)
}

func TestServer_Activities(t *testing.T) {
	f, ts := newTestServer(t, nil)

	var direct api.ActivityOrganizationsResponse
	status := getJSON(t, ts.URL+api.BasePath+"/activities/"+url.PathEscape("Машины")+"/organizations", &direct)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Машины", direct.Activity)
	require.Equal(t, []api.OrganizationRef{{ID: f.cables, Name: "ИП Провода"}}, direct.Organizations)

	var tree api.ActivityTreeOrganizationsResponse
	status = getJSON(t, ts.URL+api.BasePath+"/activities/"+url.PathEscape("Машины")+"/tree/organizations", &tree)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, []api.TreeOrganization{
		{ID: f.cables, Name: "ИП Провода", Activities: []string{"Машины"}},
		{ID: f.autosound, Name: "ООО Автозвук", Activities: []string{"Колонки"}},
	}, tree.Organizations)

	var errResp api.ErrorResponse
	status = getJSON(t, ts.URL+api.BasePath+"/activities/"+url.PathEscape("Колонки")+"/tree/organizations", &errResp)
	require.Equal(t, http.StatusNotFound, status)
	require.Contains(t, errResp.Error, "activity not found")

	var list api.ActivitiesResponse
	status = getJSON(t, ts.URL+api.BasePath+"/activities", &list)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, []api.Activity{{ID: f.cars, Name: "Машины"}}, list.Activities)

	status = getJSON(t, ts.URL+api.BasePath+"/activities?parent="+url.QueryEscape("Машины"), &list)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, list.Activities, 2)
	require.Equal(t, "Колонки", list.Activities[0].Name)
	require.Equal(t, f.cars, *list.Activities[0].ParentID)

	status = getJSON(t, ts.URL+api.BasePath+"/activities?parent=unknown", &errResp)
	require.Equal(t, http.StatusNotFound, status)
}

func TestServer_Nearby(t *testing.T) {
	f, ts := newTestServer(t, nil)
	base := ts.URL + api.BasePath + "/buildings/"

	var resp api.NearbyResponse
	status := getJSON(t, base+f.center.String()+"/nearby?radius_m=500", &resp)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, f.center, resp.Center.ID)
	require.Len(t, resp.Buildings, 2)
	require.Equal(t, f.center, resp.Buildings[0].ID)
	require.Zero(t, resp.Buildings[0].DistanceMeters)
	require.Equal(t, f.near, resp.Buildings[1].ID)
	require.InDelta(t, 296.05, resp.Buildings[1].DistanceMeters, 1)
	require.Equal(t, []api.OrganizationRef{{ID: f.cables, Name: "ИП Провода"}}, resp.Buildings[1].Organizations)

	status = getJSON(t, base+f.center.String()+"/nearby", &resp)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 1000.0, resp.RadiusMeters)

	status = getJSON(t, base+f.center.String()+"/nearby?radius_m=50000&limit=1", &resp)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, resp.Buildings, 1)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{name: "bad id", path: "not-a-uuid/nearby", status: http.StatusBadRequest},
		{name: "bad radius", path: f.center.String() + "/nearby?radius_m=far", status: http.StatusBadRequest},
		{name: "nan radius", path: f.center.String() + "/nearby?radius_m=NaN", status: http.StatusBadRequest},
		{name: "bad limit", path: f.center.String() + "/nearby?limit=1.5", status: http.StatusBadRequest},
		{name: "unknown center", path: uuid.NewString() + "/nearby", status: http.StatusNotFound},
		{name: "center without coordinate", path: f.broken.String() + "/nearby", status: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var errResp api.ErrorResponse
			require.Equal(t, tt.status, getJSON(t, base+tt.path, &errResp))
			require.NotEmpty(t, errResp.Error)
		})
	}

	t.Run("negative radius is empty", func(t *testing.T) {
		var resp api.NearbyResponse
		require.Equal(t, http.StatusOK, getJSON(t, base+f.center.String()+"/nearby?radius_m=-1", &resp))
		require.Empty(t, resp.Buildings)
	})
}

func TestServer_Organizations(t *testing.T) {
	f, ts := newTestServer(t, nil)

	var search api.SearchResponse
	status := getJSON(t, ts.URL+api.BasePath+"/organizations/search?q="+url.QueryEscape("ооо"), &search)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 2, search.Count)
	require.Equal(t, "ООО Автозвук", search.Organizations[0].Name)
	require.Equal(t, []string{"+79990000001"}, search.Organizations[0].PhoneNumbers)

	status = getJSON(t, ts.URL+api.BasePath+"/organizations/search?q=zzz", &search)
	require.Equal(t, http.StatusOK, status)
	require.Zero(t, search.Count)
	require.NotNil(t, search.Organizations)

	status = getJSON(t, ts.URL+api.BasePath+"/organizations/search?q="+url.QueryEscape("ооо")+"&limit=1", &search)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 1, search.Count)

	var org api.Organization
	status = getJSON(t, ts.URL+api.BasePath+"/organizations/"+f.autosound.String(), &org)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, f.center, org.Building.ID)
	require.Equal(t, []string{"Колонки"}, org.Activities)

	var errResp api.ErrorResponse
	require.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+api.BasePath+"/organizations/"+uuid.NewString(), &errResp))
	require.Equal(t, http.StatusBadRequest, getJSON(t, ts.URL+api.BasePath+"/organizations/123", &errResp))
	require.Equal(t, http.StatusBadRequest, getJSON(t, ts.URL+api.BasePath+"/organizations/search", &errResp))
}

func TestServer_ETagRevalidation(t *testing.T) {
	f, ts := newTestServer(t, nil)
	target := ts.URL + api.BasePath + "/organizations/" + f.autosound.String()

	resp, err := http.Get(target)
	require.NoError(t, err)
	resp.Body.Close()
	etag := resp.Header.Get("ETag")
	require.NotEmpty(t, etag)
	require.Equal(t, "no-cache", resp.Header.Get("Cache-Control"))

	req, err := http.NewRequest(http.MethodGet, target, nil)
	require.NoError(t, err)
	req.Header.Set("If-None-Match", etag)

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotModified, resp.StatusCode)
}

func TestServer_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, ts := newTestServer(t, reg)

	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+api.BasePath+"/activities", nil))

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, mf := range families {
		if mf.GetName() != "directory_http_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "route" && l.GetValue() == "GET "+api.BasePath+"/activities" {
					found = true
				}
			}
		}
	}
	require.True(t, found)
}

type unhealthyStore struct {
	store.DirectoryStore
}

func (unhealthyStore) Ping(context.Context) error { return errors.New("connection refused") }

func (unhealthyStore) ReadTx(context.Context, func(context.Context, store.Reader) error) error {
	return errors.New("connection refused")
}

func TestServer_Health(t *testing.T) {
	_, ts := newTestServer(t, nil)

	var health api.HealthResponse
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/health", &health))
	require.Equal(t, "ok", health.Status)

	down := httptest.NewServer(NewServer(unhealthyStore{}, nil).Handler())
	defer down.Close()

	require.Equal(t, http.StatusServiceUnavailable, getJSON(t, down.URL+"/health", &health))
	require.Equal(t, "unavailable", health.Status)

	var errResp api.ErrorResponse
	require.Equal(t, http.StatusInternalServerError, getJSON(t, down.URL+api.BasePath+"/activities", &errResp))
	require.Equal(t, "internal server error", errResp.Error)
}
