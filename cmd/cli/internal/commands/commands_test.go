package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/secunda/directory/internal/api"
	"github.com/stretchr/testify/require"
)

func TestPrintTreeOrganizations(t *testing.T) {
	var buf bytes.Buffer
	id := uuid.New()

	printTreeOrganizations(&buf, &api.ActivityTreeOrganizationsResponse{
		Activity: "Машины",
		Organizations: []api.TreeOrganization{
			{ID: id, Name: "ООО Автозвук", Activities: []string{"Колонки", "Провода"}},
		},
	})

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "Organizations under Машины:\n"))
	require.Contains(t, out, id.String())
	require.Contains(t, out, "Колонки, Провода")
}

func TestPrintEmptyResults(t *testing.T) {
	tests := []struct {
		name  string
		print func(buf *bytes.Buffer)
		want  string
	}{
		{
			name: "address",
			print: func(buf *bytes.Buffer) {
				printAddressOrganizations(buf, &api.AddressOrganizationsResponse{Address: "nowhere"})
			},
			want: "No organizations found.",
		},
		{
			name: "nearby",
			print: func(buf *bytes.Buffer) {
				printNearby(buf, &api.NearbyResponse{RadiusMeters: 100})
			},
			want: "No buildings found.",
		},
		{
			name: "activities",
			print: func(buf *bytes.Buffer) {
				printActivities(buf, &api.ActivitiesResponse{Parent: "Еда"})
			},
			want: "No activities found.",
		},
		{
			name: "refs",
			print: func(buf *bytes.Buffer) {
				printOrganizationRefs(buf, nil)
			},
			want: "No organizations found.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.print(&buf)
			require.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestPrintOrganization(t *testing.T) {
	var buf bytes.Buffer
	coordinate := "55.753933,37.620795"

	printOrganization(&buf, &api.Organization{
		ID:       uuid.New(),
		Name:     "ООО Автозвук",
		Building: api.Building{ID: uuid.New(), Address: "Москва, Малый Купаввенский пр, д.5", Coordinate: &coordinate},
	})

	out := buf.String()
	require.Contains(t, out, "Москва, Малый Купаввенский пр, д.5 (55.753933,37.620795)")
	require.Contains(t, out, "Phones:      -")
}

func TestPrintNearby(t *testing.T) {
	var buf bytes.Buffer

	printNearby(&buf, &api.NearbyResponse{
		Center:       api.Building{Address: "Центр"},
		RadiusMeters: 500,
		Buildings: []api.NearbyBuilding{
			{
				Building:       api.Building{ID: uuid.New(), Address: "Москва, 2-й Кабельный пр, д.37"},
				DistanceMeters: 296.05,
				Organizations:  []api.OrganizationRef{{ID: uuid.New(), Name: "ИП Провода"}},
			},
		},
	})

	out := buf.String()
	require.Contains(t, out, "Buildings within 500m of Центр:")
	require.Contains(t, out, "296.1m")
	require.Contains(t, out, "ИП Провода")
}

func TestParseID(t *testing.T) {
	id := uuid.New()

	got, err := parseID(id.String())
	require.NoError(t, err)
	require.Equal(t, id, got)

	_, err = parseID("42")
	require.Error(t, err)
}
