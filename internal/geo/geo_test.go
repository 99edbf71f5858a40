package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCoordinate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		lat     float64
		lon     float64
		wantErr bool
	}{
		{name: "plain", input: "55.75,37.62", lat: 55.75, lon: 37.62},
		{name: "whitespace around parts", input: " 55.75 , 37.62 ", lat: 55.75, lon: 37.62},
		{name: "negative", input: "-33.8688,151.2093", lat: -33.8688, lon: 151.2093},
		{name: "out of range is not validated", input: "123.0,500.5", lat: 123.0, lon: 500.5},
		{name: "garbage", input: "bad", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "three parts", input: "1,2,3", wantErr: true},
		{name: "missing longitude", input: "55.75,", wantErr: true},
		{name: "non numeric latitude", input: "north,37.62", wantErr: true},
		{name: "nan", input: "NaN,37.62", wantErr: true},
		{name: "infinity", input: "55.75,+Inf", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lat, lon, err := ParseCoordinate(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				require.ErrorIs(t, err, ErrFormat)
				return
			}
			require.NoError(t, err)
			require.InDelta(t, tt.lat, lat, 1e-12)
			require.InDelta(t, tt.lon, lon, 1e-12)
		})
	}
}

func TestFormatCoordinate_RoundTrip(t *testing.T) {
	s := FormatCoordinate(55.753933, 37.620795)
	require.Equal(t, "55.753933,37.620795", s)

	lat, lon, err := ParseCoordinate(s)
	require.NoError(t, err)
	require.Equal(t, 55.753933, lat)
	require.Equal(t, 37.620795, lon)
}

func TestDistanceMeters(t *testing.T) {
	t.Run("same point is zero", func(t *testing.T) {
		require.Equal(t, 0.0, DistanceMeters(55.753933, 37.620795, 55.753933, 37.620795))
	})

	t.Run("symmetric", func(t *testing.T) {
		d1 := DistanceMeters(55.753933, 37.620795, 55.829622, 37.637486)
		d2 := DistanceMeters(55.829622, 37.637486, 55.753933, 37.620795)
		require.InDelta(t, d1, d2, 1e-9)
	})

	t.Run("known moscow pair", func(t *testing.T) {
		d := DistanceMeters(55.753933, 37.620795, 55.752023, 37.617499)
		require.InDelta(t, 296.05, d, 1.0)
	})

	t.Run("quarter meridian", func(t *testing.T) {
		d := DistanceMeters(0, 0, 90, 0)
		require.InDelta(t, math.Pi/2*EarthRadiusMeters, d, 1e-6)
	})

	t.Run("antipodal points stay finite", func(t *testing.T) {
		d := DistanceMeters(0, 0, 0, 180)
		require.False(t, math.IsNaN(d))
		require.InDelta(t, math.Pi*EarthRadiusMeters, d, 1e-3)
	})
}

func TestBoundingBox(t *testing.T) {
	t.Run("contains center and points within radius", func(t *testing.T) {
		box := BoundingBox(55.753933, 37.620795, 1000)
		require.True(t, box.Contains(55.753933, 37.620795))
		require.True(t, box.Contains(55.752023, 37.617499))
		require.False(t, box.Contains(55.829622, 37.637486))
	})

	t.Run("zero radius is the point itself", func(t *testing.T) {
		box := BoundingBox(10, 20, 0)
		require.True(t, box.Contains(10, 20))
		require.False(t, box.Contains(10.0001, 20))
	})

	t.Run("latitude delta matches radius", func(t *testing.T) {
		box := BoundingBox(0, 0, 111195)
		require.InDelta(t, 1.0, box.MaxLat, 1e-3)
		require.InDelta(t, -1.0, box.MinLat, 1e-3)
		// cos(0) == 1 so the longitude delta equals the latitude delta
		require.InDelta(t, box.MaxLat, box.MaxLon, 1e-9)
	})

	t.Run("pole does not divide by zero", func(t *testing.T) {
		box := BoundingBox(90, 0, 1000)
		require.False(t, math.IsInf(box.MaxLon, 0))
		require.False(t, math.IsNaN(box.MaxLon))
		require.True(t, box.Contains(90, 179))
	})
}
