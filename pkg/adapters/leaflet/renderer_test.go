package leaflet_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/civicflow/pkg/adapters/leaflet"
	"github.com/aretw0/civicflow/pkg/domain"
)

func TestDetectCoordinates(t *testing.T) {
	tests := []struct {
		name   string
		row    domain.Row
		lat    string
		lon    string
		wantOK bool
	}{
		{"lat long", domain.Row{"lat": 1.0, "long": 2.0}, "lat", "long", true},
		{"latitude longitude", domain.Row{"Latitude": 1.0, "Longitude": 2.0}, "Latitude", "Longitude", true},
		{"lng", domain.Row{"location_lat": 1.0, "location_lng": 2.0}, "location_lat", "location_lng", true},
		{"no coordinates", domain.Row{"district": "B2"}, "", "", false},
		{"only lat", domain.Row{"lat": 1.0}, "lat", "", false},
		{"exact name beats substring", domain.Row{"escalated": "no", "latitude": 42.3, "longitude": -71.0}, "latitude", "longitude", true},
		{"non-numeric substring skipped", domain.Row{"violation": "parking", "gps_lat": "42.3", "gps_lon": "-71.0"}, "gps_lat", "gps_lon", true},
		{"substring without numbers", domain.Row{"population": "dense", "lng": -71.0}, "", "lng", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lat, lon, ok := leaflet.DetectCoordinates([]domain.Row{tt.row})
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.lat, lat)
				assert.Equal(t, tt.lon, lon)
			}
		})
	}
}

func TestRender_IgnoresLookalikeColumns(t *testing.T) {
	r := leaflet.New(t.TempDir())
	rows := []domain.Row{
		{"escalated": "no", "latitude": 42.3, "longitude": -71.0},
		{"escalated": "yes", "latitude": 42.4, "longitude": -71.1},
	}

	path, err := r.Render(context.Background(), "Escalations", rows)
	require.NoError(t, err)
	assert.NotEmpty(t, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "42.4")
}

func TestRender(t *testing.T) {
	dir := t.TempDir()
	clock := func() time.Time { return time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC) }
	r := leaflet.New(dir, leaflet.WithClock(clock))

	rows := []domain.Row{
		{"lat": 42.25, "long": -71.25, "case_title": "Pothole <script>"},
		{"lat": "42.75", "long": "-70.75", "case_title": "Graffiti"},
		{"lat": nil, "long": nil, "case_title": "Unknown location"},
	}

	path, err := r.Render(context.Background(), "Potholes", rows)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "map_20240309_140506.html"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(data)
	assert.Contains(t, html, "<title>Potholes</title>")
	assert.Contains(t, html, "42.5")
	assert.Contains(t, html, "-71")
	assert.Contains(t, html, "L.map('map').setView(")
	assert.Contains(t, html, "Graffiti")
	assert.NotContains(t, html, "Pothole <script>")
	assert.NotContains(t, html, "Unknown location")

	second, err := r.Render(context.Background(), "Again", rows)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "map_20240309_140506_1.html"), second)
}

func TestRender_NoCoordinates(t *testing.T) {
	dir := t.TempDir()
	r := leaflet.New(dir)

	path, err := r.Render(context.Background(), "x", []domain.Row{{"district": "B2", "count": 3}})
	require.NoError(t, err)
	assert.Empty(t, path)

	path, err = r.Render(context.Background(), "x", nil)
	require.NoError(t, err)
	assert.Empty(t, path)

	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}
