package leaflet

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/civicflow/pkg/domain"
	"github.com/aretw0/civicflow/pkg/ports"
)

var _ ports.MapRenderer = (*Renderer)(nil)

// Renderer writes standalone Leaflet HTML maps, one file per call.
type Renderer struct {
	dir  string
	zoom int
	now  func() time.Time
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithZoom sets the initial zoom level (default 12).
func WithZoom(zoom int) Option {
	return func(r *Renderer) {
		if zoom > 0 {
			r.zoom = zoom
		}
	}
}

// WithClock replaces the clock used to name files.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		r.now = now
	}
}

// New creates a renderer writing into dir ("maps" when empty).
func New(dir string, opts ...Option) *Renderer {
	if dir == "" {
		dir = "maps"
	}
	r := &Renderer{dir: dir, zoom: 12, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type marker struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Popup string  `json:"popup"`
}

type page struct {
	Title   string
	Lat     float64
	Lon     float64
	Zoom    int
	Markers []marker
}

// Render writes a map of rows and returns the file path, or "" when the rows
// carry no usable coordinates.
func (r *Renderer) Render(ctx context.Context, title string, rows []domain.Row) (string, error) {
	latCol, lonCol, ok := DetectCoordinates(rows)
	if !ok {
		return "", nil
	}

	var markers []marker
	var sumLat, sumLon float64
	for _, row := range rows {
		lat, ok1 := toFloat(row[latCol])
		lon, ok2 := toFloat(row[lonCol])
		if !ok1 || !ok2 {
			continue
		}
		markers = append(markers, marker{Lat: lat, Lon: lon, Popup: popup(row, latCol, lonCol)})
		sumLat += lat
		sumLon += lon
	}
	if len(markers) == 0 {
		return "", nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	err := mapTemplate.Execute(&buf, page{
		Title:   title,
		Lat:     sumLat / float64(len(markers)),
		Lon:     sumLon / float64(len(markers)),
		Zoom:    r.zoom,
		Markers: markers,
	})
	if err != nil {
		return "", fmt.Errorf("render map: %w", err)
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("create map directory: %w", err)
	}
	return r.write(buf.Bytes())
}

func (r *Renderer) write(data []byte) (string, error) {
	base := "map_" + r.now().Format("20060102_150405")
	for i := 0; i < 100; i++ {
		name := base + ".html"
		if i > 0 {
			name = fmt.Sprintf("%s_%d.html", base, i)
		}
		path := filepath.Join(r.dir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create map file: %w", err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			return "", fmt.Errorf("write map file: %w", err)
		}
		return path, f.Close()
	}
	return "", fmt.Errorf("too many maps named %s in %s", base, r.dir)
}

var (
	latNames = []string{"latitude", "lat"}
	lonNames = []string{"longitude", "lon", "lng", "long"}
)

// DetectCoordinates finds latitude and longitude columns by name. Exact names
// (lat, latitude, lon, lng, long, longitude, any case) win; otherwise the first
// column, in name order, containing "lat" or "lon"/"lng" that holds a numeric
// value in some row is used.
func DetectCoordinates(rows []domain.Row) (latCol, lonCol string, ok bool) {
	if len(rows) == 0 {
		return "", "", false
	}
	cols := make([]string, 0, len(rows[0]))
	for k := range rows[0] {
		cols = append(cols, k)
	}
	sort.Strings(cols)

	latCol = coordinateColumn(rows, cols, latNames, "lat")
	lonCol = coordinateColumn(rows, cols, lonNames, "lon", "lng")
	return latCol, lonCol, latCol != "" && lonCol != "" && latCol != lonCol
}

func coordinateColumn(rows []domain.Row, cols, exact []string, fragments ...string) string {
	for _, name := range exact {
		for _, col := range cols {
			if strings.EqualFold(col, name) {
				return col
			}
		}
	}
	for _, col := range cols {
		lower := strings.ToLower(col)
		for _, f := range fragments {
			if strings.Contains(lower, f) && numeric(rows, col) {
				return col
			}
		}
	}
	return ""
}

func numeric(rows []domain.Row, col string) bool {
	for _, row := range rows {
		if _, ok := toFloat(row[col]); ok {
			return true
		}
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	case []byte:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(n)), 64)
		return f, err == nil
	case fmt.Stringer:
		f, err := strconv.ParseFloat(n.String(), 64)
		return f, err == nil
	}
	return 0, false
}

func popup(row domain.Row, skip ...string) string {
	keys := make([]string, 0, len(row))
	for k := range row {
		if k == skip[0] || k == skip[1] {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if row[k] == nil {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %v", k, row[k]))
	}
	return strings.Join(parts, "\n")
}

var mapTemplate = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>html, body, #map { height: 100%; margin: 0; }</style>
</head>
<body>
<div id="map"></div>
<script>
var map = L.map('map').setView([{{.Lat}}, {{.Lon}}], {{.Zoom}});
L.tileLayer('https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png', {
  maxZoom: 19,
  attribution: '&copy; OpenStreetMap contributors'
}).addTo(map);
var markers = {{.Markers}};
markers.forEach(function (m) {
  var mk = L.marker([m.lat, m.lon]).addTo(map);
  if (m.popup) {
    var el = document.createElement('pre');
    el.textContent = m.popup;
    mk.bindPopup(el);
  }
});
</script>
</body>
</html>
`))
