package mapview

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"reviews-mapper/geo"
)

// mapTemplate is a self-contained Leaflet page plotting the grid points
// around the search center.
const mapTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8"/>
<title>Search grid</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css"/>
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>html, body, #map { height: 100%; margin: 0; }</style>
</head>
<body>
<div id="map"></div>
<script>
var map = L.map('map').setView([{{.CenterLat}}, {{.CenterLon}}], {{.Zoom}});
L.tileLayer('https://tile.openstreetmap.org/{z}/{x}/{y}.png', {
  attribution: '&copy; OpenStreetMap contributors'
}).addTo(map);
var points = [
{{- range .Points}}
  [{{.Lat}}, {{.Lon}}],
{{- end}}
];
points.forEach(function (p) {
  L.circleMarker(p, {radius: 4, color: '#3B0B39', fillOpacity: 0.8}).addTo(map);
});
</script>
</body>
</html>
`

// WriteHTML renders an interactive map of the grid points to path.
func WriteHTML(path string, center geo.Point, points []geo.Point) error {
	tmpl, err := template.New("gridmap").Parse(mapTemplate)
	if err != nil {
		return fmt.Errorf("mapview: parse template: %w", err)
	}

	data := struct {
		CenterLat float64
		CenterLon float64
		Zoom      int
		Points    []geo.Point
	}{
		CenterLat: center.Lat,
		CenterLon: center.Lon,
		Zoom:      12,
		Points:    points,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("mapview: render: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("mapview: create output dir: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("mapview: write %q: %w", path, err)
	}
	return nil
}
