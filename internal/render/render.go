// Package render emits the static facility map page.
package render

import (
	"encoding/json"
	"html/template"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/lockdown-systems/icewatch/internal/model"
)

// Continental US centroid, the initial map view.
const (
	centerLat = 39.8283
	centerLon = -98.5795
	zoomLevel = 4
)

var pageTemplate = template.Must(template.New("map").Parse(pageHTML))

type pageData struct {
	Title     string
	CenterLat float64
	CenterLon float64
	Zoom      int
	GeoJSON   template.JS
}

// Render writes a self-contained Leaflet page to outPath, one marker per
// facility with coordinates. Records that failed geocoding are skipped.
// The output file is overwritten on each render.
func Render(snap *model.Snapshot, outPath string) error {
	fc, skipped := featureCollection(snap.Facilities)

	data, err := json.Marshal(fc)
	if err != nil {
		return eris.Wrap(err, "render: marshal features")
	}

	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrap(err, "render: create output dir")
		}
	}

	out, err := os.Create(outPath)
	if err != nil {
		return eris.Wrap(err, "render: create output file")
	}
	defer out.Close() //nolint:errcheck

	err = pageTemplate.Execute(out, pageData{
		Title:     "ICE Facilities Map",
		CenterLat: centerLat,
		CenterLon: centerLon,
		Zoom:      zoomLevel,
		GeoJSON:   template.JS(data),
	})
	if err != nil {
		return eris.Wrap(err, "render: execute template")
	}

	zap.L().Info("map rendered",
		zap.String("path", outPath),
		zap.Int("markers", len(fc.Features)),
		zap.Int("skipped", skipped),
	)
	return nil
}

// featureCollection builds the marker payload. Popup fields are HTML-escaped
// here so facility names cannot inject markup into the page.
func featureCollection(records []model.FacilityRecord) (*geojson.FeatureCollection, int) {
	fc := &geojson.FeatureCollection{}
	skipped := 0
	for _, rec := range records {
		if !rec.Geocoded() {
			skipped++
			continue
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry: geom.NewPointFlat(geom.XY, []float64{*rec.Longitude, *rec.Latitude}),
			Properties: map[string]interface{}{
				"name":         template.HTMLEscapeString(rec.Name),
				"address":      template.HTMLEscapeString(rec.DisplayAddress()),
				"criminal":     rec.CriminalTotal(),
				"non_criminal": rec.NonCriminalTotal(),
			},
		})
	}
	return fc, skipped
}

const pageHTML = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8" />
    <title>{{.Title}}</title>
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css" />
    <style> #map { height: 100vh; width: 100vw; } </style>
</head>
<body>
    <div id="map"></div>
    <script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
    <script>
    var map = L.map('map').setView([{{.CenterLat}}, {{.CenterLon}}], {{.Zoom}});
    L.tileLayer('https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png', {
        maxZoom: 18,
        attribution: '&copy; OpenStreetMap contributors'
    }).addTo(map);
    var facilities = {{.GeoJSON}};
    L.geoJSON(facilities, {
        onEachFeature: function (feature, layer) {
            var p = feature.properties;
            layer.bindPopup('<b>' + p.name + '</b><br/>' + p.address +
                '<br/>Criminals: <b>' + p.criminal + '</b>' +
                '<br/>Non-Criminals: <b>' + p.non_criminal + '</b>');
        }
    }).addTo(map);
    </script>
</body>
</html>
`
