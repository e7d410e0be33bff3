// Package geo loads the county polygon dataset backing the choropleth view
// and serves per-CBSA slices of it keyed by 5-digit FIPS code.
package geo

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/gfc-explorer/internal/model"
)

// CountySet is an immutable index of county boundary features by FIPS code,
// built once at startup.
type CountySet struct {
	features map[string]*geojson.Feature
}

// LoadCounties loads the county boundary dataset in the given format:
// "geojson" (default) or "shapefile".
func LoadCounties(path, format string) (*CountySet, error) {
	switch format {
	case "", "geojson":
		return LoadGeoJSON(path)
	case "shapefile":
		return LoadShapefile(path)
	default:
		return nil, eris.Errorf("geo: unknown boundary format %q", format)
	}
}

// LoadGeoJSON reads a county FeatureCollection (e.g. the Plotly
// geojson-counties-fips dataset) and indexes features by FIPS. Features carry
// the FIPS either as the feature id or as a GEOID property.
func LoadGeoJSON(path string) (*CountySet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "geo: read county geojson")
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(raw, &fc); err != nil {
		return nil, eris.Wrap(err, "geo: parse county geojson")
	}

	set := &CountySet{features: make(map[string]*geojson.Feature, len(fc.Features))}
	for _, f := range fc.Features {
		fips := featureFIPS(f)
		if fips == "" {
			continue
		}
		set.features[fips] = f
	}
	if len(set.features) == 0 {
		return nil, eris.New("geo: county geojson has no FIPS-keyed features")
	}
	return set, nil
}

// featureFIPS extracts the 5-digit FIPS from a county feature.
func featureFIPS(f *geojson.Feature) string {
	if f.ID != "" {
		return f.ID
	}
	for _, key := range []string{"GEOID", "geoid", "id"} {
		if v, ok := f.Properties[key].(string); ok && v != "" {
			return v
		}
	}
	// TIGER attribute pair.
	state, _ := f.Properties["STATEFP"].(string)
	county, _ := f.Properties["COUNTYFP"].(string)
	if state != "" && county != "" {
		return state + county
	}
	return ""
}

// Len returns the number of indexed counties.
func (s *CountySet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.features)
}

// Has reports whether the set has geometry for the given FIPS.
func (s *CountySet) Has(fips string) bool {
	if s == nil {
		return false
	}
	_, ok := s.features[strings.TrimSpace(fips)]
	return ok
}

// ForTracts builds a FeatureCollection for the counties of the given tract
// aggregates, with hpi_loss and population joined in as feature properties.
// Geometry is shared with the index; property maps are fresh so callers never
// mutate the loaded set. Tracts without geometry are skipped.
func (s *CountySet) ForTracts(rows []model.TractAggregate) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: []*geojson.Feature{}}
	if s == nil {
		return fc
	}
	for _, r := range rows {
		src, ok := s.features[r.FIPS]
		if !ok {
			continue
		}
		props := make(map[string]any, len(src.Properties)+3)
		for k, v := range src.Properties {
			props[k] = v
		}
		props["fips"] = r.FIPS
		props["hpi_loss"] = r.HPILoss
		props["population"] = r.Population
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         src.ID,
			Geometry:   src.Geometry,
			Properties: props,
		})
	}
	return fc
}

// Center returns the mean tract coordinates, used to center the map view.
// ok is false when no tract carries coordinates.
func Center(rows []model.TractAggregate) (lat, lng float64, ok bool) {
	n := 0
	for _, r := range rows {
		if r.Latitude == 0 && r.Longitude == 0 {
			continue
		}
		lat += r.Latitude
		lng += r.Longitude
		n++
	}
	if n == 0 {
		return 0, 0, false
	}
	return lat / float64(n), lng / float64(n), true
}
