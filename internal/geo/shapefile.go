package geo

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

// LoadShapefile reads county boundaries from a Census TIGER shapefile
// (tl_*_us_county.shp) and indexes them by 5-digit FIPS, as an alternative to
// the GeoJSON dataset.
func LoadShapefile(path string) (*CountySet, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	// Build field name -> index map.
	fields := reader.Fields()
	fieldIdx := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToLower(name)] = i
	}

	attr := func(name string) string {
		idx, ok := fieldIdx[name]
		if !ok {
			return ""
		}
		v := strings.TrimRight(reader.Attribute(idx), "\x00")
		return strings.TrimSpace(v)
	}

	set := &CountySet{features: make(map[string]*geojson.Feature)}
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()

		fips := attr("geoid")
		if fips == "" {
			state := attr("statefp")
			county := attr("countyfp")
			if state != "" && county != "" {
				fips = state + county
			}
		}
		if fips == "" {
			skipped++
			continue
		}

		poly, ok := shapePolygon(shape)
		if !ok {
			skipped++
			continue
		}

		set.features[fips] = &geojson.Feature{
			ID:       fips,
			Geometry: poly,
			Properties: map[string]any{
				"NAME": attr("name"),
			},
		}
	}

	if skipped > 0 {
		zap.L().Debug("geo: skipped shapefile records", zap.Int("skipped", skipped))
	}
	if len(set.features) == 0 {
		return nil, eris.Errorf("geo: no county records in shapefile %s", path)
	}
	return set, nil
}

// shapePolygon converts a shapefile polygon record into a geom.Polygon with
// each part as a ring.
func shapePolygon(shape shp.Shape) (*geom.Polygon, bool) {
	p, ok := shape.(*shp.Polygon)
	if !ok || len(p.Points) == 0 {
		return nil, false
	}

	parts := p.Parts
	if len(parts) == 0 {
		parts = []int32{0}
	}

	flat := make([]float64, 0, len(p.Points)*2)
	ends := make([]int, 0, len(parts))
	for i, start := range parts {
		end := int32(len(p.Points))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		for _, pt := range p.Points[start:end] {
			flat = append(flat, pt.X, pt.Y)
		}
		ends = append(ends, len(flat))
	}

	return geom.NewPolygonFlat(geom.XY, flat, ends), true
}
