package geo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/gfc-explorer/internal/model"
)

const countyFixture = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "id": "32003",
      "properties": {"NAME": "Clark"},
      "geometry": {"type": "Polygon", "coordinates": [[[-115.4, 35.9], [-114.9, 35.9], [-114.9, 36.4], [-115.4, 36.4], [-115.4, 35.9]]]}
    },
    {
      "type": "Feature",
      "properties": {"GEOID": "32031", "NAME": "Washoe"},
      "geometry": {"type": "Polygon", "coordinates": [[[-120.0, 39.0], [-119.5, 39.0], [-119.5, 40.0], [-120.0, 40.0], [-120.0, 39.0]]]}
    },
    {
      "type": "Feature",
      "properties": {"STATEFP": "32", "COUNTYFP": "005", "NAME": "Douglas"},
      "geometry": {"type": "Polygon", "coordinates": [[[-120.0, 38.6], [-119.3, 38.6], [-119.3, 39.2], [-120.0, 39.2], [-120.0, 38.6]]]}
    },
    {
      "type": "Feature",
      "properties": {"NAME": "unkeyed"},
      "geometry": {"type": "Polygon", "coordinates": [[[0, 0], [1, 0], [1, 1], [0, 1], [0, 0]]]}
    }
  ]
}`

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "counties.geojson")
	require.NoError(t, os.WriteFile(path, []byte(countyFixture), 0644))
	return path
}

func TestLoadGeoJSON(t *testing.T) {
	set, err := LoadGeoJSON(writeFixture(t))
	require.NoError(t, err)

	// The unkeyed feature is dropped; the three FIPS spellings all index.
	assert.Equal(t, 3, set.Len())
	assert.True(t, set.Has("32003"))
	assert.True(t, set.Has("32031"))
	assert.True(t, set.Has("32005"))
	assert.False(t, set.Has("06037"))
}

func TestLoadGeoJSONMissingFile(t *testing.T) {
	_, err := LoadGeoJSON(filepath.Join(t.TempDir(), "nope.geojson"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read county geojson")
}

func TestLoadGeoJSONNoFeatures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.geojson")
	require.NoError(t, os.WriteFile(path, []byte(`{"type":"FeatureCollection","features":[]}`), 0644))

	_, err := LoadGeoJSON(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no FIPS-keyed features")
}

func TestLoadCountiesUnknownFormat(t *testing.T) {
	_, err := LoadCounties("x", "kml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown boundary format")
}

func TestForTracts(t *testing.T) {
	set, err := LoadGeoJSON(writeFixture(t))
	require.NoError(t, err)

	rows := []model.TractAggregate{
		{FIPS: "32003", HPILoss: -0.35, Population: 54000},
		{FIPS: "99999", HPILoss: -0.10, Population: 100},
	}

	fc := set.ForTracts(rows)
	require.Len(t, fc.Features, 1)

	f := fc.Features[0]
	assert.Equal(t, "32003", f.ID)
	assert.Equal(t, -0.35, f.Properties["hpi_loss"])
	assert.Equal(t, int64(54000), f.Properties["population"])
	// Source properties ride along untouched.
	assert.Equal(t, "Clark", f.Properties["NAME"])
}

func TestForTractsDoesNotMutateIndex(t *testing.T) {
	set, err := LoadGeoJSON(writeFixture(t))
	require.NoError(t, err)

	rows := []model.TractAggregate{{FIPS: "32003", HPILoss: -0.35}}
	fc := set.ForTracts(rows)
	fc.Features[0].Properties["NAME"] = "mutated"

	again := set.ForTracts(rows)
	assert.Equal(t, "Clark", again.Features[0].Properties["NAME"])
}

func TestForTractsNilSet(t *testing.T) {
	var set *CountySet
	fc := set.ForTracts([]model.TractAggregate{{FIPS: "32003"}})
	assert.NotNil(t, fc)
	assert.Empty(t, fc.Features)
}

func TestCenter(t *testing.T) {
	lat, lng, ok := Center([]model.TractAggregate{
		{Latitude: 36.0, Longitude: -115.0},
		{Latitude: 38.0, Longitude: -117.0},
		{},
	})
	require.True(t, ok)
	assert.InDelta(t, 37.0, lat, 1e-9)
	assert.InDelta(t, -116.0, lng, 1e-9)
}

func TestCenterNoCoordinates(t *testing.T) {
	_, _, ok := Center([]model.TractAggregate{{}, {}})
	assert.False(t, ok)
	_, _, ok = Center(nil)
	assert.False(t, ok)
}
