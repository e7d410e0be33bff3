package refdata

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Manifest optionally remaps source files per table. It is read from
// sources.yaml in the data directory when present; the built-in file names
// from Tables apply otherwise.
type Manifest struct {
	// NullSentinel overrides the marker treated as an absent value.
	NullSentinel string `yaml:"null_sentinel"`

	// Tables maps table name to its source override.
	Tables map[string]SourceOverride `yaml:"tables"`

	// Boundaries points at the county polygon dataset consumed by the
	// choropleth boundary endpoint.
	Boundaries BoundarySource `yaml:"boundaries"`
}

// SourceOverride remaps one table's source file and names where the fetch
// command downloads it from.
type SourceOverride struct {
	File string `yaml:"file"`
	URL  string `yaml:"url"`
}

// BoundarySource locates the county boundary dataset.
type BoundarySource struct {
	File   string `yaml:"file"`
	Format string `yaml:"format"` // "geojson" (default) or "shapefile"
	URL    string `yaml:"url"`
}

// URLFor returns the configured download URL for a table, empty when none.
func (m Manifest) URLFor(table string) string {
	return m.Tables[table].URL
}

// LoadManifest reads sources.yaml from dir. A missing file returns an empty
// manifest; a malformed one is an error, since a bad manifest would silently
// load the wrong data.
func LoadManifest(dir string) (Manifest, error) {
	var m Manifest

	raw, err := os.ReadFile(filepath.Join(dir, "sources.yaml"))
	if os.IsNotExist(err) {
		return m, nil
	}
	if err != nil {
		return m, eris.Wrap(err, "refdata: read sources.yaml")
	}
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return m, eris.Wrap(err, "refdata: parse sources.yaml")
	}

	// A typo'd table name would silently fall back to the built-in file,
	// loading the wrong data. Reject it instead.
	for name := range m.Tables {
		if _, ok := SpecByName(name); !ok {
			return m, eris.Errorf("refdata: source override for unknown table %q", name)
		}
	}
	return m, nil
}

// FileFor resolves the source path for a table under the manifest.
func (m Manifest) FileFor(dir string, spec TableSpec) string {
	if o, ok := m.Tables[spec.Name]; ok && o.File != "" {
		return filepath.Join(dir, o.File)
	}
	return filepath.Join(dir, spec.File)
}

// Sentinel returns the configured null sentinel, defaulting to ".".
func (m Manifest) Sentinel(fallback string) string {
	if m.NullSentinel != "" {
		return m.NullSentinel
	}
	if fallback != "" {
		return fallback
	}
	return "."
}
