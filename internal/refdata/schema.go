package refdata

// TableSpec describes one reference table: its name, the delimited source
// file it loads from, and the normalized column set.
type TableSpec struct {
	Name    string
	File    string
	Columns []string
}

// The seven reference tables. Column names are normalized here; the source
// header spellings (e.g. "Five-Digit ZIP Code") are bound in csv.go.
var Tables = []TableSpec{
	{
		Name:    "hpi_tract",
		File:    "hpi_at_bdl_tract.csv",
		Columns: []string{"tract", "fips", "year", "hpi"},
	},
	{
		Name:    "hpi_zip",
		File:    "hpi_zip5.csv",
		Columns: []string{"zip", "year", "hpi"},
	},
	{
		Name:    "zip_cbsa",
		File:    "us_zip5_cbsa.csv",
		Columns: []string{"zip", "cbsa_code"},
	},
	{
		Name:    "zip_attr",
		File:    "us_zip5_attr.csv",
		Columns: []string{"zip", "county_fips", "lat", "lng", "population"},
	},
	{
		Name:    "zip_pop",
		File:    "us_zip5_population.csv",
		Columns: []string{"zip", "population"},
	},
	{
		Name:    "fips_cbsa",
		File:    "us_fips_cbsa.csv",
		Columns: []string{"state_fips", "county_fips", "cbsa_code", "fips"},
	},
	{
		Name:    "cbsa",
		File:    "us_cbsas.csv",
		Columns: []string{"cbsa_code", "cbsa_name"},
	},
}

// SpecByName returns the TableSpec for the named table.
func SpecByName(name string) (TableSpec, bool) {
	for _, s := range Tables {
		if s.Name == name {
			return s, true
		}
	}
	return TableSpec{}, false
}

// migration is the shared DDL. Types are chosen to carry the same affinity
// in both SQLite and Postgres: TEXT codes, INTEGER years, BIGINT populations,
// DOUBLE PRECISION for HPI and coordinates.
const migration = `
CREATE TABLE IF NOT EXISTS hpi_tract (
	tract TEXT NOT NULL,
	fips  TEXT NOT NULL,
	year  INTEGER,
	hpi   DOUBLE PRECISION
);

CREATE TABLE IF NOT EXISTS hpi_zip (
	zip  TEXT NOT NULL,
	year INTEGER,
	hpi  DOUBLE PRECISION
);

CREATE TABLE IF NOT EXISTS zip_cbsa (
	zip       TEXT NOT NULL,
	cbsa_code TEXT
);

CREATE TABLE IF NOT EXISTS zip_attr (
	zip         TEXT NOT NULL,
	county_fips TEXT,
	lat         DOUBLE PRECISION,
	lng         DOUBLE PRECISION,
	population  BIGINT
);

CREATE TABLE IF NOT EXISTS zip_pop (
	zip        TEXT NOT NULL,
	population BIGINT
);

CREATE TABLE IF NOT EXISTS fips_cbsa (
	state_fips  TEXT,
	county_fips TEXT,
	cbsa_code   TEXT,
	fips        TEXT
);

CREATE TABLE IF NOT EXISTS cbsa (
	cbsa_code TEXT,
	cbsa_name TEXT
);

CREATE INDEX IF NOT EXISTS idx_hpi_tract_fips ON hpi_tract(fips);
CREATE INDEX IF NOT EXISTS idx_hpi_tract_year ON hpi_tract(year);
CREATE INDEX IF NOT EXISTS idx_hpi_zip_zip ON hpi_zip(zip);
CREATE INDEX IF NOT EXISTS idx_zip_cbsa_zip ON zip_cbsa(zip);
CREATE INDEX IF NOT EXISTS idx_zip_cbsa_code ON zip_cbsa(cbsa_code);
CREATE INDEX IF NOT EXISTS idx_zip_attr_county ON zip_attr(county_fips);
CREATE INDEX IF NOT EXISTS idx_fips_cbsa_fips ON fips_cbsa(fips);
CREATE INDEX IF NOT EXISTS idx_cbsa_code ON cbsa(cbsa_code);
`
