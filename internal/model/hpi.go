package model

// Selection is the session-scoped dashboard state: the CBSA the user is
// looking at and the crisis window under study. It is created on the first
// interaction, overwritten on each subsequent one, and passed explicitly to
// every aggregation call.
type Selection struct {
	CBSAName string `json:"cbsa_name"`
	YearMin  int    `json:"year_min"`
	YearMax  int    `json:"year_max"`
}

// DefaultYearMin and DefaultYearMax bound the housing-crisis window.
const (
	DefaultYearMin = 2005
	DefaultYearMax = 2013
)

// DefaultSelection returns a Selection for the given CBSA over the default
// crisis window.
func DefaultSelection(cbsaName string) Selection {
	return Selection{CBSAName: cbsaName, YearMin: DefaultYearMin, YearMax: DefaultYearMax}
}

// Normalize fills in the default window for unset year bounds.
func (s Selection) Normalize() Selection {
	if s.YearMin == 0 {
		s.YearMin = DefaultYearMin
	}
	if s.YearMax == 0 {
		s.YearMax = DefaultYearMax
	}
	return s
}

// TractAggregate is one row of the per-tract loss table: the HPI extremes a
// county-level tract saw inside the selected window, where they occurred, and
// the peak-to-trough loss ratio. Keyed by (CBSAName, FIPS).
type TractAggregate struct {
	CBSAName   string  `json:"cbsa_name"`
	FIPS       string  `json:"fips"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Population int64   `json:"population"`
	MinHPI     float64 `json:"min_hpi"`
	MaxHPI     float64 `json:"max_hpi"`
	MinYear    int     `json:"min_year"`
	MaxYear    int     `json:"max_year"`
	// HPILoss = MinHPI/MaxHPI - 1. Always <= 0 inside the window.
	HPILoss float64 `json:"hpi_loss"`
}

// YearPoint is one point of the CBSA-level series: the average HPI across all
// of the CBSA's ZIPs for one year.
type YearPoint struct {
	Year   int     `json:"year"`
	AvgHPI float64 `json:"avg_hpi"`
}

// CBSAOption is one entry of the metro-area picker, ordered by descending
// total population.
type CBSAOption struct {
	Name       string `json:"name"`
	Population int64  `json:"population"`
}

// SeriesSummary annotates a year series with its peak, trough, and the
// percentage drop between them. The drop uses the global extremes of the
// series regardless of which came first.
type SeriesSummary struct {
	PeakYear    int     `json:"peak_year"`
	PeakHPI     float64 `json:"peak_hpi"`
	TroughYear  int     `json:"trough_year"`
	TroughHPI   float64 `json:"trough_hpi"`
	PercentDrop float64 `json:"percent_drop"`
	Empty       bool    `json:"empty"`
}

// TractSummary is the key-statistics panel for a selection: aggregate
// population, the window years at which tracts bottomed and peaked, and the
// mean loss across tracts.
type TractSummary struct {
	CBSAName        string  `json:"cbsa_name"`
	TotalPopulation int64   `json:"total_population"`
	PopulationText  string  `json:"population_text"`
	MinHPIYear      int     `json:"min_hpi_year"`
	MaxHPIYear      int     `json:"max_hpi_year"`
	AvgHPILoss      float64 `json:"avg_hpi_loss"`
	Empty           bool    `json:"empty"`
}
