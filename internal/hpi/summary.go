package hpi

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/gfc-explorer/internal/model"
)

var popPrinter = message.NewPrinter(language.AmericanEnglish)

// Summarize annotates a year series with its global peak and trough and the
// percentage drop between them. The drop is computed over the series extremes
// regardless of which came first; it does not enforce peak-before-trough.
// When the same average recurs, the earliest year wins (the series is
// ascending by year).
func Summarize(points []model.YearPoint) model.SeriesSummary {
	if len(points) == 0 {
		return model.SeriesSummary{Empty: true}
	}

	peak, trough := points[0], points[0]
	for _, p := range points[1:] {
		if p.AvgHPI > peak.AvgHPI {
			peak = p
		}
		if p.AvgHPI < trough.AvgHPI {
			trough = p
		}
	}

	s := model.SeriesSummary{
		PeakYear:   peak.Year,
		PeakHPI:    peak.AvgHPI,
		TroughYear: trough.Year,
		TroughHPI:  trough.AvgHPI,
	}
	if peak.AvgHPI != 0 {
		s.PercentDrop = (trough.AvgHPI - peak.AvgHPI) / peak.AvgHPI * 100
	}
	return s
}

// SummarizeTracts builds the key-statistics panel from the per-tract table:
// total metro population, the earliest year any tract bottomed, the latest
// year any tract peaked, and the mean loss across tracts.
func SummarizeTracts(cbsaName string, rows []model.TractAggregate) model.TractSummary {
	if len(rows) == 0 {
		return model.TractSummary{CBSAName: cbsaName, Empty: true}
	}

	s := model.TractSummary{CBSAName: cbsaName}
	var lossSum float64
	for i, r := range rows {
		s.TotalPopulation += r.Population
		lossSum += r.HPILoss
		if i == 0 {
			s.MinHPIYear = r.MinYear
			s.MaxHPIYear = r.MaxYear
			continue
		}
		if r.MinYear < s.MinHPIYear {
			s.MinHPIYear = r.MinYear
		}
		if r.MaxYear > s.MaxHPIYear {
			s.MaxHPIYear = r.MaxYear
		}
	}
	s.AvgHPILoss = lossSum / float64(len(rows))
	s.PopulationText = popPrinter.Sprintf("%d", s.TotalPopulation)
	return s
}
