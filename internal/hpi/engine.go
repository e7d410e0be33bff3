// Package hpi implements the house-price-index aggregation engine: pure
// relational transformations over the reference tables that compute per-tract
// loss metrics and the CBSA-level year series for a selected metro area.
package hpi

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/gfc-explorer/internal/model"
	"github.com/sells-group/gfc-explorer/internal/observability"
	"github.com/sells-group/gfc-explorer/internal/refdata"
)

// Engine computes aggregations against a loaded reference store. All
// operations are deterministic reads; results are cached with a short TTL to
// bound memory under repeated interaction.
type Engine struct {
	store   refdata.Store
	cache   *resultCache
	metrics *observability.Metrics
}

// Options tunes the engine.
type Options struct {
	CacheTTL        time.Duration // <=0 disables the result cache
	CacheMaxEntries int
	Metrics         *observability.Metrics
}

// New creates an Engine over the given store.
func New(store refdata.Store, opts Options) *Engine {
	e := &Engine{store: store, metrics: opts.Metrics}
	if opts.CacheTTL > 0 {
		maxEntries := opts.CacheMaxEntries
		if maxEntries <= 0 {
			maxEntries = 256
		}
		e.cache = newResultCache(maxEntries, opts.CacheTTL)
	}
	return e
}

// Tract HPI rows are resolved to a CBSA via county FIPS -> CBSA code -> CBSA
// name. Ties on the extreme HPI value resolve to the earliest year inside the
// window, re-joined against the same filtered rows that produced the extreme.
const tractQuery = `
WITH hpi_per_tract AS (
	SELECT
		c.cbsa_name AS cbsa_name,
		h.fips AS fips,
		AVG(za.lat) AS latitude,
		AVG(za.lng) AS longitude,
		CAST(SUM(DISTINCT za.population) AS BIGINT) AS population,
		MIN(h.hpi) AS min_hpi,
		MAX(h.hpi) AS max_hpi
	FROM hpi_tract h
	LEFT JOIN fips_cbsa fc ON h.fips = fc.fips
	LEFT JOIN zip_attr za ON h.fips = za.county_fips
	LEFT JOIN cbsa c ON fc.cbsa_code = c.cbsa_code
	WHERE LOWER(c.cbsa_name) = LOWER(?)
	  AND h.year BETWEEN ? AND ?
	  AND h.hpi > 0
	GROUP BY c.cbsa_name, h.fips
)
SELECT
	t.cbsa_name,
	t.fips,
	t.latitude,
	t.longitude,
	t.population,
	t.min_hpi,
	t.max_hpi,
	(SELECT MIN(hm.year) FROM hpi_tract hm
	  WHERE hm.fips = t.fips AND hm.hpi = t.min_hpi
	    AND hm.year BETWEEN ? AND ? AND hm.hpi > 0) AS min_year,
	(SELECT MIN(hx.year) FROM hpi_tract hx
	  WHERE hx.fips = t.fips AND hx.hpi = t.max_hpi
	    AND hx.year BETWEEN ? AND ? AND hx.hpi > 0) AS max_year,
	(t.min_hpi / t.max_hpi - 1) AS hpi_loss
FROM hpi_per_tract t
ORDER BY t.fips
`

// ZIP HPI rows are resolved to a CBSA via the ZIP crosswalk.
const seriesQuery = `
SELECT
	h.year AS year,
	AVG(h.hpi) AS avg_hpi
FROM hpi_zip h
JOIN zip_cbsa zc ON h.zip = zc.zip
JOIN cbsa c ON zc.cbsa_code = c.cbsa_code
WHERE LOWER(c.cbsa_name) = LOWER(?)
  AND h.year BETWEEN ? AND ?
  AND h.hpi > 0
GROUP BY h.year
ORDER BY h.year
`

// CBSA names for the picker, heaviest metro areas first. The name is a
// secondary sort key so equal populations order deterministically.
const optionsQuery = `
SELECT
	c.cbsa_name AS cbsa_name,
	CAST(COALESCE(SUM(zp.population), 0) AS BIGINT) AS total_population
FROM cbsa c
JOIN zip_cbsa zc ON c.cbsa_code = zc.cbsa_code
JOIN zip_pop zp ON zc.zip = zp.zip
WHERE c.cbsa_name IS NOT NULL
GROUP BY c.cbsa_name
ORDER BY total_population DESC, cbsa_name ASC
`

// AggregateByTract computes one TractAggregate per county tract of the
// selected CBSA: window HPI extremes, the earliest years they occurred,
// population, mean coordinates, and the peak-to-trough loss ratio.
// A CBSA with no matching tracts yields an empty slice, not an error.
func (e *Engine) AggregateByTract(ctx context.Context, sel model.Selection) ([]model.TractAggregate, error) {
	sel = sel.Normalize()
	if sel.CBSAName == "" {
		return nil, eris.New("hpi: cbsa name is required")
	}

	key := cacheKey("tracts", sel)
	if v, ok := e.cache.get(key); ok {
		e.metrics.ObserveCache(true)
		out := make([]model.TractAggregate, len(v.([]model.TractAggregate)))
		copy(out, v.([]model.TractAggregate))
		return out, nil
	}
	e.metrics.ObserveCache(false)

	start := time.Now()
	t, err := e.store.Query(ctx, tractQuery,
		sel.CBSAName, sel.YearMin, sel.YearMax,
		sel.YearMin, sel.YearMax,
		sel.YearMin, sel.YearMax,
	)
	e.metrics.ObserveQuery("tracts", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, err
	}

	rows := make([]model.TractAggregate, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		agg := model.TractAggregate{}
		agg.CBSAName, _ = t.String(i, "cbsa_name")
		agg.FIPS, _ = t.String(i, "fips")
		agg.Latitude, _ = t.Float(i, "latitude")
		agg.Longitude, _ = t.Float(i, "longitude")
		agg.Population, _ = t.Int(i, "population")
		agg.MinHPI, _ = t.Float(i, "min_hpi")
		agg.MaxHPI, _ = t.Float(i, "max_hpi")
		if y, ok := t.Int(i, "min_year"); ok {
			agg.MinYear = int(y)
		}
		if y, ok := t.Int(i, "max_year"); ok {
			agg.MaxYear = int(y)
		}
		agg.HPILoss, _ = t.Float(i, "hpi_loss")
		rows = append(rows, agg)
	}

	e.cache.put(key, rows)
	out := make([]model.TractAggregate, len(rows))
	copy(out, rows)
	return out, nil
}

// AggregateByYear computes the CBSA-level average HPI per year over the
// selected window, ascending by year. ZIPs with non-positive or unparseable
// HPI cells never participate.
func (e *Engine) AggregateByYear(ctx context.Context, sel model.Selection) ([]model.YearPoint, error) {
	sel = sel.Normalize()
	if sel.CBSAName == "" {
		return nil, eris.New("hpi: cbsa name is required")
	}

	key := cacheKey("series", sel)
	if v, ok := e.cache.get(key); ok {
		e.metrics.ObserveCache(true)
		out := make([]model.YearPoint, len(v.([]model.YearPoint)))
		copy(out, v.([]model.YearPoint))
		return out, nil
	}
	e.metrics.ObserveCache(false)

	start := time.Now()
	t, err := e.store.Query(ctx, seriesQuery, sel.CBSAName, sel.YearMin, sel.YearMax)
	e.metrics.ObserveQuery("series", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, err
	}

	points := make([]model.YearPoint, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		var p model.YearPoint
		if y, ok := t.Int(i, "year"); ok {
			p.Year = int(y)
		}
		p.AvgHPI, _ = t.Float(i, "avg_hpi")
		points = append(points, p)
	}

	e.cache.put(key, points)
	out := make([]model.YearPoint, len(points))
	copy(out, points)
	return out, nil
}

// CBSAOptions lists the metro areas available to the picker, ordered by
// descending total ZIP population.
func (e *Engine) CBSAOptions(ctx context.Context) ([]model.CBSAOption, error) {
	start := time.Now()
	t, err := e.store.Query(ctx, optionsQuery)
	e.metrics.ObserveQuery("cbsas", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, err
	}

	opts := make([]model.CBSAOption, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		var o model.CBSAOption
		o.Name, _ = t.String(i, "cbsa_name")
		o.Population, _ = t.Int(i, "total_population")
		opts = append(opts, o)
	}
	return opts, nil
}
