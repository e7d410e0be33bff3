package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/gfc-explorer/internal/hpi"
	"github.com/sells-group/gfc-explorer/internal/refdata"
)

const vegas = "Las Vegas-Henderson-Paradise, NV"

func seedStore(t *testing.T) refdata.Store {
	t.Helper()
	st, err := refdata.NewSQLite("")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	require.NoError(t, st.Migrate(ctx))

	insert := func(table string, columns []string, rows [][]any) {
		t.Helper()
		_, err := st.InsertRows(ctx, table, columns, rows)
		require.NoError(t, err)
	}

	insert("cbsa", []string{"cbsa_code", "cbsa_name"}, [][]any{{"29820", vegas}})
	insert("fips_cbsa", []string{"state_fips", "county_fips", "cbsa_code", "fips"}, [][]any{
		{"32", "003", "29820", "32003"},
	})
	insert("zip_attr", []string{"zip", "county_fips", "lat", "lng", "population"}, [][]any{
		{"89109", "32003", 36.1, -115.2, int64(24000)},
	})
	insert("hpi_tract", []string{"tract", "fips", "year", "hpi"}, [][]any{
		{"32003001700", "32003", int64(2006), 120.0},
		{"32003001700", "32003", int64(2011), 80.0},
	})
	insert("hpi_zip", []string{"zip", "year", "hpi"}, [][]any{
		{"89109", int64(2006), 130.0},
		{"89109", int64(2011), 90.0},
	})
	insert("zip_cbsa", []string{"zip", "cbsa_code"}, [][]any{{"89109", "29820"}})
	insert("zip_pop", []string{"zip", "population"}, [][]any{{"89109", int64(24000)}})

	return st
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	engine := hpi.New(seedStore(t), hpi.Options{})
	ts := httptest.NewServer(New(engine, nil, Options{}).Router())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, ts *httptest.Server, path string) (int, envelope) {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestCBSAs(t *testing.T) {
	ts := newTestServer(t)
	status, env := getJSON(t, ts, "/api/cbsas")
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, env.Diagnostic)

	opts, ok := env.Data.([]any)
	require.True(t, ok)
	require.Len(t, opts, 1)
	first := opts[0].(map[string]any)
	assert.Equal(t, vegas, first["name"])
	assert.Equal(t, float64(24000), first["population"])
}

func TestTracts(t *testing.T) {
	ts := newTestServer(t)
	status, env := getJSON(t, ts, "/api/tracts?cbsa="+escape(vegas))
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, env.Diagnostic)

	rows := env.Data.([]any)
	require.Len(t, rows, 1)
	row := rows[0].(map[string]any)
	assert.Equal(t, "32003", row["fips"])
	assert.Equal(t, float64(120), row["max_hpi"])
	assert.Equal(t, float64(80), row["min_hpi"])
}

func TestTractsNoSelection(t *testing.T) {
	ts := newTestServer(t)
	status, env := getJSON(t, ts, "/api/tracts")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Diagnostic, "no CBSA selected")
}

func TestTractsCustomWindow(t *testing.T) {
	ts := newTestServer(t)
	status, env := getJSON(t, ts, "/api/tracts?cbsa="+escape(vegas)+"&from=2010&to=2012")
	assert.Equal(t, http.StatusOK, status)

	rows := env.Data.([]any)
	require.Len(t, rows, 1)
	row := rows[0].(map[string]any)
	// 2006 falls out of the narrowed window.
	assert.Equal(t, float64(80), row["max_hpi"])
}

func TestSeriesCarriesSummary(t *testing.T) {
	ts := newTestServer(t)
	status, env := getJSON(t, ts, "/api/series?cbsa="+escape(vegas))
	assert.Equal(t, http.StatusOK, status)

	points := env.Data.([]any)
	require.Len(t, points, 2)

	summary := env.Summary.(map[string]any)
	assert.Equal(t, float64(2006), summary["peak_year"])
	assert.Equal(t, float64(2011), summary["trough_year"])
	assert.InDelta(t, -30.77, summary["percent_drop"].(float64), 0.01)
}

func TestSummary(t *testing.T) {
	ts := newTestServer(t)
	status, env := getJSON(t, ts, "/api/summary?cbsa="+escape(vegas))
	assert.Equal(t, http.StatusOK, status)

	data := env.Data.(map[string]any)
	assert.Equal(t, "24,000", data["population_text"])
	assert.Equal(t, float64(2011), data["min_hpi_year"])
	assert.Equal(t, float64(2006), data["max_hpi_year"])
}

func TestBoundariesWithoutDataset(t *testing.T) {
	ts := newTestServer(t)
	status, env := getJSON(t, ts, "/api/boundaries?cbsa="+escape(vegas))
	assert.Equal(t, http.StatusOK, status)

	data := env.Data.(map[string]any)
	fc := data["boundaries"].(map[string]any)
	assert.Equal(t, "FeatureCollection", fc["type"])
	// No geometry is configured, but the tract coordinates still center the map.
	center := data["center"].(map[string]any)
	assert.InDelta(t, 36.1, center["lat"].(float64), 1e-9)
}

// errStore fails every query; the API must degrade to an empty payload with
// a diagnostic, never a 5xx.
type errStore struct{}

func (errStore) Migrate(context.Context) error { return nil }
func (errStore) InsertRows(context.Context, string, []string, [][]any) (int64, error) {
	return 0, nil
}
func (errStore) Query(context.Context, string, ...any) (*refdata.Table, error) {
	return nil, eris.New("catalog error: table hpi_zip does not exist")
}
func (errStore) Close() error { return nil }

func TestQueryFailureBecomesDiagnostic(t *testing.T) {
	engine := hpi.New(errStore{}, hpi.Options{})
	ts := httptest.NewServer(New(engine, nil, Options{}).Router())
	defer ts.Close()

	status, env := getJSON(t, ts, "/api/series?cbsa="+escape(vegas))
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, env.Diagnostic, "catalog error")
	assert.Empty(t, env.Data)

	status, env = getJSON(t, ts, "/api/cbsas")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, env.Diagnostic, "catalog error")

	// The summary and boundary views degrade the same way: an explicit
	// no-data payload, never a 5xx.
	status, env = getJSON(t, ts, "/api/summary?cbsa="+escape(vegas))
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, env.Diagnostic, "catalog error")
	summary := env.Data.(map[string]any)
	assert.Equal(t, true, summary["empty"])

	status, env = getJSON(t, ts, "/api/boundaries?cbsa="+escape(vegas))
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, env.Diagnostic, "catalog error")
	fc := env.Data.(map[string]any)["boundaries"].(map[string]any)
	assert.Empty(t, fc["features"])
}

func TestSelectionRoundTrip(t *testing.T) {
	ts := newTestServer(t)
	client := ts.Client()

	body := `{"cbsa_name":"` + vegas + `","year_min":2007,"year_max":2012}`
	resp, err := client.Post(ts.URL+"/api/selection", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	// GET /api/selection echoes the stored state.
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/selection", nil)
	req.AddCookie(cookie)
	resp2, err := client.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusOK, resp2.StatusCode)

	var env envelope
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&env))
	sel := env.Data.(map[string]any)
	assert.Equal(t, vegas, sel["cbsa_name"])
	assert.Equal(t, float64(2007), sel["year_min"])

	// The stored selection also drives data endpoints with no query params.
	req, _ = http.NewRequest(http.MethodGet, ts.URL+"/api/tracts", nil)
	req.AddCookie(cookie)
	resp3, err := client.Do(req)
	require.NoError(t, err)
	defer resp3.Body.Close()
	assert.Equal(t, http.StatusOK, resp3.StatusCode)
}

func TestSelectionGetWithoutSession(t *testing.T) {
	ts := newTestServer(t)
	status, env := getJSON(t, ts, "/api/selection")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, env.Diagnostic, "no selection")
}

func TestSelectionPostRequiresName(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Post(ts.URL+"/api/selection", "application/json", strings.NewReader(`{"year_min":2007}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSelectionPostBadBody(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Post(ts.URL+"/api/selection", "application/json", strings.NewReader(`{`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func escape(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, " ", "%20"), ",", "%2C")
}
