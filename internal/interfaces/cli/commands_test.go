package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/casefolio/pkg/client"
)

// fakeAPI serves canned responses for the casefolio HTTP API and records
// request bodies by path.
type fakeAPI struct {
	*httptest.Server
	mu     sync.Mutex
	bodies map[string]string
	polls  int32
}

var testSummary = client.Summary{
	TotalCents: 460, NetCents: 391, Total: "$4.60", Net: "$3.91", TaxRate: "15%",
	UniqueItems: 2, TotalQuantity: 3, LastPriceUpdateText: "2026-10-01 12:00:00",
	Entries: []client.SummaryEntry{
		{Name: "Clutch Case", DisplayName: "Clutch Case", Type: "case", Quantity: 2, UnitCents: 150, LineCents: 300, UnitPrice: "$1.50", LineValue: "$3.00"},
		{Name: "Paris 2023 Legends Sticker Capsule", DisplayName: "Paris 2023 Legends", Type: "capsule", Quantity: 1, UnitCents: 160, LineCents: 160, UnitPrice: "$1.60", LineValue: "$1.60"},
	},
}

func newFakeAPI(t *testing.T) *fakeAPI {
	f := &fakeAPI{bodies: make(map[string]string)}
	mux := http.NewServeMux()

	mux.HandleFunc("/api/prices", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			f.record(r)
			_, _ = w.Write([]byte(`{"results":[{"name":"Clutch Case","success":true,"lowest_price":"$1.40","median_price":"$1.50","volume":"900"},{"name":"Nope","success":false}]}`))
			return
		}
		if r.URL.Query().Get("item") == "Missing Case" {
			_, _ = w.Write([]byte(`{"success":false}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"lowest_price":"$1.40","median_price":"$1.50","volume":"900"}`))
	})
	mux.HandleFunc("/api/portfolio", func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, http.StatusOK, testSummary)
	})
	mux.HandleFunc("/api/portfolio/items", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		writeTestJSON(w, http.StatusCreated, testSummary)
	})
	mux.HandleFunc("/api/portfolio/items/", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		writeTestJSON(w, http.StatusOK, testSummary)
	})
	mux.HandleFunc("/api/refresh", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			f.record(r)
			writeTestJSON(w, http.StatusAccepted, client.RefreshStatus{Running: true, RunID: "run-1", Total: 2})
		case http.MethodDelete:
			writeTestJSON(w, http.StatusConflict, map[string]string{"code": "REFRESH_002", "message": "no refresh in progress"})
		default:
			n := atomic.AddInt32(&f.polls, 1)
			if n < 3 {
				writeTestJSON(w, http.StatusOK, client.RefreshStatus{Running: true, RunID: "run-1", Total: 2, Done: int(n), Progress: int(n) * 50, Current: "Clutch Case"})
				return
			}
			now := time.Now()
			writeTestJSON(w, http.StatusOK, client.RefreshStatus{LastResult: &client.RefreshResult{
				RunID: "run-1", StartedAt: now.Add(-3 * time.Second), FinishedAt: now,
				Total: 2, Done: 2, Failed: 1, Prices: map[string]int64{"Clutch Case": 150},
			}})
		}
	})
	mux.HandleFunc("/api/catalog", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.bodies["/api/catalog"] = r.URL.RawQuery
		f.mu.Unlock()
		writeTestJSON(w, http.StatusOK, map[string]interface{}{
			"items": []client.CatalogItem{{Name: "Clutch Case", DisplayName: "Clutch Case", Type: "case", PriceCents: 150, Price: "$1.50", Quantity: 2}},
			"total": 1,
		})
	})
	mux.HandleFunc("/api/catalog/nameid", func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, http.StatusOK, map[string]interface{}{"name": r.URL.Query().Get("item"), "name_id": 176288467})
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func (f *fakeAPI) record(r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.bodies[r.Method+" "+r.URL.EscapedPath()] = string(body)
	f.mu.Unlock()
}

func (f *fakeAPI) body(key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[key]
}

func writeTestJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func runCLI(t *testing.T, api *fakeAPI, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--server", api.URL, "--no-color", "--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestPricesGet(t *testing.T) {
	api := newFakeAPI(t)

	out, err := runCLI(t, api, "prices", "get", "Clutch", "Case")
	require.NoError(t, err)
	assert.Equal(t, "Clutch Case: median $1.50, lowest $1.40, volume 900\n", out)

	out, err = runCLI(t, api, "-o", "json", "prices", "get", "Clutch Case")
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"lowest_price":"$1.40","median_price":"$1.50","volume":"900"}`, out)

	_, err = runCLI(t, api, "prices", "get", "Missing Case")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no market data")
}

func TestPricesBatch(t *testing.T) {
	api := newFakeAPI(t)

	out, err := runCLI(t, api, "-o", "table", "prices", "batch", "Clutch Case", "Nope")
	require.NoError(t, err)
	assert.Contains(t, out, "$1.50")
	assert.Contains(t, out, "unavailable")
	assert.JSONEq(t, `{"items":["Clutch Case","Nope"]}`, api.body("POST /api/prices"))
}

func TestPortfolioShow(t *testing.T) {
	api := newFakeAPI(t)

	out, err := runCLI(t, api, "portfolio", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Total value:   $4.60")
	assert.Contains(t, out, "After fee:     $3.91 (fee 15%)")
	assert.Contains(t, out, "2 unique, 3 total")

	out, err = runCLI(t, api, "-o", "table", "portfolio", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Paris 2023 Legends")
	assert.Contains(t, out, "$3.00")
}

func TestPortfolioAdd(t *testing.T) {
	api := newFakeAPI(t)

	out, err := runCLI(t, api, "portfolio", "add", "Clutch Case", "-q", "2", "--price", "$1.50")
	require.NoError(t, err)
	assert.Contains(t, out, "OK: added Clutch Case, portfolio worth $4.60")
	assert.JSONEq(t, `{"name":"Clutch Case","quantity":2,"price":150}`, api.body("POST /api/portfolio/items"))

	_, err = runCLI(t, api, "portfolio", "add", "Clutch Case")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Clutch Case","quantity":1}`, api.body("POST /api/portfolio/items"))

	_, err = runCLI(t, api, "portfolio", "add", "Clutch Case", "--price", "-3")
	assert.Error(t, err)
}

func TestPortfolioSetAndRemove(t *testing.T) {
	api := newFakeAPI(t)

	out, err := runCLI(t, api, "portfolio", "set", "Clutch", "Case", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "Clutch Case quantity set")
	assert.JSONEq(t, `{"quantity":7}`, api.body("PUT /api/portfolio/items/Clutch%20Case"))

	_, err = runCLI(t, api, "portfolio", "set", "Clutch Case", "many")
	assert.Error(t, err)

	out, err = runCLI(t, api, "portfolio", "rm", "Clutch Case")
	require.NoError(t, err)
	assert.Contains(t, out, "removed Clutch Case")
}

func TestPortfolioReport_Raw(t *testing.T) {
	api := newFakeAPI(t)

	out, err := runCLI(t, api, "portfolio", "report", "--raw")
	require.NoError(t, err)
	assert.Contains(t, out, "# Portfolio report")
	assert.Contains(t, out, "## Cases")
	assert.Contains(t, out, "## Capsules")
	assert.Contains(t, out, "| Clutch Case | 2 | $1.50 | $3.00 | 65.2% |")
}

func TestPortfolioReport_Rendered(t *testing.T) {
	api := newFakeAPI(t)

	out, err := runCLI(t, api, "portfolio", "report")
	require.NoError(t, err)
	assert.Contains(t, out, "Portfolio report")
	assert.Contains(t, out, "Clutch Case")
}

func TestRefreshStartWait(t *testing.T) {
	api := newFakeAPI(t)

	out, err := runCLI(t, api, "refresh", "start", "--type", "case", "--wait", "--poll", "1ms")
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"case"}`, api.body("POST /api/refresh"))
	assert.Contains(t, out, "Refresh run-1 started for 2 items")
	assert.Contains(t, out, " 50%  1/2  Clutch Case")
	assert.Contains(t, out, "Last refresh run-1 completed")
	assert.Contains(t, out, "2/2 fetched, 1 priced, 1 failed")
}

func TestRefreshStart_NamedItems(t *testing.T) {
	api := newFakeAPI(t)

	out, err := runCLI(t, api, "refresh", "start", "Clutch Case", "Fever Case")
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":["Clutch Case","Fever Case"]}`, api.body("POST /api/refresh"))
	assert.Contains(t, out, "Refresh run-1 running: 0/2")
}

func TestRefreshCancel_Idle(t *testing.T) {
	api := newFakeAPI(t)

	out, err := runCLI(t, api, "refresh", "cancel")
	require.NoError(t, err)
	assert.Contains(t, out, "no refresh in progress")
}

func TestCatalogList(t *testing.T) {
	api := newFakeAPI(t)

	out, err := runCLI(t, api, "catalog", "list", "--type", "case", "-q", "clutch")
	require.NoError(t, err)
	assert.Equal(t, "q=clutch&type=case", api.body("/api/catalog"))
	assert.Contains(t, out, "Clutch Case")
	assert.Contains(t, out, "(held: 2)")
	assert.True(t, strings.HasSuffix(out, "1 items\n"))
}

func TestCatalogNameID(t *testing.T) {
	api := newFakeAPI(t)

	out, err := runCLI(t, api, "catalog", "nameid", "Clutch", "Case")
	require.NoError(t, err)
	assert.Equal(t, "Clutch Case: 176288467\n", out)

	out, err = runCLI(t, api, "-o", "json", "catalog", "nameid", "Clutch Case")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Clutch Case","name_id":176288467}`, out)
}

func TestParsePriceFlag(t *testing.T) {
	cases := map[string]int64{"1.5": 150, "$2.05": 205, " 0.994 ": 99, "3": 300}
	for in, want := range cases {
		got, err := parsePriceFlag(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"", "abc", "-1", "1,50", "99999999999999999999.99"} {
		_, err := parsePriceFlag(in)
		assert.Error(t, err, in)
	}
}

func TestBuildReportMarkdown_Empty(t *testing.T) {
	md := buildReportMarkdown(&client.Summary{Total: "$0.00", Net: "$0.00", TaxRate: "15%", LastPriceUpdateText: "Never"}, time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC))
	assert.Contains(t, md, "_Generated 2026-01-02 03:04. Prices last updated: Never._")
	assert.Contains(t, md, "No items held.")
	assert.NotContains(t, md, "## Cases")
}

//Personal.AI order the ending
