package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/iwvelando/rental-quote/internal/observability"
	"github.com/iwvelando/rental-quote/internal/store"
	"github.com/iwvelando/rental-quote/internal/tariff"
	"github.com/iwvelando/rental-quote/pkg/constants"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func newTestHandler(t *testing.T, mutate func(*Options)) http.Handler {
	t.Helper()
	kv := store.NewMemoryKV()
	reg, metrics := observability.NewRegistry()
	opts := Options{
		Catalog:     tariff.DefaultCatalog(),
		Overrides:   store.NewOverrideStore(kv, nil),
		Preferences: store.NewPreferences(kv, constants.ThemeLight, nil),
		Metrics:     metrics,
		Registry:    reg,
		Logger:      zap.NewNop(),
		Version:     "1.2.3",
	}
	if mutate != nil {
		mutate(&opts)
	}
	return NewHandler(opts)
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
}

func TestHealthAndVersion(t *testing.T) {
	h := newTestHandler(t, nil)

	if rr := doRequest(t, h, http.MethodGet, "/healthz", ""); rr.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rr.Code)
	}

	rr := doRequest(t, h, http.MethodGet, "/api/version", "")
	var resp map[string]string
	decodeBody(t, rr, &resp)
	if resp["version"] != "1.2.3" {
		t.Errorf("version = %q", resp["version"])
	}
}

func TestHandleQuoteSummerScenario(t *testing.T) {
	h := newTestHandler(t, nil)

	rr := doRequest(t, h, http.MethodPost, "/api/quote", `{"season":"summer","guests":4,"nights":10}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp quoteResponse
	decodeBody(t, rr, &resp)
	q := resp.Quote
	if q.TotalOriginal != 15000000 || q.Deposit != 3000000 || q.SecondPayment != 4500000 || q.Balance != 7500000 {
		t.Errorf("unexpected quote %+v", q)
	}
	if resp.SuggestedPriceCents != 1500000 {
		t.Errorf("suggested price = %d", resp.SuggestedPriceCents)
	}
	if !strings.HasPrefix(resp.Summary, "\U0001F3D6\uFE0F Su Presupuesto") {
		t.Errorf("unexpected summary %q", resp.Summary)
	}
	if len(resp.Lines) != 4 {
		t.Errorf("expected 4 display lines, got %d", len(resp.Lines))
	}
	if resp.SuggestedDiscount != nil {
		t.Errorf("expected no suggested discount, got %d", *resp.SuggestedDiscount)
	}
}

func TestHandleQuoteAutumnDiscount(t *testing.T) {
	h := newTestHandler(t, nil)

	tests := []struct {
		name     string
		body     string
		discount int
		total    int64
	}{
		{"Suggested long-stay discount", `{"season":"autumn","guests":2,"nights":7}`, 15, 4760000},
		{"Explicit no discount", `{"season":"autumn","guests":2,"nights":7,"discountPercent":0}`, 0, 5600000},
		{"Explicit discount and price", `{"season":"autumn","guests":2,"nights":7,"discountPercent":10,"price":"10.000","plan":"2"}`, 10, 6300000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, h, http.MethodPost, "/api/quote", tt.body)
			if rr.Code != http.StatusOK {
				t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
			}
			var resp quoteResponse
			decodeBody(t, rr, &resp)
			if resp.Quote.DiscountPercent != tt.discount || int64(resp.Quote.TotalWithDiscount) != tt.total {
				t.Errorf("discount %d total %d, expected %d / %d",
					resp.Quote.DiscountPercent, resp.Quote.TotalWithDiscount, tt.discount, tt.total)
			}
		})
	}
}

func TestHandleQuoteErrors(t *testing.T) {
	h := newTestHandler(t, func(o *Options) { o.MaxBodySize = 64 })

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"Declined without guests", `{"season":"summer","guests":0,"nights":3}`, http.StatusUnprocessableEntity},
		{"Declined with unparsable price", `{"guests":2,"nights":3,"price":"abc"}`, http.StatusUnprocessableEntity},
		{"Declined when the total overflows", `{"guests":2,"nights":100000,"price":"1.000.000.000.000"}`, http.StatusUnprocessableEntity},
		{"Declined with out of range price", `{"guests":2,"nights":1,"price":"99999999999999999999"}`, http.StatusUnprocessableEntity},
		{"Unknown season", `{"season":"winter","guests":2,"nights":3}`, http.StatusBadRequest},
		{"Unknown plan", `{"guests":2,"nights":3,"plan":"5"}`, http.StatusBadRequest},
		{"Full discount", `{"guests":2,"nights":3,"discountPercent":100}`, http.StatusBadRequest},
		{"Unknown field", `{"guests":2,"nights":3,"pets":1}`, http.StatusBadRequest},
		{"Malformed JSON", `{"guests":`, http.StatusBadRequest},
		{"Too large", `{"season":"summer","guests":2,"nights":3,"price":"` + strings.Repeat("9", 80) + `"}`, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, h, http.MethodPost, "/api/quote", tt.body)
			if rr.Code != tt.status {
				t.Fatalf("status = %d, expected %d: %s", rr.Code, tt.status, rr.Body.String())
			}
			var resp map[string]string
			decodeBody(t, rr, &resp)
			if resp["error"] == "" {
				t.Error("expected error message")
			}
		})
	}
}

func TestTariffsAndOverrides(t *testing.T) {
	h := newTestHandler(t, nil)

	if rr := doRequest(t, h, http.MethodGet, "/api/tariffs/winter", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("unknown season status = %d", rr.Code)
	}

	rr := doRequest(t, h, http.MethodPut, "/api/overrides",
		`{"summer":{"peopleBands":[{"people":4,"pricePerNight":17000}],"longStayDiscounts":null},"autumn":null}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("PUT overrides status %d: %s", rr.Code, rr.Body.String())
	}
	var saved map[string]json.RawMessage
	decodeBody(t, rr, &saved)
	if string(saved["message"]) != `"`+constants.MsgSaved+`"` {
		t.Errorf("message = %s", saved["message"])
	}

	rr = doRequest(t, h, http.MethodGet, "/api/tariffs/summer", "")
	var resp tariffResponse
	decodeBody(t, rr, &resp)
	if resp.Override == nil || len(resp.Effective.PeopleBands) != 1 || resp.Effective.PeopleBands[0].PricePerNight != 17000 {
		t.Errorf("override not applied: %+v", resp)
	}
	if diff := cmp.Diff(tariff.DefaultCatalog().Builtin(constants.SeasonSummer).LongStayDiscounts, resp.Effective.LongStayDiscounts); diff != "" {
		t.Errorf("built-in discounts should be kept (-want +got):\n%s", diff)
	}

	rr = doRequest(t, h, http.MethodPost, "/api/quote", `{"guests":4,"nights":1}`)
	var quoted quoteResponse
	decodeBody(t, rr, &quoted)
	if quoted.Quote.PricePerNightCents != 1700000 {
		t.Errorf("quote ignored override, price %d", quoted.Quote.PricePerNightCents)
	}

	rr = doRequest(t, h, http.MethodDelete, "/api/overrides/summer", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("DELETE status %d", rr.Code)
	}
	rr = doRequest(t, h, http.MethodGet, "/api/overrides", "")
	var overrides tariff.Overrides
	decodeBody(t, rr, &overrides)
	if overrides.Summer != nil {
		t.Errorf("summer override not removed: %+v", overrides.Summer)
	}
}

func TestPutOverridesRejectsInvalidBands(t *testing.T) {
	h := newTestHandler(t, nil)
	rr := doRequest(t, h, http.MethodPut, "/api/overrides", `{"summer":{"peopleBands":[{"people":0,"pricePerNight":1}]}}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, expected 400", rr.Code)
	}
}

type failingOverrides struct{}

func (failingOverrides) Load(context.Context) (tariff.Overrides, error) { return tariff.Overrides{}, nil }
func (failingOverrides) Save(context.Context, tariff.Overrides) error {
	return errors.New("disk full")
}

func TestPutOverridesSaveFailure(t *testing.T) {
	h := newTestHandler(t, func(o *Options) { o.Overrides = failingOverrides{} })

	rr := doRequest(t, h, http.MethodPut, "/api/overrides", `{"autumn":{"longStayDiscounts":[]}}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, expected 500", rr.Code)
	}
	var resp map[string]string
	decodeBody(t, rr, &resp)
	if resp["error"] != constants.MsgSaveFailed {
		t.Errorf("error = %q, expected %q", resp["error"], constants.MsgSaveFailed)
	}
}

func TestTariffExport(t *testing.T) {
	h := newTestHandler(t, nil)

	rr := doRequest(t, h, http.MethodGet, "/api/tariffs/autumn/export", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/yaml" {
		t.Errorf("content type = %q", ct)
	}

	var table tariff.Table
	if err := yaml.Unmarshal(rr.Body.Bytes(), &table); err != nil {
		t.Fatalf("export is not YAML: %v", err)
	}
	if diff := cmp.Diff(tariff.DefaultCatalog().Builtin(constants.SeasonAutumn), table); diff != "" {
		t.Errorf("exported table mismatch (-want +got):\n%s", diff)
	}
}

func TestPreferences(t *testing.T) {
	h := newTestHandler(t, nil)

	rr := doRequest(t, h, http.MethodGet, "/api/preferences", "")
	var prefs preferencesPayload
	decodeBody(t, rr, &prefs)
	if prefs.Theme != constants.ThemeLight || prefs.InstallPromptDismissed == nil || *prefs.InstallPromptDismissed {
		t.Fatalf("unexpected defaults %+v", prefs)
	}

	rr = doRequest(t, h, http.MethodPut, "/api/preferences", `{"theme":"dark","installPromptDismissed":true}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("PUT status %d: %s", rr.Code, rr.Body.String())
	}
	decodeBody(t, rr, &prefs)
	if prefs.Theme != constants.ThemeDark || !*prefs.InstallPromptDismissed {
		t.Errorf("preferences not saved: %+v", prefs)
	}

	if rr := doRequest(t, h, http.MethodPut, "/api/preferences", `{"theme":"sepia"}`); rr.Code != http.StatusBadRequest {
		t.Errorf("invalid theme status = %d", rr.Code)
	}
}

func TestRedisBackedOverrides(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := store.DialRedis(context.Background(), store.RedisOptions{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("DialRedis() error = %v", err)
	}
	kv := store.NewRedisKV(client, "test:")
	t.Cleanup(func() { _ = kv.Close() })

	h := newTestHandler(t, func(o *Options) { o.Overrides = store.NewOverrideStore(kv, nil) })
	rr := doRequest(t, h, http.MethodPut, "/api/overrides", `{"autumn":{"longStayDiscounts":[]}}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("PUT status %d: %s", rr.Code, rr.Body.String())
	}

	raw, err := mr.Get("test:" + constants.KeyTariffOverrides)
	if err != nil {
		t.Fatalf("override not stored in redis: %v", err)
	}
	if raw != `{"summer":null,"autumn":{"longStayDiscounts":[]}}` {
		t.Errorf("stored overrides = %s", raw)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestHandler(t, nil)
	doRequest(t, h, http.MethodGet, "/api/version", "")

	rr := doRequest(t, h, http.MethodGet, "/metrics", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `rental_quote_http_requests_total{method="GET",route="/api/version",status="200"} 1`) {
		t.Errorf("missing request counter in:\n%s", rr.Body.String())
	}
}

func TestMetricsGroupUnmatchedPaths(t *testing.T) {
	h := newTestHandler(t, nil)
	for _, path := range []string{"/wp-login.php", "/random/a", "/random/b"} {
		if rr := doRequest(t, h, http.MethodGet, path, ""); rr.Code != http.StatusNotFound {
			t.Fatalf("GET %s status = %d, expected 404", path, rr.Code)
		}
	}

	body := doRequest(t, h, http.MethodGet, "/metrics", "").Body.String()
	if !strings.Contains(body, `rental_quote_http_requests_total{method="GET",route="unmatched",status="404"} 3`) {
		t.Errorf("expected unmatched paths under one series in:\n%s", body)
	}
	if strings.Contains(body, "/random/a") || strings.Contains(body, "wp-login") {
		t.Errorf("raw request paths leaked into metric labels:\n%s", body)
	}
}

func TestRateLimit(t *testing.T) {
	h := newTestHandler(t, func(o *Options) {
		o.RateLimit = RateLimitConfig{RequestsPerSecond: 0.001, Burst: 1}
	})

	if rr := doRequest(t, h, http.MethodGet, "/api/version", ""); rr.Code != http.StatusOK {
		t.Fatalf("first request status %d", rr.Code)
	}
	if rr := doRequest(t, h, http.MethodGet, "/api/version", ""); rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status %d, expected 429", rr.Code)
	}
	if rr := doRequest(t, h, http.MethodGet, "/healthz", ""); rr.Code != http.StatusOK {
		t.Fatalf("health checks should not be limited, got %d", rr.Code)
	}
}

func TestRecovererReturnsReload(t *testing.T) {
	h := recoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("render fault")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", bytes.NewReader(nil)))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, expected 500", rr.Code)
	}
	var resp map[string]string
	decodeBody(t, rr, &resp)
	if resp["recovery"] != "reload" {
		t.Errorf("recovery = %q, expected reload", resp["recovery"])
	}
}
