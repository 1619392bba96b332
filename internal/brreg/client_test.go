package brreg

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nordreg/domainscout/internal/config"
	"github.com/nordreg/domainscout/internal/core"
	"github.com/nordreg/domainscout/internal/metrics"
	"github.com/nordreg/domainscout/internal/ratelimit"
)

func newTestClient(baseURL string) *Client {
	cfg := config.RegistryConfig{
		BaseURL:   baseURL,
		PageSize:  20,
		UserAgent: "domainscout-test/1.0",
	}
	return NewClient(cfg, ratelimit.NewGate(0, 1), metrics.NewCollector(), zap.NewNop())
}

func pageJSON(totalPages int, entities ...string) string {
	return fmt.Sprintf(`{
		"_embedded": {"enheter": [%s]},
		"page": {"totalPages": %d}
	}`, strings.Join(entities, ","), totalPages)
}

func entityJSON(orgNumber, name string, employees int) string {
	return fmt.Sprintf(`{
		"organisasjonsnummer": %q,
		"navn": %q,
		"antallAnsatte": %d,
		"stiftelsesdato": "1999-01-01",
		"naeringskode1": {"kode": "62.010"},
		"forretningsadresse": {"kommune": "OSLO"}
	}`, orgNumber, name, employees)
}

func drain(records <-chan core.BusinessRecord, errc <-chan error) ([]core.BusinessRecord, error) {
	var out []core.BusinessRecord
	for rec := range records {
		out = append(out, rec)
	}
	return out, <-errc
}

func TestStream_PaginatesAndFilters(t *testing.T) {
	var pagesServed []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		pagesServed = append(pagesServed, page)
		assert.Equal(t, "20", r.URL.Query().Get("size"))

		switch page {
		case "0":
			fmt.Fprint(w, pageJSON(2,
				entityJSON("971", "Stor Bedrift AS", 120),
				entityJSON("972", "Liten Bedrift AS", 3),
				`{"organisasjonsnummer": "973", "navn": "Slettet AS", "antallAnsatte": 50, "slettedato": "2020-01-01"}`,
			))
		case "1":
			fmt.Fprint(w, pageJSON(2, entityJSON("974", "Mellomstor AS", 25)))
		default:
			t.Fatalf("unexpected page %s", page)
		}
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	got, err := drain(client.Stream(context.Background(), 10, 0))

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "971", got[0].OrgNumber)
	assert.Equal(t, "974", got[1].OrgNumber)
	assert.Equal(t, []string{"0", "1"}, pagesServed)

	require.NotNil(t, got[0].Employees)
	assert.Equal(t, 120, *got[0].Employees)
	assert.Equal(t, "62.010", got[0].NACECode)
	assert.Equal(t, "OSLO", got[0].Municipality)
	assert.Equal(t, "1999-01-01", got[0].Founded)
}

func TestStream_StopsAtMax(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, pageJSON(100,
			entityJSON("971", "En AS", 20),
			entityJSON("972", "To AS", 20),
			entityJSON("973", "Tre AS", 20),
		))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	got, err := drain(client.Stream(context.Background(), 10, 2))

	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestStream_FirstPageFailureIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	got, err := drain(client.Stream(context.Background(), 10, 0))

	require.Error(t, err)
	assert.Empty(t, got)
}

func TestStream_LaterPageFailureKeepsFetched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "0" {
			fmt.Fprint(w, pageJSON(5, entityJSON("971", "En AS", 20)))
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	got, err := drain(client.Stream(context.Background(), 10, 0))

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "971", got[0].OrgNumber)
}

func TestStream_CancellationStopsStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, pageJSON(1000, entityJSON("971", "En AS", 20)))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	client := newTestClient(srv.URL)
	records, errc := client.Stream(ctx, 10, 0)

	<-records
	cancel()

	got, err := drain(records, errc)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(got), 2)
}
