package brreg

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/nordreg/domainscout/internal/config"
	"github.com/nordreg/domainscout/internal/core"
	"github.com/nordreg/domainscout/internal/metrics"
	"github.com/nordreg/domainscout/internal/ratelimit"
)

// Client fetches entities from the Enhetsregisteret search API. Page
// size is capped at 20 by the API; page fetches pass through the
// shared rate gate like every other outbound request.
type Client struct {
	baseURL   string
	pageSize  int
	userAgent string
	http      *http.Client
	gate      *ratelimit.Gate
	metrics   *metrics.Collector
	logger    *zap.Logger
}

func NewClient(cfg config.RegistryConfig, gate *ratelimit.Gate, collector *metrics.Collector, logger *zap.Logger) *Client {
	pageSize := cfg.PageSize
	if pageSize <= 0 || pageSize > 20 {
		pageSize = 20
	}
	return &Client{
		baseURL:   cfg.BaseURL,
		pageSize:  pageSize,
		userAgent: cfg.UserAgent,
		http:      &http.Client{Timeout: 15 * time.Second},
		gate:      gate,
		metrics:   collector,
		logger:    logger,
	}
}

type searchResponse struct {
	Embedded struct {
		Enheter []entity `json:"enheter"`
	} `json:"_embedded"`
	Page struct {
		TotalPages int `json:"totalPages"`
	} `json:"page"`
}

type entity struct {
	OrgNumber string `json:"organisasjonsnummer"`
	Name      string `json:"navn"`
	Employees *int   `json:"antallAnsatte"`
	Deleted   string `json:"slettedato"`
	Founded   string `json:"stiftelsesdato"`
	NACE      *struct {
		Code string `json:"kode"`
	} `json:"naeringskode1"`
	Address *struct {
		Municipality string `json:"kommune"`
	} `json:"forretningsadresse"`
}

func (e entity) toRecord() core.BusinessRecord {
	rec := core.BusinessRecord{
		OrgNumber: e.OrgNumber,
		Name:      e.Name,
		Employees: e.Employees,
		Founded:   e.Founded,
	}
	if e.NACE != nil {
		rec.NACECode = e.NACE.Code
	}
	if e.Address != nil {
		rec.Municipality = e.Address.Municipality
	}
	return rec
}

// Stream lazily pages through active businesses with at least
// minEmployees employees, sending up to max records. The error channel
// carries at most one error: failure on the very first page, the only
// fault that makes the whole run unprocessable. Later page failures
// end the stream early with a warning, keeping what was already
// fetched.
func (c *Client) Stream(ctx context.Context, minEmployees, max int) (<-chan core.BusinessRecord, <-chan error) {
	records := make(chan core.BusinessRecord)
	errc := make(chan error, 1)

	go func() {
		defer close(records)
		defer close(errc)

		sent := 0
		for page := 0; ; page++ {
			if err := c.gate.Wait(ctx); err != nil {
				return
			}

			resp, err := c.fetchPage(ctx, page)
			if err != nil {
				if page == 0 {
					errc <- fmt.Errorf("failed to fetch registry page 0: %w", err)
				} else {
					c.logger.Warn("registry page fetch failed, ending stream",
						zap.Int("page", page),
						zap.Error(err),
					)
				}
				return
			}

			if len(resp.Embedded.Enheter) == 0 {
				return
			}

			for _, e := range resp.Embedded.Enheter {
				if e.Deleted != "" {
					continue
				}
				if e.Employees == nil || *e.Employees < minEmployees {
					continue
				}
				select {
				case records <- e.toRecord():
				case <-ctx.Done():
					return
				}
				sent++
				if max > 0 && sent >= max {
					return
				}
			}

			if page >= resp.Page.TotalPages-1 {
				return
			}
		}
	}()

	return records, errc
}

func (c *Client) fetchPage(ctx context.Context, page int) (*searchResponse, error) {
	endpoint := fmt.Sprintf("%s/enheter", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(c.pageSize))
	req.URL.RawQuery = query.Encode()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registry returned status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode registry response: %w", err)
	}

	c.metrics.RecordRegistryPage()
	c.logger.Debug("fetched registry page",
		zap.Int("page", page),
		zap.Int("entities", len(parsed.Embedded.Enheter)),
	)

	return &parsed, nil
}
