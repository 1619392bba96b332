package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nordreg/domainscout/internal/core"
)

// Metadata heads the JSON document so a result file is self-describing.
type Metadata struct {
	RunID          string    `json:"run_id"`
	GeneratedAt    time.Time `json:"generated_at"`
	TotalCompanies int       `json:"total_companies"`
	TotalDomains   int       `json:"total_domains"`
}

// Document is the JSON output envelope.
type Document struct {
	Metadata  Metadata               `json:"metadata"`
	Companies []core.EnrichedCompany `json:"companies"`
}

// WriteJSON writes the full result set as an indented JSON document.
func WriteJSON(w io.Writer, companies []core.EnrichedCompany) error {
	doc := Document{
		Metadata: Metadata{
			RunID:          uuid.New().String(),
			GeneratedAt:    time.Now().UTC(),
			TotalCompanies: len(companies),
			TotalDomains:   totalDomains(companies),
		},
		Companies: companies,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	return nil
}

var csvHeader = []string{
	"Organization Number",
	"Business Name",
	"Unique Domains",
	"Domain Count",
	"Estimated Revenue (NOK)",
	"Employees",
	"Industry",
	"Municipality",
	"Founded",
	"NACE Code",
}

// WriteCSV writes one row per company, domains joined with "; ".
func WriteCSV(w io.Writer, companies []core.EnrichedCompany) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, c := range companies {
		row := []string{
			c.OrgNumber,
			c.Name,
			joinDomains(c.Domains),
			strconv.Itoa(c.DomainCount),
			formatInt64(c.EstimatedRevenue),
			formatInt(c.Employees),
			c.Industry,
			c.Municipality,
			c.Founded,
			c.NACECode,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func joinDomains(domains []string) string {
	return strings.Join(domains, "; ")
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatInt64(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func totalDomains(companies []core.EnrichedCompany) int {
	total := 0
	for _, c := range companies {
		total += c.DomainCount
	}
	return total
}
