package core

// BusinessRecord is one registered entity from the Enhetsregisteret,
// as fetched. Records are immutable after fetch; discovery never
// mutates them.
type BusinessRecord struct {
	OrgNumber    string `json:"organisasjonsnummer"`
	Name         string `json:"navn"`
	Employees    *int   `json:"antall_ansatte,omitempty"`
	NACECode     string `json:"nace_code"`
	Municipality string `json:"municipality"`
	Founded      string `json:"founded"`
}

// EnrichedCompany is the finalized per-business output row: registry
// fields plus the confirmed domain set and the revenue estimate.
type EnrichedCompany struct {
	OrgNumber        string   `json:"organization_number"`
	Name             string   `json:"business_name"`
	Domains          []string `json:"unique_domains"`
	DomainCount      int      `json:"domain_count"`
	EstimatedRevenue *int64   `json:"estimated_revenue"`
	Employees        *int     `json:"employees"`
	Industry         string   `json:"industry"`
	SizeCategory     string   `json:"size_category"`
	Municipality     string   `json:"municipality"`
	Founded          string   `json:"founded"`
	NACECode         string   `json:"nace_code"`
	Error            string   `json:"error,omitempty"`
}
