package core

// DomainResult is the deduplicated, confidence-ordered domain set for
// one business. An empty Domains slice is a valid outcome, not an
// error. Verdicts carry the per-candidate detail for logging and
// summary accounting; they are discarded after aggregation and never
// cached across businesses.
type DomainResult struct {
	OrgNumber string
	Domains   []string
	Verdicts  []VerificationVerdict
	Err       string
}
