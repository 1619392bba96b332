package core

// GenRule tags which naming pattern produced a candidate. Kept for
// ranking and debug logging only; it never reaches the output files.
type GenRule string

const (
	RuleExactName  GenRule = "exact-name"
	RuleHyphenated GenRule = "hyphenated"
	RuleFirstWord  GenRule = "first-word"
)

// DomainCandidate is a generated, not-yet-verified host string.
// Rank is the generation order; lower ranks are considered more likely
// to be the genuine domain and win ties during final selection.
type DomainCandidate struct {
	Host string
	Rule GenRule
	Rank int
}
