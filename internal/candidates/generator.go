package candidates

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/nordreg/domainscout/internal/config"
	"github.com/nordreg/domainscout/internal/core"
)

// Generator derives an ordered, capped list of host candidates from a
// legal business name. It is pure and deterministic; the suffix list,
// transliteration table and TLD order come from configuration.
type Generator struct {
	tlds          []string
	suffixes      map[string]struct{}
	replacer      *strings.Replacer
	maxCandidates int
	minSlug       int
}

func New(cfg config.GeneratorConfig) *Generator {
	suffixes := make(map[string]struct{}, len(cfg.LegalSuffixes))
	for _, s := range cfg.LegalSuffixes {
		suffixes[strings.ToLower(s)] = struct{}{}
	}

	pairs := make([]string, 0, len(cfg.Transliterations)*2)
	for from, to := range cfg.Transliterations {
		pairs = append(pairs, from, to)
	}

	maxCandidates := cfg.MaxCandidates
	if maxCandidates <= 0 {
		maxCandidates = 20
	}
	minSlug := cfg.MinSlugLength
	if minSlug < 1 {
		minSlug = 1
	}

	return &Generator{
		tlds:          cfg.TLDs,
		suffixes:      suffixes,
		replacer:      strings.NewReplacer(pairs...),
		maxCandidates: maxCandidates,
		minSlug:       minSlug,
	}
}

// Generate returns candidates ordered by descending likelihood: the
// concatenated-name slug first, then the hyphenated and first-word
// variants, each crossed with the TLD list. Duplicates are dropped on
// first-seen order and the total is capped. An empty result is valid
// and means the name normalized away to nothing.
func (g *Generator) Generate(name string) []core.DomainCandidate {
	words := g.normalize(name)
	if len(words) == 0 {
		return nil
	}

	type slug struct {
		value string
		rule  core.GenRule
	}
	slugs := []slug{{strings.Join(words, ""), core.RuleExactName}}
	if len(words) > 1 {
		slugs = append(slugs,
			slug{strings.Join(words, "-"), core.RuleHyphenated},
			slug{words[0], core.RuleFirstWord},
		)
	}

	seen := make(map[string]struct{})
	var out []core.DomainCandidate
	for _, sl := range slugs {
		if !g.validSlug(sl.value) {
			continue
		}
		for _, tld := range g.tlds {
			host := sl.value + tld
			if _, dup := seen[host]; dup {
				continue
			}
			seen[host] = struct{}{}
			out = append(out, core.DomainCandidate{Host: host, Rule: sl.rule, Rank: len(out)})
			if len(out) >= g.maxCandidates {
				return out
			}
		}
	}
	return out
}

// normalize lowercases, transliterates to ASCII, replaces punctuation
// with spaces and strips trailing legal-entity suffix tokens.
func (g *Generator) normalize(name string) []string {
	s := g.replacer.Replace(strings.ToLower(name))

	// Decompose and drop combining marks (é -> e, å -> a).
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(fold, s); err == nil {
		s = folded
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}

	words := strings.Fields(b.String())
	for len(words) > 1 {
		if _, ok := g.suffixes[words[len(words)-1]]; !ok {
			break
		}
		words = words[:len(words)-1]
	}
	if len(words) == 1 {
		if _, ok := g.suffixes[words[0]]; ok {
			return nil
		}
	}
	return words
}

func (g *Generator) validSlug(s string) bool {
	if len(s) < g.minSlug || len(s) > 63 {
		return false
	}
	return s[0] != '-' && s[len(s)-1] != '-'
}
