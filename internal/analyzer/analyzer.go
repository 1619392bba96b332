package analyzer

import (
	"sort"

	"github.com/nordreg/domainscout/internal/core"
)

// EstimateRevenue returns a rough revenue estimate in NOK from the
// employee count alone, using tiered per-employee multipliers. Returns
// nil when the registry has no employee figure for the business.
func EstimateRevenue(employees *int) *int64 {
	if employees == nil {
		return nil
	}

	n := int64(*employees)
	var estimate int64
	switch {
	case n == 0:
		estimate = 1_000_000
	case n <= 10:
		estimate = n * 2_000_000
	case n <= 50:
		estimate = n * 1_500_000
	case n <= 250:
		estimate = n * 1_200_000
	default:
		estimate = n * 1_000_000
	}
	return &estimate
}

// SizeCategory classifies a business by employee count.
func SizeCategory(employees *int) string {
	n := 0
	if employees != nil {
		n = *employees
	}
	switch {
	case n == 0:
		return "micro"
	case n <= 10:
		return "small"
	case n <= 50:
		return "medium"
	case n <= 250:
		return "large"
	default:
		return "very_large"
	}
}

// industryByNACE maps the two-digit NACE division to a coarse category.
var industryByNACE = map[string]string{
	"01": "agriculture", "02": "agriculture", "03": "agriculture",
	"05": "mining", "06": "mining", "07": "mining", "08": "mining", "09": "mining",
	"10": "manufacturing", "11": "manufacturing", "12": "manufacturing",
	"13": "manufacturing", "14": "manufacturing", "15": "manufacturing",
	"16": "manufacturing", "17": "manufacturing", "18": "manufacturing",
	"19": "manufacturing", "20": "manufacturing", "21": "manufacturing",
	"22": "manufacturing", "23": "manufacturing", "24": "manufacturing",
	"25": "manufacturing", "26": "manufacturing", "27": "manufacturing",
	"28": "manufacturing", "29": "manufacturing", "30": "manufacturing",
	"31": "manufacturing", "32": "manufacturing", "33": "manufacturing",
	"35": "utilities", "36": "utilities", "37": "utilities", "38": "utilities", "39": "utilities",
	"41": "construction", "42": "construction", "43": "construction",
	"45": "trade", "46": "trade", "47": "trade",
	"49": "transport", "50": "transport", "51": "transport", "52": "transport", "53": "transport",
	"55": "accommodation", "56": "accommodation",
	"58": "information", "59": "information", "60": "information",
	"61": "information", "62": "information", "63": "information",
	"64": "finance", "65": "finance", "66": "finance",
	"68": "real_estate",
	"69": "professional", "70": "professional", "71": "professional",
	"72": "professional", "73": "professional", "74": "professional", "75": "professional",
	"77": "services", "78": "services", "79": "services",
	"80": "services", "81": "services", "82": "services",
	"84": "public",
	"85": "education",
	"86": "health", "87": "health", "88": "health",
	"90": "arts", "91": "arts", "92": "arts", "93": "arts",
}

// IndustryCategory returns the simplified industry category for a NACE
// code, "unknown" when the code is missing.
func IndustryCategory(naceCode string) string {
	if naceCode == "" {
		return "unknown"
	}
	if len(naceCode) < 2 {
		return "other"
	}
	if category, ok := industryByNACE[naceCode[:2]]; ok {
		return category
	}
	return "other"
}

// TopByRevenue returns the n records with the highest revenue
// estimates, ordering stable so equal estimates keep registry order.
func TopByRevenue(records []core.BusinessRecord, n int) []core.BusinessRecord {
	ranked := make([]core.BusinessRecord, len(records))
	copy(ranked, records)

	sort.SliceStable(ranked, func(i, j int) bool {
		return revenueOrZero(ranked[i].Employees) > revenueOrZero(ranked[j].Employees)
	})

	if n > 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

func revenueOrZero(employees *int) int64 {
	if estimate := EstimateRevenue(employees); estimate != nil {
		return *estimate
	}
	return 0
}
