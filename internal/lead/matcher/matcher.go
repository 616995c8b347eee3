// Package matcher scores active leads against a client's stated property
// preferences. Scoring is a weighted blend of budget fit, location
// similarity and typology, tuned for noisy portal data where municipality
// names arrive with typos and inconsistent casing.
package matcher

import (
	"sort"
	"strings"

	clientmodels "brokerdesk/internal/client/models"
	"brokerdesk/internal/lead/models"
)

const (
	weightBudget   = 0.40
	weightLocation = 0.35
	weightTypology = 0.25

	// Leads priced more than 20% over budget score zero on the budget axis.
	budgetTolerance = 0.20

	// Threshold is the minimum blended score for a lead to count as a match.
	Threshold = 0.5
)

// Match pairs a lead with its score against one client.
type Match struct {
	Lead  *models.Lead `json:"lead"`
	Score float64      `json:"score"`
}

// Rank scores every candidate against the client's preferences and returns
// the ones at or above Threshold, best first. Clients with no stated
// preferences match nothing.
func Rank(prefs clientmodels.RealEstateData, candidates []*models.Lead) []Match {
	if !prefs.HasPreferences() {
		return nil
	}
	var matches []Match
	for _, lead := range candidates {
		score := Score(prefs, lead)
		if score >= Threshold {
			matches = append(matches, Match{Lead: lead, Score: score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

// Score blends the three axes into [0, 1].
func Score(prefs clientmodels.RealEstateData, lead *models.Lead) float64 {
	return weightBudget*budgetFit(prefs.Budget, lead.Price) +
		weightLocation*locationFit(prefs.Locations, lead.Municipality) +
		weightTypology*typologyFit(prefs.Typology, lead.Typology)
}

// budgetFit is 1 within budget and decays linearly to 0 at 20% over. With no
// stated budget every price fits.
func budgetFit(budget, price float64) float64 {
	if budget <= 0 {
		return 1
	}
	if price <= budget {
		return 1
	}
	over := (price - budget) / budget
	if over >= budgetTolerance {
		return 0
	}
	return 1 - over/budgetTolerance
}

// locationFit is the best normalized Levenshtein similarity between the
// lead's municipality and any preferred location.
func locationFit(locations []string, municipality string) float64 {
	if len(locations) == 0 {
		return 1
	}
	if municipality == "" {
		return 0
	}
	municipality = strings.ToLower(strings.TrimSpace(municipality))
	best := 0.0
	for _, location := range locations {
		if sim := similarity(strings.ToLower(strings.TrimSpace(location)), municipality); sim > best {
			best = sim
		}
	}
	return best
}

func typologyFit(want, got string) float64 {
	if want == "" {
		return 1
	}
	if strings.EqualFold(strings.TrimSpace(want), strings.TrimSpace(got)) {
		return 1
	}
	return 0
}

// similarity is 1 - dist/maxlen, so identical strings score 1 and disjoint
// ones approach 0.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein(a, b))/float64(longest)
}

// levenshtein is the classic two-row edit distance over runes.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
