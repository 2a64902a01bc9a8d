package roster

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"clinical-dashboard/internal/models"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey selects the roster ordering.
type SortKey string

const (
	SortHealthScore SortKey = "healthScore"
	SortName        SortKey = "name"
	// SortNone keeps the upstream order; any unknown key behaves the same.
	SortNone SortKey = "lastReading"
)

const RiskAll = "all"

// Query is a roster projection request.
type Query struct {
	Search string
	Sort   SortKey
	// Risk restricts rows to one risk level; "" and "all" keep every row.
	Risk string
	// MatchID also matches the search term against the decimal patient id.
	MatchID bool
}

// ParseSortKey accepts both the camelCase keys used by the dashboard and
// their snake_case spelling.
func ParseSortKey(s string) SortKey {
	switch strings.ToLower(strings.ReplaceAll(s, "_", "")) {
	case "healthscore":
		return SortHealthScore
	case "name":
		return SortName
	}
	return SortNone
}

// Filter returns the patients whose name contains term, case-insensitively,
// or whose id contains it when matchID is set. The source is not modified.
func Filter(patients []models.PatientSummary, term string, matchID bool) []models.PatientSummary {
	needle := strings.ToLower(term)
	out := make([]models.PatientSummary, 0, len(patients))
	for _, p := range patients {
		if strings.Contains(strings.ToLower(p.Name), needle) ||
			(matchID && strings.Contains(strconv.FormatInt(p.ID, 10), term)) {
			out = append(out, p)
		}
	}
	return out
}

// FilterRisk keeps patients at the given risk level. "" and "all" keep all.
func FilterRisk(patients []models.PatientSummary, risk string) []models.PatientSummary {
	risk = strings.ToLower(strings.TrimSpace(risk))
	out := make([]models.PatientSummary, 0, len(patients))
	for _, p := range patients {
		if risk == "" || risk == RiskAll || strings.EqualFold(p.RiskLevel, risk) {
			out = append(out, p)
		}
	}
	return out
}

// Sort returns a sorted copy of patients. Health score sorts descending and
// name ascending with English collation; ties keep their input order. Any
// other key returns the input order unchanged.
func Sort(patients []models.PatientSummary, key SortKey) []models.PatientSummary {
	out := make([]models.PatientSummary, len(patients))
	copy(out, patients)

	switch key {
	case SortHealthScore:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i].HealthScore, out[j].HealthScore
			// NaN scores sort last
			if math.IsNaN(a) || math.IsNaN(b) {
				return !math.IsNaN(a) && math.IsNaN(b)
			}
			return a > b
		})
	case SortName:
		c := collate.New(language.English)
		sort.SliceStable(out, func(i, j int) bool {
			return c.CompareString(out[i].Name, out[j].Name) < 0
		})
	}
	return out
}

// Project filters then sorts.
func Project(patients []models.PatientSummary, q Query) []models.PatientSummary {
	filtered := Filter(patients, q.Search, q.MatchID)
	filtered = FilterRisk(filtered, q.Risk)
	return Sort(filtered, q.Sort)
}
