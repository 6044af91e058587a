package triage

import (
	"strings"

	"github.com/terminal-bench/reliefops/internal/models"
)

const (
	minPriority = 1
	maxPriority = 5
)

// urgentTerms escalate a report by one level when found in its text.
var urgentTerms = []string{
	"trapped",
	"drowning",
	"no electricity for days",
	"stranded",
	"unconscious",
	"severe bleeding",
	"collapsed",
	"water rising",
}

// BaseSeverity is the category-only priority.
func BaseSeverity(c models.Category) int {
	switch c {
	case models.CategoryRescue, models.CategoryMedical:
		return 4
	case models.CategoryFoodWater, models.CategoryShelter:
		return 2
	default:
		return 1
	}
}

func scaleBump(people int) int {
	switch {
	case people >= 50:
		return 2
	case people >= 20:
		return 1
	default:
		return 0
	}
}

// HasUrgentTerm reports whether text mentions any urgent term, ignoring case.
func HasUrgentTerm(text string) bool {
	lower := strings.ToLower(text)
	for _, term := range urgentTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// Priority scores a report from 1 (routine) to 5 (most urgent). The category
// base, the people-scaled candidate and the keyword candidate are combined by
// taking the largest, then clamped.
func Priority(c models.Category, people int, text string) int {
	base := BaseSeverity(c)
	score := base
	if s := base + scaleBump(people); s > score {
		score = s
	}
	if HasUrgentTerm(text) && base+1 > score {
		score = base + 1
	}
	return clamp(score, minPriority, maxPriority)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
