// Package discovery narrows a catalog of trips and groups to the listings
// matching a set of filter criteria.
package discovery

import (
	"strings"

	"ROAMMATE_BACK-END/internal/models"
)

type predicate func(models.Listing) bool

// ApplyFilters returns the listings of catalog that satisfy every active criterion,
// in catalog order. It never mutates catalog and never returns nil.
func ApplyFilters(catalog []models.Listing, c Criteria) []models.Listing {
	preds := c.predicates()
	out := make([]models.Listing, 0, len(catalog))
	for _, l := range catalog {
		if matchAll(l, preds) {
			out = append(out, l)
		}
	}
	return out
}

// Matches reports whether a single listing passes c.
func Matches(l models.Listing, c Criteria) bool {
	return matchAll(l, c.predicates())
}

func matchAll(l models.Listing, preds []predicate) bool {
	for _, p := range preds {
		if !p(l) {
			return false
		}
	}
	return true
}

func (c Criteria) predicates() []predicate {
	var preds []predicate

	if c.Destination != "" {
		needle := strings.ToLower(c.Destination)
		preds = append(preds, func(l models.Listing) bool {
			return containsFold(l.Destination, needle)
		})
	}
	if c.StartLocation != "" {
		needle := strings.ToLower(c.StartLocation)
		preds = append(preds, func(l models.Listing) bool {
			return l.StartLocation != "" && containsFold(l.StartLocation, needle)
		})
	}

	if c.View == ViewDiscover {
		if c.Category != "" {
			category := c.Category
			preds = append(preds, func(l models.Listing) bool { return l.HasCategory(category) })
		}
		if c.Search != "" {
			needle := strings.ToLower(c.Search)
			preds = append(preds, func(l models.Listing) bool {
				return containsFold(l.Title, needle) || containsFold(l.Destination, needle)
			})
		}
	}

	if !c.SmokingPolicy.IsAny() {
		preds = append(preds, func(l models.Listing) bool { return policyMatch(l.SmokingPolicy, c.SmokingPolicy) })
	}
	if !c.AlcoholPolicy.IsAny() {
		preds = append(preds, func(l models.Listing) bool { return policyMatch(l.AlcoholPolicy, c.AlcoholPolicy) })
	}
	if !c.GenderPreference.IsAny() {
		preds = append(preds, func(l models.Listing) bool { return policyMatch(l.GenderPreference, c.GenderPreference) })
	}
	if !c.AgeGroup.IsAny() {
		preds = append(preds, func(l models.Listing) bool { return policyMatch(l.TargetAgeGroup, c.AgeGroup) })
	}
	if !c.TravelerType.IsAny() {
		preds = append(preds, func(l models.Listing) bool { return policyMatch(l.TargetTravelerType, c.TravelerType) })
	}

	if c.groupSizeActive() {
		size := c.GroupSize
		preds = append(preds, func(l models.Listing) bool { return size.Contains(l.MaxGroupSize) })
	}
	return preds
}

// policyMatch is the symmetric wildcard rule: either side set to any (or unset) passes.
func policyMatch[T models.Enum](listing, want T) bool {
	return want.IsAny() || listing.IsAny() || listing == want
}

func containsFold(haystack, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(haystack), lowerNeedle)
}
