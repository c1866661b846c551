// Package scoring contains the pure scoring functions: walkability,
// vegetation coverage, investment metrics and vector similarity. No I/O, no
// shared state; identical inputs always produce identical outputs.
package scoring

import (
	"math"
	"sort"

	"github.com/geoinsight/geoinsight/pkg/models"
)

// WalkConfig tunes the walkability scorer. Weights are relative importance
// per category; an amenity's contribution decays linearly from 1 at distance
// 0 to 0 at CutoffM; at most MaxPerCategory amenities count per category.
type WalkConfig struct {
	CutoffM        float64
	MaxPerCategory int
	Weights        map[string]float64
}

// DefaultWalkConfig mirrors the weighting the scorer ships with: daily-needs
// categories dominate, nightlife barely registers.
func DefaultWalkConfig() WalkConfig {
	return WalkConfig{
		CutoffM:        1600,
		MaxPerCategory: 3,
		Weights: map[string]float64{
			models.CategoryGrocery:    3.0,
			models.CategorySchool:     2.0,
			models.CategoryHospital:   2.0,
			models.CategoryPharmacy:   1.5,
			models.CategoryRestaurant: 1.5,
			models.CategoryCafe:       1.0,
			models.CategoryPark:       2.0,
			models.CategoryTransit:    2.5,
			models.CategoryNightlife:  0.5,
		},
	}
}

// Walk computes a walkability score in [0, 100] from nearby amenities.
//
// Per category, each amenity contributes decay(distance) in [0, 1]; only the
// MaxPerCategory largest contributions count, so a strip of twenty
// restaurants cannot carry the score alone. Capped sums are weighted,
// totalled and normalized against the best possible total (every configured
// category saturated at distance 0). Zero amenities is a valid input and
// scores 0.
func Walk(amenities []models.AmenityRecord, cfg WalkConfig) models.WalkabilityReport {
	report := models.WalkabilityReport{
		Breakdown:      make(map[string]models.CategoryBreakdown, len(cfg.Weights)),
		TotalAmenities: len(amenities),
	}

	byCategory := make(map[string][]float64)
	found := make(map[string]int)
	for _, a := range amenities {
		w, known := cfg.Weights[a.Category]
		if !known || w <= 0 {
			continue
		}
		found[a.Category]++
		if c := decay(a.DistanceM, cfg.CutoffM); c > 0 {
			byCategory[a.Category] = append(byCategory[a.Category], c)
		}
	}

	var total, best float64
	for category, weight := range cfg.Weights {
		best += weight * float64(cfg.MaxPerCategory)

		contribs := byCategory[category]
		sort.Sort(sort.Reverse(sort.Float64Slice(contribs)))
		counted := len(contribs)
		if counted > cfg.MaxPerCategory {
			counted = cfg.MaxPerCategory
		}

		var sum float64
		for _, c := range contribs[:counted] {
			sum += c
		}
		contribution := weight * sum
		total += contribution

		if found[category] > 0 {
			report.Breakdown[category] = models.CategoryBreakdown{
				Found:        found[category],
				Counted:      counted,
				Contribution: contribution,
			}
		}
	}

	if best > 0 {
		report.Score = math.Min(100, 100*total/best)
	}
	return report
}

// decay maps distance to a contribution in [0, 1]: maximal at the doorstep,
// zero at and beyond the cutoff.
func decay(distanceM, cutoffM float64) float64 {
	if cutoffM <= 0 || distanceM >= cutoffM {
		return 0
	}
	if distanceM < 0 {
		distanceM = 0
	}
	return 1 - distanceM/cutoffM
}
