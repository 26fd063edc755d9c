package service

import (
	"math"

	"github.com/noah-isme/edupro-navigator/internal/models"
)

// Tier thresholds on a 0..100 scale.
const (
	tier3Ceiling = 60
	tier2Ceiling = 80
)

// Average is the arithmetic mean of the selected metric. Empty input yields 0.
func Average[T any](entries []T, metric func(T) float64) float64 {
	if len(entries) == 0 {
		return 0
	}
	var sum float64
	for _, entry := range entries {
		sum += metric(entry)
	}
	return sum / float64(len(entries))
}

// Trend is the newest metric minus the one before it, or 0 with fewer than
// two entries. Entries must be ordered newest first.
func Trend(entriesNewestFirst []models.HistoryEntry) float64 {
	if len(entriesNewestFirst) < 2 {
		return 0
	}
	return entriesNewestFirst[0].Metric - entriesNewestFirst[1].Metric
}

// Latest returns the newest metric or 0.
func Latest(entriesNewestFirst []models.HistoryEntry) float64 {
	if len(entriesNewestFirst) == 0 {
		return 0
	}
	return entriesNewestFirst[0].Metric
}

// ClassAverage is the unrounded mean score.
func ClassAverage(scores []models.StudentScore) float64 {
	return Average(scores, func(s models.StudentScore) float64 { return s.Score })
}

// Gauge expresses part of whole as a percentage capped to 0..100.
func Gauge(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return ClampScore(part / whole * 100)
}

// ClampScore bounds a score to 0..100.
func ClampScore(value float64) float64 {
	if math.IsNaN(value) {
		return 0
	}
	return math.Max(0, math.Min(100, value))
}

// TierFor places a score in its intervention band.
func TierFor(score float64) string {
	switch {
	case score <= tier3Ceiling:
		return models.Tier3
	case score <= tier2Ceiling:
		return models.Tier2
	default:
		return models.Tier1
	}
}

// Tiers counts students per band.
func Tiers(scores []models.StudentScore) models.TierDistribution {
	var dist models.TierDistribution
	for _, s := range scores {
		switch TierFor(s.Score) {
		case models.Tier3:
			dist.Tier3++
		case models.Tier2:
			dist.Tier2++
		default:
			dist.Tier1++
		}
	}
	return dist
}

// Round2 rounds for display only.
func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}
