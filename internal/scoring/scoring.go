package scoring

import (
	"time"

	"github.com/superchezzz/daa-ayospila/internal/models"
)

type Level string

const (
	LevelHigh   Level = "High"
	LevelMedium Level = "Medium"
	LevelLow    Level = "Low"
)

// Weights drives the whole priority policy. The scoring logic itself never
// branches on a category name; it only looks values up here, so the policy
// can be retuned through configuration alone.
type Weights struct {
	CategoryWeights      map[string]int
	UrgencyWeight        int
	AgingIntervalMinutes int
	AgingIncrement       int
	LevelThresholdHigh   int
	LevelThresholdMedium int
}

// DefaultWeights mirrors the office's historical policy: PWD above
// Senior Citizen/Pregnant above Regular, urgency doubled, one aging point
// per full ten minutes waited.
func DefaultWeights() Weights {
	return Weights{
		CategoryWeights: map[string]int{
			models.CategoryRegular:       1,
			models.CategorySeniorCitizen: 4,
			models.CategoryPWD:           5,
			models.CategoryPregnant:      4,
		},
		UrgencyWeight:        2,
		AgingIntervalMinutes: 10,
		AgingIncrement:       1,
		LevelThresholdHigh:   12,
		LevelThresholdMedium: 8,
	}
}

// Score computes the customer's live priority score at the given instant.
// It is pure: same customer, same instant, same weights, same result. The
// aging bonus is uncapped, so any waiting customer eventually outranks any
// fixed-score competitor.
func (w Weights) Score(c models.Customer, now time.Time) (int, Level) {
	score := w.CategoryWeights[c.Category]
	score += c.Urgency * w.UrgencyWeight
	score += w.AgingBonus(c.WaitMinutes(now))
	return score, w.LevelFor(score)
}

// AgingBonus is the score accrued purely from waiting: one increment per
// full aging interval, no ceiling.
func (w Weights) AgingBonus(waitMinutes int) int {
	if w.AgingIntervalMinutes <= 0 || waitMinutes <= 0 {
		return 0
	}
	return (waitMinutes / w.AgingIntervalMinutes) * w.AgingIncrement
}

func (w Weights) LevelFor(score int) Level {
	switch {
	case score >= w.LevelThresholdHigh:
		return LevelHigh
	case score >= w.LevelThresholdMedium:
		return LevelMedium
	default:
		return LevelLow
	}
}
