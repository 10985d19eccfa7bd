package config

import (
	"os"
	"strconv"

	"github.com/superchezzz/daa-ayospila/internal/models"
	"github.com/superchezzz/daa-ayospila/internal/scoring"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string

	Weights                scoring.Weights
	StarvationAlertMinutes int
	DayBoundaryHour        int

	RateLimitPerMinute int
	RateLimitBurst     int
}

// Load reads configuration from the environment, with a .env file as a
// convenience for local runs. Every knob has a working default; DB_DSN is
// the only one that changes topology (unset means the in-memory store).
func Load() Config {
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	weights := scoring.DefaultWeights()
	weights.CategoryWeights = map[string]int{
		models.CategoryRegular:       readInt("SCORE_WEIGHT_REGULAR", weights.CategoryWeights[models.CategoryRegular]),
		models.CategorySeniorCitizen: readInt("SCORE_WEIGHT_SENIOR", weights.CategoryWeights[models.CategorySeniorCitizen]),
		models.CategoryPWD:           readInt("SCORE_WEIGHT_PWD", weights.CategoryWeights[models.CategoryPWD]),
		models.CategoryPregnant:      readInt("SCORE_WEIGHT_PREGNANT", weights.CategoryWeights[models.CategoryPregnant]),
	}
	weights.UrgencyWeight = readInt("URGENCY_WEIGHT", weights.UrgencyWeight)
	weights.AgingIntervalMinutes = readInt("AGING_INTERVAL_MINUTES", weights.AgingIntervalMinutes)
	weights.AgingIncrement = readInt("AGING_INCREMENT", weights.AgingIncrement)
	weights.LevelThresholdHigh = readInt("LEVEL_THRESHOLD_HIGH", weights.LevelThresholdHigh)
	weights.LevelThresholdMedium = readInt("LEVEL_THRESHOLD_MEDIUM", weights.LevelThresholdMedium)

	return Config{
		Port:                   port,
		DatabaseURL:            os.Getenv("DB_DSN"),
		Weights:                weights,
		StarvationAlertMinutes: readInt("STARVATION_ALERT_MINUTES", 10),
		DayBoundaryHour:        readInt("DAY_BOUNDARY_HOUR", 0),
		RateLimitPerMinute:     readInt("RATE_LIMIT_PER_MIN", 120),
		RateLimitBurst:         readInt("RATE_LIMIT_BURST", 30),
	}
}

func readInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
