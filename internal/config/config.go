package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Content struct {
		Pack string `yaml:"pack"`
		TTL  string `yaml:"ttl"`
	} `yaml:"content"`
	Game Rules `yaml:"game"`
}

// Rules are the engine tuning constants. They are configuration, never
// hardwired in the engine; deltas are signed (penalties negative).
type Rules struct {
	SnapRadius    float64 `yaml:"snap_radius"`
	CorrectReward int     `yaml:"correct_reward"`
	WrongPenalty  int     `yaml:"wrong_penalty"`
	LockBonus     int     `yaml:"lock_bonus"`
	QuizCorrect   int     `yaml:"quiz_correct"`
	QuizWrong     int     `yaml:"quiz_wrong"`
	StreakEvery   int     `yaml:"streak_every"`
	StreakBonus   int     `yaml:"streak_bonus"`
}

// DefaultRules returns the original trainer constants: +10 correct snap,
// -3 wrong or occupied drop, +15 lock bonus, +15/-5 quiz, +10 streak bonus
// every 3 correct answers, snap radius 0.055 in normalized space.
func DefaultRules() Rules {
	return Rules{
		SnapRadius:    0.055,
		CorrectReward: 10,
		WrongPenalty:  -3,
		LockBonus:     15,
		QuizCorrect:   15,
		QuizWrong:     -5,
		StreakEvery:   3,
		StreakBonus:   10,
	}
}

// Load reads YAML config from path. Game rules start from DefaultRules and
// only keys present in the document override them, so an explicit zero (say
// wrong_penalty: 0) is honored rather than swapped for the default.
func Load(path string) (Config, error) {
	cfg := Config{Game: DefaultRules()}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
