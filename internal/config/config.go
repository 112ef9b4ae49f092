package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
	"playquiz/internal/domain"
)

type Config struct {
	Backend struct {
		URL     string `yaml:"url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"backend"`
	Server struct {
		Port string `yaml:"port"`
		// SessionGrace is how long a live session survives without a connection.
		SessionGrace string `yaml:"sessionGrace"`
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
	Quiz struct {
		TTL  string `yaml:"ttl"`
		Seed string `yaml:"seed"`
	} `yaml:"quiz"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
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

type seedFile struct {
	Quizzes []domain.Quiz `yaml:"quizzes"`
}

// LoadQuizzes reads the quiz seed file used by the reference server.
func LoadQuizzes(path string) ([]domain.Quiz, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for _, quiz := range seed.Quizzes {
		if quiz.ID == "" {
			return nil, fmt.Errorf("parse %s: quiz without id", path)
		}
		if err := quiz.Validate(); err != nil {
			return nil, fmt.Errorf("parse %s: quiz %s: %w", path, quiz.ID, err)
		}
	}
	return seed.Quizzes, nil
}
