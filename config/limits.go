package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Policy is one fixed-window quota: at most Limit hits per Window.
type Policy struct {
	Limit  int           `yaml:"limit"`
	Window time.Duration `yaml:"window"`
}

type RateLimits struct {
	General Policy `yaml:"general"`
	Orders  Policy `yaml:"orders"`
	Login   Policy `yaml:"login"`
	Upload  Policy `yaml:"upload"`
}

func DefaultRateLimits() RateLimits {
	return RateLimits{
		General: Policy{Limit: 1000, Window: 15 * time.Minute},
		Orders:  Policy{Limit: 10, Window: 15 * time.Minute},
		Login:   Policy{Limit: 5, Window: 15 * time.Minute},
		Upload:  Policy{Limit: 30, Window: 15 * time.Minute},
	}
}

// LoadRateLimits reads policies from a YAML file. Sections missing from the
// file keep their defaults. An empty path returns the defaults.
func LoadRateLimits(path string) (RateLimits, error) {
	limits := DefaultRateLimits()
	if path == "" {
		return limits, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return limits, fmt.Errorf("read rate limits: %w", err)
	}
	if err := yaml.Unmarshal(data, &limits); err != nil {
		return limits, fmt.Errorf("parse rate limits: %w", err)
	}

	for name, p := range map[string]Policy{
		"general": limits.General,
		"orders":  limits.Orders,
		"login":   limits.Login,
		"upload":  limits.Upload,
	} {
		if p.Limit <= 0 || p.Window <= 0 {
			return limits, fmt.Errorf("rate limit %q: limit and window must be positive", name)
		}
	}
	return limits, nil
}
