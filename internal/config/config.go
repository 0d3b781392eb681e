package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/domain"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the process-wide configuration, read once at startup and never mutated.
type Config struct {
	Port       string
	DBDialect  string
	DBURL      string
	SeedPath   string
	RedisAddr  string
	ORSAPIKey  string
	RouteTTL   time.Duration
	OptTimeout time.Duration
	Optimizer  domain.OptimizerOptions
}

// optimizerFile is the optional YAML tuning file referenced by OPTIMIZER_CONFIG.
// Speed is a pointer so an explicit zero is told apart from an absent key.
type optimizerFile struct {
	Optimizer struct {
		AverageSpeedKmh *float64 `yaml:"average_speed_kmh"`
		MaxIterations   int      `yaml:"max_iterations"`
		Epsilon         float64  `yaml:"epsilon"`
	} `yaml:"optimizer"`
}

// Get returns the environment value for key, or fallback when unset or empty.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getFloat(key string, fallback float64) (float64, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return f, nil
}

func getInt(key string, fallback int) (int, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}

// Load reads .env (if present), the environment and the optional optimizer
// YAML file. Environment variables override values from the YAML file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg := Config{
		Port:      Get("PORT", "8080"),
		DBDialect: Get("DB_DIALECT", "sqlite"),
		DBURL:     Get("DATABASE_URL", "data/app.db"),
		SeedPath:  Get("SEED_PATH", ""),
		RedisAddr: Get("REDIS_ADDR", ""),
		ORSAPIKey: Get("ORS_API_KEY", ""),
	}

	if path := Get("OPTIMIZER_CONFIG", ""); path != "" {
		opts, err := LoadOptimizerFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg.Optimizer = opts
	}

	var err error
	if cfg.Optimizer.AverageSpeedKmh, err = getFloat("AVERAGE_SPEED_KMH", cfg.Optimizer.AverageSpeedKmh); err != nil {
		return Config{}, err
	}
	if cfg.Optimizer.MaxIterations, err = getInt("OPTIMIZER_MAX_ITERATIONS", cfg.Optimizer.MaxIterations); err != nil {
		return Config{}, err
	}
	if cfg.Optimizer.Epsilon, err = getFloat("OPTIMIZER_EPSILON", cfg.Optimizer.Epsilon); err != nil {
		return Config{}, err
	}
	if cfg.RouteTTL, err = getDuration("ROUTE_CACHE_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.OptTimeout, err = getDuration("OPTIMIZER_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}

	// A configured speed must be usable; it is never silently replaced.
	if Get("AVERAGE_SPEED_KMH", "") != "" && cfg.Optimizer.AverageSpeedKmh <= 0 {
		return Config{}, fmt.Errorf("config: optimizer: %w", &domain.ValidationError{
			Field:  "average_speed_kmh",
			Reason: fmt.Sprintf("must be positive, got %v", cfg.Optimizer.AverageSpeedKmh),
		})
	}
	if err := cfg.Optimizer.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: optimizer: %w", err)
	}
	if cfg.Optimizer.AverageSpeedKmh == 0 {
		cfg.Optimizer.AverageSpeedKmh = domain.DefaultAverageSpeedKmh
	}

	return cfg, nil
}

// LoadOptimizerFile parses optimizer tuning from a YAML file of the form:
//
//	optimizer:
//	  average_speed_kmh: 25
//	  max_iterations: 2000
//	  epsilon: 1e-9
func LoadOptimizerFile(path string) (domain.OptimizerOptions, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return domain.OptimizerOptions{}, fmt.Errorf("config: read optimizer file %q: %w", path, err)
	}

	var f optimizerFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return domain.OptimizerOptions{}, fmt.Errorf("config: parse optimizer file %q: %w", path, err)
	}

	opts := domain.OptimizerOptions{
		MaxIterations: f.Optimizer.MaxIterations,
		Epsilon:       f.Optimizer.Epsilon,
	}
	if speed := f.Optimizer.AverageSpeedKmh; speed != nil {
		if *speed <= 0 {
			return domain.OptimizerOptions{}, fmt.Errorf("config: optimizer file %q: %w", path, &domain.ValidationError{
				Field:  "average_speed_kmh",
				Reason: fmt.Sprintf("must be positive, got %v", *speed),
			})
		}
		opts.AverageSpeedKmh = *speed
	}

	return opts, nil
}
