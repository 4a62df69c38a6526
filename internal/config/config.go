// README: Config loader; optional YAML file validated on load, env variables override with defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type TransitConfig struct {
	Source      string        `yaml:"source" validate:"oneof=trias gtfsrt"`
	Endpoint    string        `yaml:"endpoint" validate:"omitempty,url"`
	AccessToken string        `yaml:"access_token"`
	FeedURL     string        `yaml:"feed_url" validate:"omitempty,url"`
	MinRefresh  time.Duration `yaml:"min_refresh"`
	Results     int           `yaml:"results" validate:"gt=0"`
}

type GameConfig struct {
	Tick          time.Duration `yaml:"tick" validate:"gt=0"`
	FetchInterval time.Duration `yaml:"fetch_interval" validate:"gt=0"`
	FetchWorkers  int           `yaml:"fetch_workers" validate:"gt=0"`
	BusMarker     string        `yaml:"bus_marker"`
	TeamsFile     string        `yaml:"teams_file" validate:"required"`
	JournalFile   string        `yaml:"journal_file" validate:"required"`
	Roster        string        `yaml:"roster" validate:"oneof=file pg"`
}

type DataConfig struct {
	StopsFile  string `yaml:"stops_file" validate:"required"`
	CurvesFile string `yaml:"curves_file"`
	ReplayDir  string `yaml:"replay_dir" validate:"required"`
}

type Config struct {
	HTTP struct {
		Addr       string `yaml:"addr" validate:"required"`
		AdminToken string `yaml:"admin_token"`
	} `yaml:"http"`
	DB struct {
		DSN string `yaml:"dsn"`
	} `yaml:"db"`
	Redis struct {
		Addr string        `yaml:"addr"`
		TTL  time.Duration `yaml:"ttl"`
	} `yaml:"redis"`
	Transit TransitConfig `yaml:"transit"`
	Game    GameConfig    `yaml:"game"`
	Data    DataConfig    `yaml:"data"`
}

var ErrMissingCredentials = errors.New("TRIAS_API_ENDPOINT and TRIAS_ACCESS_TOKEN are required for the trias source")

func defaults() Config {
	var cfg Config
	cfg.HTTP.Addr = ":3000"
	cfg.Redis.TTL = 10 * time.Minute
	cfg.Transit.Source = "trias"
	cfg.Transit.Results = 10
	cfg.Transit.MinRefresh = 5 * time.Second
	cfg.Game.Tick = 100 * time.Millisecond
	cfg.Game.FetchInterval = 20 * time.Second
	cfg.Game.FetchWorkers = 8
	cfg.Game.BusMarker = "bus"
	cfg.Game.TeamsFile = "teams.json"
	cfg.Game.JournalFile = "log.csv"
	cfg.Game.Roster = "file"
	cfg.Data.StopsFile = "data/stops.yml"
	cfg.Data.CurvesFile = "data/route_curves.csv"
	cfg.Data.ReplayDir = "."
	return cfg
}

// Load builds the configuration from MRX_CONFIG (if set) and the environment.
func Load() (Config, error) {
	cfg := defaults()
	if path := os.Getenv("MRX_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.HTTP.Addr = envOrDefault("MRX_HTTP_ADDR", portAddr(cfg.HTTP.Addr))
	cfg.HTTP.AdminToken = envOrDefault("MRX_ADMIN_TOKEN", cfg.HTTP.AdminToken)
	cfg.DB.DSN = envOrDefault("MRX_DB_DSN", cfg.DB.DSN)
	cfg.Redis.Addr = envOrDefault("MRX_REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.TTL = envOrDefaultDuration("MRX_REDIS_TTL", cfg.Redis.TTL)

	cfg.Transit.Source = envOrDefault("MRX_TRANSIT_SOURCE", cfg.Transit.Source)
	cfg.Transit.Endpoint = envOrDefault("TRIAS_API_ENDPOINT", cfg.Transit.Endpoint)
	cfg.Transit.AccessToken = envOrDefault("TRIAS_ACCESS_TOKEN", cfg.Transit.AccessToken)
	cfg.Transit.FeedURL = envOrDefault("MRX_GTFSRT_URL", cfg.Transit.FeedURL)
	cfg.Transit.MinRefresh = envOrDefaultDuration("MRX_GTFSRT_MIN_REFRESH", cfg.Transit.MinRefresh)
	cfg.Transit.Results = envOrDefaultInt("MRX_TRIAS_RESULTS", cfg.Transit.Results)

	cfg.Game.Tick = envOrDefaultDuration("MRX_TICK", cfg.Game.Tick)
	cfg.Game.FetchInterval = envOrDefaultDuration("MRX_FETCH_INTERVAL", cfg.Game.FetchInterval)
	cfg.Game.FetchWorkers = envOrDefaultInt("MRX_FETCH_CONCURRENCY", cfg.Game.FetchWorkers)
	cfg.Game.BusMarker = envOrDefault("MRX_BUS_MARKER", cfg.Game.BusMarker)
	cfg.Game.TeamsFile = envOrDefault("MRX_TEAMS_FILE", cfg.Game.TeamsFile)
	cfg.Game.JournalFile = envOrDefault("MRX_JOURNAL_FILE", cfg.Game.JournalFile)
	cfg.Game.Roster = envOrDefault("MRX_ROSTER", cfg.Game.Roster)

	cfg.Data.StopsFile = envOrDefault("MRX_STOPS_FILE", cfg.Data.StopsFile)
	cfg.Data.CurvesFile = envOrDefault("MRX_CURVES_FILE", cfg.Data.CurvesFile)
	cfg.Data.ReplayDir = envOrDefault("MRX_REPLAY_DIR", cfg.Data.ReplayDir)

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks struct tags and the cross-field rules tags cannot express.
func Validate(cfg Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Transit.Source == "trias" && (cfg.Transit.Endpoint == "" || cfg.Transit.AccessToken == "") {
		return ErrMissingCredentials
	}
	if cfg.Transit.Source == "gtfsrt" && cfg.Transit.FeedURL == "" {
		return errors.New("MRX_GTFSRT_URL is required for the gtfsrt source")
	}
	if cfg.Game.Roster == "pg" && cfg.DB.DSN == "" {
		return errors.New("MRX_DB_DSN is required for the pg roster")
	}
	return nil
}

// portAddr honours the PORT convention of hosting platforms.
func portAddr(def string) string {
	if p := os.Getenv("PORT"); p != "" {
		return ":" + p
	}
	return def
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
