package scoreline

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
)

// envPrefix namespaces every configuration variable.
const envPrefix = "SCORELINE_"

// Config is the frozen set of operating parameters, resolved once at
// startup. Every field is optional except BaseURL.
type Config struct {
	// BaseURL is the leaderboard service endpoint, e.g.
	// "https://leaderboard.example.com".
	BaseURL string `env:"BASE_URL"`

	Timeout        time.Duration `env:"TIMEOUT" envDefault:"10s"`
	MaxRetries     int           `env:"MAX_RETRIES" envDefault:"3"`
	InitialBackoff time.Duration `env:"INITIAL_BACKOFF" envDefault:"1s"`

	CacheEnabled   bool          `env:"CACHE_ENABLED" envDefault:"true"`
	LeaderboardTTL time.Duration `env:"LEADERBOARD_TTL" envDefault:"30s"`
	PlayerTTL      time.Duration `env:"PLAYER_TTL" envDefault:"60s"`
	StatsTTL       time.Duration `env:"STATS_TTL" envDefault:"5m"`

	// AutoRefreshInterval drives Poller, the helper polling UIs use.
	AutoRefreshInterval time.Duration `env:"AUTO_REFRESH_INTERVAL" envDefault:"30s"`

	Verbose bool `env:"VERBOSE" envDefault:"false"`
}

// envKinds records which variables need a well-formed value. Malformed
// values fall back to the compiled default instead of failing the load.
var envKinds = map[string]string{
	"TIMEOUT":               "duration",
	"MAX_RETRIES":           "int",
	"INITIAL_BACKOFF":       "duration",
	"CACHE_ENABLED":         "bool",
	"LEADERBOARD_TTL":       "duration",
	"PLAYER_TTL":            "duration",
	"STATS_TTL":             "duration",
	"AUTO_REFRESH_INTERVAL": "duration",
	"VERBOSE":               "bool",
}

// Load resolves a Config from SCORELINE_* environment variables. Malformed
// typed values are ignored (their defaults apply) and reported in the
// returned slice; the load itself never fails.
func Load() (Config, []string) {
	environment, warnings := sanitizedEnvironment(os.Environ())

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{
		Prefix:      envPrefix,
		Environment: environment,
	}); err != nil {
		// Unreachable for the known field set; surface it rather than hide it.
		warnings = append(warnings, err.Error())
	}
	return cfg, warnings
}

// sanitizedEnvironment filters os.Environ down to well-formed SCORELINE_*
// entries so struct parsing falls back to envDefault for the bad ones.
func sanitizedEnvironment(environ []string) (map[string]string, []string) {
	out := make(map[string]string)
	var warnings []string

	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, envPrefix) {
			continue
		}
		if !wellFormed(strings.TrimPrefix(key, envPrefix), value) {
			warnings = append(warnings, key+" has a malformed value, using default")
			continue
		}
		out[key] = value
	}
	return out, warnings
}

func wellFormed(name, value string) bool {
	switch envKinds[name] {
	case "int":
		_, err := strconv.Atoi(value)
		return err == nil
	case "bool":
		// Anything but "true" reads as false, mirroring the service's own
		// configuration convention.
		return true
	case "duration":
		_, err := time.ParseDuration(value)
		return err == nil
	default:
		return true
	}
}

// Validate returns the list of violations, empty when the configuration is
// usable. It never fails hard; callers decide whether to proceed or abort.
func (c Config) Validate() []string {
	var violations []string

	if c.BaseURL == "" {
		violations = append(violations, "base URL must be set")
	}
	if c.Timeout <= 0 {
		violations = append(violations, "timeout must be positive")
	}
	if c.MaxRetries < 0 {
		violations = append(violations, "max retries must be non-negative")
	}
	if c.InitialBackoff <= 0 {
		violations = append(violations, "initial backoff must be positive")
	}
	if c.LeaderboardTTL <= 0 {
		violations = append(violations, "leaderboard TTL must be positive")
	}
	if c.PlayerTTL <= 0 {
		violations = append(violations, "player TTL must be positive")
	}
	if c.StatsTTL <= 0 {
		violations = append(violations, "stats TTL must be positive")
	}
	if c.AutoRefreshInterval <= 0 {
		violations = append(violations, "auto-refresh interval must be positive")
	}
	return violations
}

// Options maps the configuration onto client options.
func (c Config) Options() []Option {
	opts := []Option{
		WithBaseURL(c.BaseURL),
		WithTimeout(c.Timeout),
		WithMaxRetries(c.MaxRetries),
		WithInitialBackoff(c.InitialBackoff),
		WithLeaderboardTTL(c.LeaderboardTTL),
		WithPlayerTTL(c.PlayerTTL),
		WithStatsTTL(c.StatsTTL),
	}
	if c.CacheEnabled {
		opts = append(opts, WithCache(NewMemoryCache()))
	}
	if c.Verbose {
		opts = append(opts, WithDebug())
	}
	return opts
}

var summaryOnce sync.Once

// logSummary emits the one-time configuration summary at process start.
func (c Config) logSummary(logger Logger) {
	summaryOnce.Do(func() {
		logger.Info("scoreline configured",
			"baseURL", c.BaseURL,
			"timeout", c.Timeout,
			"maxRetries", c.MaxRetries,
			"initialBackoff", c.InitialBackoff,
			"cacheEnabled", c.CacheEnabled,
			"leaderboardTTL", c.LeaderboardTTL,
			"playerTTL", c.PlayerTTL,
			"statsTTL", c.StatsTTL,
			"autoRefreshInterval", c.AutoRefreshInterval,
			"version", Version,
		)
	})
}
