package configuration

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/crewplan/pkg/logging"
)

const Production = "production"

var singleton = sync.OnceValue(func() *Configuration {
	c := &Configuration{}
	if err := c.load([]string{".env", ".env.local"}); err != nil {
		c.Unload()
		panic(err)
	}
	return c
})

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// LoadEnv loads the env files that exist, looking in the working directory first and
// then in the nearest directory holding a go.mod. It returns how many were loaded.
func LoadEnv(envFiles []string) (int, error) {
	existingFiles := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if fileExists(file) {
			existingFiles = append(existingFiles, file)
		}
	}
	if len(existingFiles) == 0 {
		if root, ok := moduleRoot(); ok {
			for _, file := range envFiles {
				if p := filepath.Join(root, file); fileExists(p) {
					existingFiles = append(existingFiles, p)
				}
			}
		}
	}

	if len(existingFiles) == 0 {
		return 0, nil
	}
	return len(existingFiles), godotenv.Load(existingFiles...)
}

func moduleRoot() (string, bool) {
	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}
	for {
		if fileExists(filepath.Join(dir, "go.mod")) {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

type RentmanOptions struct {
	BaseURL    string        `env:"RENTMAN_API_URL" envDefault:"https://api.rentman.net"`
	Token      string        `env:"RENTMAN_API_TOKEN"`
	Timeout    time.Duration `env:"RENTMAN_TIMEOUT" envDefault:"120s"`
	PageSize   int           `env:"RENTMAN_PAGE_SIZE" envDefault:"100"`
	MaxRetries int           `env:"RENTMAN_MAX_RETRIES" envDefault:"2"`
}

func (r *RentmanOptions) Validate() error {
	if strings.TrimSpace(r.BaseURL) == "" {
		return fmt.Errorf("RENTMAN_API_URL is required")
	}
	if r.PageSize <= 0 {
		return fmt.Errorf("RENTMAN_PAGE_SIZE must be positive, got %d", r.PageSize)
	}
	if r.MaxRetries < 0 {
		return fmt.Errorf("RENTMAN_MAX_RETRIES must be non-negative, got %d", r.MaxRetries)
	}
	return nil
}

type CacheOptions struct {
	Backend       string        `env:"CACHE_BACKEND" envDefault:"file"` // file, memory or redis
	Dir           string        `env:"CACHE_DIR" envDefault:"./cache"`
	TTL           time.Duration `env:"CACHE_TTL" envDefault:"300s"`
	PruneChance   float64       `env:"CACHE_PRUNE_CHANCE" envDefault:"0.01"`
	PruneInterval time.Duration `env:"CACHE_PRUNE_INTERVAL" envDefault:"0"`
	RedisPrefix   string        `env:"CACHE_REDIS_PREFIX" envDefault:"crewplan:cache:"`
}

// Validate checks the cache configuration for errors
func (c *CacheOptions) Validate(redisURL string) error {
	switch c.Backend {
	case "file":
		if strings.TrimSpace(c.Dir) == "" {
			return fmt.Errorf("cache Dir is required when Backend is 'file'")
		}
	case "memory":
	case "redis":
		if redisURL == "" {
			return fmt.Errorf("REDIS_URL is required when Backend is 'redis'")
		}
	default:
		return fmt.Errorf("cache Backend must be 'file', 'memory' or 'redis', got '%s'", c.Backend)
	}
	if c.PruneChance < 0 || c.PruneChance > 1 {
		return fmt.Errorf("cache PruneChance must be within [0, 1], got %v", c.PruneChance)
	}
	return nil
}

type ResolverOptions struct {
	Strategy      string `env:"RESOLVER_STRATEGY" envDefault:"auto"` // auto, bulk or individual
	Concurrency   int    `env:"RESOLVER_CONCURRENCY" envDefault:"8"`
	BulkThreshold int    `env:"RESOLVER_BULK_THRESHOLD" envDefault:"20"`
}

func (r *ResolverOptions) Validate() error {
	switch r.Strategy {
	case "auto", "bulk", "individual":
	default:
		return fmt.Errorf("invalid RESOLVER_STRATEGY=%q (expected auto|bulk|individual)", r.Strategy)
	}
	if r.Concurrency <= 0 {
		return fmt.Errorf("RESOLVER_CONCURRENCY must be positive, got %d", r.Concurrency)
	}
	return nil
}

type OpenTelemetryOptions struct {
	Enabled     bool   `env:"OTEL_ENABLED" envDefault:"false"`
	TempoURL    string `env:"OTEL_TEMPO_URL" envDefault:"localhost:4318"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"crewplan"`
}

type PrometheusOptions struct {
	Enabled bool   `env:"PROMETHEUS_METRICS_ENABLED" envDefault:"false"`
	Path    string `env:"PROMETHEUS_METRICS_PATH" envDefault:"/debug/prometheus"`
}

type RateLimitOptions struct {
	Enabled   bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	GlobalRPS int    `env:"RATE_LIMIT_GLOBAL_RPS" envDefault:"1000"`
	Storage   string `env:"RATE_LIMIT_STORAGE" envDefault:"memory"` // memory or redis
	RedisURL  string `env:"RATE_LIMIT_REDIS_URL"`
}

// Validate checks the rate limit configuration for errors
func (r *RateLimitOptions) Validate() error {
	if r.GlobalRPS < 0 {
		return fmt.Errorf("rate limit GlobalRPS must be non-negative, got %d", r.GlobalRPS)
	}
	if r.GlobalRPS > 1000000 {
		return fmt.Errorf("rate limit GlobalRPS too high, maximum is 1,000,000, got %d", r.GlobalRPS)
	}
	if r.Storage != "memory" && r.Storage != "redis" {
		return fmt.Errorf("rate limit Storage must be 'memory' or 'redis', got '%s'", r.Storage)
	}
	if r.Storage == "redis" && r.RedisURL == "" {
		return fmt.Errorf("rate limit RedisURL is required when Storage is 'redis'")
	}
	return nil
}

type Configuration struct {
	Rentman       RentmanOptions
	Cache         CacheOptions
	Resolver      ResolverOptions
	OpenTelemetry OpenTelemetryOptions
	Prometheus    PrometheusOptions
	RateLimit     RateLimitOptions

	RedisURL         string `env:"REDIS_URL"`
	ServerPort       int    `env:"PORT" envDefault:"3200"`
	GoAppEnvironment string `env:"GO_APP_ENV" envDefault:"development"`
	SocketAddress    string `env:"-"`
	AllowedOrigins   string `env:"ALLOWED_ORIGINS" envDefault:"*"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"error"`
	LogPath          string `env:"LOG_PATH" envDefault:"./logs/app.log"`
	WarmupDefaultTag string `env:"WARMUP_DEFAULT_TAG" envDefault:"Tekniker"`
	// Looked up on every request; generated as a uuidv4 when absent.
	RequestIDHeader string `env:"REQUEST_ID_HEADER" envDefault:"X-Request-ID"`
	// Looked up on every request; request.RemoteAddr is used when absent.
	RealIPHeader string `env:"REAL_IP_HEADER" envDefault:"X-Real-IP"`

	// Admin endpoints guard (/api/cache*, /api/warmup). Open when no token is set.
	OpsGuardToken string `env:"OPS_GUARD_TOKEN" envDefault:""`
	// Comma-separated CIDRs allowed without a token, e.g. "10.0.0.0/8,127.0.0.1/32".
	OpsGuardCIDRs string `env:"OPS_GUARD_CIDRS" envDefault:""`

	logFile *os.File
	logger  *logrus.Logger
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

func (c *Configuration) LogrusLogLevel() logrus.Level {
	switch c.LogLevel {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.ErrorLevel
	}
}

// Origins splits ALLOWED_ORIGINS on commas.
func (c *Configuration) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func Use() *Configuration {
	return singleton()
}

// Load parses the environment into a fresh configuration without touching the
// process-wide singleton.
func Load(envFiles ...string) (*Configuration, error) {
	c := &Configuration{}
	if err := c.load(envFiles); err != nil {
		c.Unload()
		return nil, err
	}
	return c, nil
}

func (c *Configuration) load(envFiles []string) error {
	n, err := LoadEnv(envFiles)
	if err != nil {
		return err
	}
	if n == 0 && len(envFiles) > 0 {
		wd, _ := os.Getwd()
		log.Println("No .env files found. Tried:")
		for _, file := range envFiles {
			log.Println(filepath.Join(wd, file))
		}
	}
	if err := env.Parse(c); err != nil {
		return err
	}
	if err := c.validate(); err != nil {
		return err
	}

	f, logger, err := logging.FileLogger(c.LogrusLogLevel(), c.LogPath)
	if err != nil {
		return err
	}
	c.logFile = f
	c.logger = logger

	if c.GoAppEnvironment == Production {
		c.SocketAddress = fmt.Sprintf(":%d", c.ServerPort)
	} else {
		c.SocketAddress = fmt.Sprintf("localhost:%d", c.ServerPort)
	}
	return nil
}

func (c *Configuration) validate() error {
	if err := c.Rentman.Validate(); err != nil {
		return fmt.Errorf("rentman configuration error: %w", err)
	}
	if err := c.Cache.Validate(c.RedisURL); err != nil {
		return fmt.Errorf("cache configuration error: %w", err)
	}
	if err := c.Resolver.Validate(); err != nil {
		return fmt.Errorf("resolver configuration error: %w", err)
	}
	if err := c.RateLimit.Validate(); err != nil {
		return fmt.Errorf("rate limit configuration error: %w", err)
	}
	return nil
}

// Unload handles a graceful shutdown.
func (c *Configuration) Unload() {
	if c.logFile != nil {
		if err := c.logFile.Close(); err != nil {
			log.Printf("Failed to close log file: %v", err)
		}
	}
}
