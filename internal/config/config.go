package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"drawlab/domain/draw"
	"drawlab/domain/result"
	"drawlab/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Engine   EngineConfig
	Database DatabaseConfig
	Server   ServerConfig
	Feed     FeedConfig
	Logging  LoggingConfig
}

// EngineConfig holds every knob the analysis engine recognizes
type EngineConfig struct {
	K               int
	N               int
	TargetCount     int
	BlockSize       int
	MaxAttempts     int
	SumTolerance    float64
	ParityTolerance float64
	BiasStrength    float64
	Seed            int64
	ZThreshold      float64
}

// DatabaseConfig selects where finished runs are stored
type DatabaseConfig struct {
	Driver string // postgres, sqlite3 or memory
	URL    string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port                  string
	APIPort               string
	GinMode               string
	MaxConcurrentAnalyses int64
	MaxUploadBytes        int64
	ShutdownTimeout       time.Duration
}

// FeedConfig points at a remote JSON results feed
type FeedConfig struct {
	URL          string
	DataPath     string
	NumbersField string
	OrderField   string
	NewestFirst  bool
	AuthMethod   string // none, bearer or api_key
	AuthToken    string
	Timeout      time.Duration
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string
	Pretty bool
}

// Upper bounds on request-controlled engine settings. Generation cost grows
// with N times the attempt budget.
const (
	MaxNumberLimit  = 100
	MaxAttemptLimit = 1_000_000
)

// DefaultEngineConfig returns the defaults for a 15-of-25 lottery.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		K:               15,
		N:               25,
		TargetCount:     10,
		BlockSize:       3,
		MaxAttempts:     10000,
		SumTolerance:    10,
		ParityTolerance: 2,
		BiasStrength:    1.0,
		Seed:            42,
		ZThreshold:      2.0,
	}
}

// Rules returns the draw shape.
func (e EngineConfig) Rules() draw.Rules {
	return draw.Rules{K: e.K, N: e.N}
}

// Settings returns the echo stored in result bundles.
func (e EngineConfig) Settings() result.Settings {
	return result.Settings{
		K:               e.K,
		N:               e.N,
		TargetCount:     e.TargetCount,
		BlockSize:       e.BlockSize,
		MaxAttempts:     e.MaxAttempts,
		SumTolerance:    e.SumTolerance,
		ParityTolerance: e.ParityTolerance,
		BiasStrength:    e.BiasStrength,
		Seed:            e.Seed,
		ZThreshold:      e.ZThreshold,
	}
}

// Validate checks the engine configuration
func (e EngineConfig) Validate() error {
	if err := e.Rules().Validate(); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	switch {
	case e.N > MaxNumberLimit:
		return errors.ConfigInvalid(fmt.Sprintf("max number N must be at most %d, got %d", MaxNumberLimit, e.N))
	case e.MaxAttempts > MaxAttemptLimit:
		return errors.ConfigInvalid(fmt.Sprintf("max generation attempts must be at most %d, got %d", MaxAttemptLimit, e.MaxAttempts))
	case e.TargetCount < 1:
		return errors.ConfigInvalid(fmt.Sprintf("candidate count must be at least 1, got %d", e.TargetCount))
	case e.BlockSize < 1:
		return errors.ConfigInvalid(fmt.Sprintf("block size must be at least 1, got %d", e.BlockSize))
	case e.MaxAttempts < e.TargetCount:
		return errors.ConfigInvalid(fmt.Sprintf("max generation attempts (%d) must be at least the candidate count (%d)", e.MaxAttempts, e.TargetCount))
	case e.SumTolerance < 0 || e.ParityTolerance < 0:
		return errors.ConfigInvalid("tolerance bands must not be negative")
	case e.BiasStrength < 0:
		return errors.ConfigInvalid("bias strength must not be negative")
	case e.ZThreshold <= 0:
		return errors.ConfigInvalid("z threshold must be positive")
	}
	return nil
}

// Overrides carries optional per-request changes to the engine config.
// Nil fields keep the configured value.
type Overrides struct {
	K               *int     `json:"k,omitempty" form:"k"`
	N               *int     `json:"n,omitempty" form:"n"`
	TargetCount     *int     `json:"target_count,omitempty" form:"target_count"`
	BlockSize       *int     `json:"block_size,omitempty" form:"block_size"`
	MaxAttempts     *int     `json:"max_attempts,omitempty" form:"max_attempts"`
	SumTolerance    *float64 `json:"sum_tolerance,omitempty" form:"sum_tolerance"`
	ParityTolerance *float64 `json:"parity_tolerance,omitempty" form:"parity_tolerance"`
	BiasStrength    *float64 `json:"bias_strength,omitempty" form:"bias_strength"`
	Seed            *int64   `json:"seed,omitempty" form:"seed"`
	ZThreshold      *float64 `json:"z_threshold,omitempty" form:"z_threshold"`
}

// Apply returns a copy of e with the overrides applied and validated.
func (e EngineConfig) Apply(o Overrides) (EngineConfig, error) {
	out := e
	if o.K != nil {
		out.K = *o.K
	}
	if o.N != nil {
		out.N = *o.N
	}
	if o.TargetCount != nil {
		out.TargetCount = *o.TargetCount
	}
	if o.BlockSize != nil {
		out.BlockSize = *o.BlockSize
	}
	if o.MaxAttempts != nil {
		out.MaxAttempts = *o.MaxAttempts
	}
	if o.SumTolerance != nil {
		out.SumTolerance = *o.SumTolerance
	}
	if o.ParityTolerance != nil {
		out.ParityTolerance = *o.ParityTolerance
	}
	if o.BiasStrength != nil {
		out.BiasStrength = *o.BiasStrength
	}
	if o.Seed != nil {
		out.Seed = *o.Seed
	}
	if o.ZThreshold != nil {
		out.ZThreshold = *o.ZThreshold
	}
	if err := out.Validate(); err != nil {
		return e, err
	}
	return out, nil
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	env := &envReader{}
	config := &Config{
		Engine:   loadEngineConfig(env),
		Database: loadDatabaseConfig(env),
		Server:   loadServerConfig(env),
		Feed:     loadFeedConfig(env),
		Logging:  loadLoggingConfig(env),
	}

	if err := env.err(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadEngineConfig(env *envReader) EngineConfig {
	d := DefaultEngineConfig()
	return EngineConfig{
		K:               env.Int("DRAW_SIZE", d.K),
		N:               env.Int("MAX_NUMBER", d.N),
		TargetCount:     env.Int("CANDIDATE_COUNT", d.TargetCount),
		BlockSize:       env.Int("BLOCK_SIZE", d.BlockSize),
		MaxAttempts:     env.Int("MAX_GENERATION_ATTEMPTS", d.MaxAttempts),
		SumTolerance:    env.Float("SUM_TOLERANCE", d.SumTolerance),
		ParityTolerance: env.Float("PARITY_TOLERANCE", d.ParityTolerance),
		BiasStrength:    env.Float("BIAS_STRENGTH", d.BiasStrength),
		Seed:            env.Int64("SEED", d.Seed),
		ZThreshold:      env.Float("Z_THRESHOLD", d.ZThreshold),
	}
}

func loadDatabaseConfig(env *envReader) DatabaseConfig {
	return DatabaseConfig{
		Driver: strings.ToLower(env.String("DATABASE_DRIVER", "memory")),
		URL:    env.String("DATABASE_URL", ""),
	}
}

func loadServerConfig(env *envReader) ServerConfig {
	return ServerConfig{
		Port:                  env.String("PORT", "8080"),
		APIPort:               env.String("API_PORT", "8081"),
		GinMode:               env.String("GIN_MODE", "release"),
		MaxConcurrentAnalyses: env.Int64("MAX_CONCURRENT_ANALYSES", 4),
		MaxUploadBytes:        env.Int64("MAX_UPLOAD_BYTES", 10<<20),
		ShutdownTimeout:       env.Duration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func loadFeedConfig(env *envReader) FeedConfig {
	token := env.String("FEED_AUTH_TOKEN", "")
	method := "none"
	if token != "" {
		method = "bearer"
	}
	return FeedConfig{
		URL:          env.String("FEED_URL", ""),
		DataPath:     env.String("FEED_DATA_PATH", ""),
		NumbersField: env.String("FEED_NUMBERS_FIELD", ""),
		OrderField:   env.String("FEED_ORDER_FIELD", ""),
		NewestFirst:  env.Bool("FEED_NEWEST_FIRST", false),
		AuthMethod:   strings.ToLower(env.String("FEED_AUTH_METHOD", method)),
		AuthToken:    token,
		Timeout:      env.Duration("FEED_TIMEOUT", 30*time.Second),
	}
}

func loadLoggingConfig(env *envReader) LoggingConfig {
	return LoggingConfig{
		Level:  env.String("LOG_LEVEL", "info"),
		Pretty: env.Bool("LOG_PRETTY", false),
	}
}

func validateConfig(config *Config) error {
	if err := config.Engine.Validate(); err != nil {
		return err
	}
	switch config.Database.Driver {
	case "memory":
	case "postgres", "sqlite3":
		if config.Database.URL == "" {
			return errors.ConfigInvalid(fmt.Sprintf("DATABASE_URL is required for driver %s", config.Database.Driver))
		}
	default:
		return errors.ConfigInvalid(fmt.Sprintf("unsupported DATABASE_DRIVER %q", config.Database.Driver))
	}
	if config.Server.MaxConcurrentAnalyses < 1 {
		return errors.ConfigInvalid("MAX_CONCURRENT_ANALYSES must be at least 1")
	}
	return nil
}

// envReader reads typed environment variables. Unset or blank variables take
// the default; values that do not parse are collected and reported by err.
type envReader struct {
	invalid []string
}

func (r *envReader) lookup(key string) (string, bool) {
	value := strings.TrimSpace(os.Getenv(key))
	return value, value != ""
}

func (r *envReader) fail(key, value, want string) {
	r.invalid = append(r.invalid, fmt.Sprintf("%s=%q is not %s", key, value, want))
}

func (r *envReader) err() error {
	if len(r.invalid) == 0 {
		return nil
	}
	return errors.ConfigInvalid(strings.Join(r.invalid, "; "))
}

func (r *envReader) String(key, defaultValue string) string {
	if value, ok := r.lookup(key); ok {
		return value
	}
	return defaultValue
}

func (r *envReader) Int(key string, defaultValue int) int {
	value, ok := r.lookup(key)
	if !ok {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		r.fail(key, value, "an integer")
		return defaultValue
	}
	return intValue
}

func (r *envReader) Int64(key string, defaultValue int64) int64 {
	value, ok := r.lookup(key)
	if !ok {
		return defaultValue
	}
	intValue, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		r.fail(key, value, "an integer")
		return defaultValue
	}
	return intValue
}

func (r *envReader) Float(key string, defaultValue float64) float64 {
	value, ok := r.lookup(key)
	if !ok {
		return defaultValue
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		r.fail(key, value, "a number")
		return defaultValue
	}
	return floatValue
}

func (r *envReader) Bool(key string, defaultValue bool) bool {
	value, ok := r.lookup(key)
	if !ok {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		r.fail(key, value, "a boolean")
		return defaultValue
	}
	return boolValue
}

func (r *envReader) Duration(key string, defaultValue time.Duration) time.Duration {
	value, ok := r.lookup(key)
	if !ok {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		r.fail(key, value, "a duration")
		return defaultValue
	}
	return duration
}
