// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	apperrors "human1-sdk/internal/common/errors"
	"human1-sdk/internal/common/env"
)

// Options tunes how Load discovers files.
type Options struct {
	Env        env.Options
	ConfigFile string // explicit config file, skips the search
	ConfigDirs []string
}

// Loader keeps the viper instance behind a loaded Config so it can be watched.
type Loader struct {
	v         *viper.Viper
	EnvResult env.Result
}

// Load reads configuration with the default search options.
func Load() (*Config, error) {
	cfg, _, err := LoadWithOptions(Options{})
	return cfg, err
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	cfg, _, err := LoadWithOptions(Options{ConfigFile: path})
	return cfg, err
}

// LoadWithOptions runs the env loader, then layers config.yaml,
// config.<APP_ENVIRONMENT>.yaml and environment variables.
func LoadWithOptions(opts Options) (*Config, *Loader, error) {
	envOpts := opts.Env
	if envOpts.CustomPath == "" {
		envOpts.CustomPath = os.Getenv("HUMAN1_ENV_PATH")
	}
	if envOpts.Profile == "" {
		envOpts.Profile = os.Getenv("HUMAN1_ENV_PROFILE")
	}
	if rootDir := findProjectRoot(); rootDir != "" {
		envOpts.AdditionalPaths = append(envOpts.AdditionalPaths, filepath.Join(rootDir, env.DefaultFileName))
	}
	envResult := env.Load(envOpts)
	if !envResult.Success {
		return nil, nil, envResult.Err
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, nil, fmt.Errorf("failed to read config file %s: %w", opts.ConfigFile, err)
		}
	} else {
		v.SetConfigName("config")
		dirs := opts.ConfigDirs
		if len(dirs) == 0 {
			dirs = []string{"./configs", "../../configs", "."}
		}
		for _, dir := range dirs {
			v.AddConfigPath(dir)
		}

		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, nil, fmt.Errorf("error reading base config: %w", err)
			}
		}

		environment := os.Getenv("APP_ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}
		v.SetConfigName(fmt.Sprintf("config.%s", environment))
		_ = v.MergeInConfig()
	}

	expandEnvVars(v)

	cfg, err := decode(v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, &Loader{v: v, EnvResult: envResult}, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Watch re-decodes the config file whenever it changes on disk and hands the
// result to onChange. Decode failures are passed as the error.
func (l *Loader) Watch(onChange func(*Config, error)) {
	if l == nil || l.v == nil || l.v.ConfigFileUsed() == "" {
		return
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		if e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
			return
		}
		expandEnvVars(l.v)
		onChange(decode(l.v))
	})
	l.v.WatchConfig()
}

// ConfigFileUsed returns the path of the file that was read, if any.
func (l *Loader) ConfigFileUsed() string {
	if l == nil || l.v == nil {
		return ""
	}
	return l.v.ConfigFileUsed()
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			if expanded := os.ExpandEnv(strVal); expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// Direct override if config values are still empty after expansion
func overrideEmptyConfig(cfg *Config) {
	pg := &cfg.Database.Postgres
	if pg.Host == "" {
		pg.Host = env.FirstNonEmpty("DB_HOST")
	}
	if pg.Database == "" {
		pg.Database = env.FirstNonEmpty("DB_NAME")
	}
	if pg.User == "" {
		pg.User = env.FirstNonEmpty("PG_USER", "DB_USER")
	}
	if pg.Password == "" {
		pg.Password = env.FirstNonEmpty("PG_PW", "DB_PASSWORD")
	}
	if port, err := strconv.Atoi(env.FirstNonEmpty("DB_PORT")); err == nil && port > 0 {
		pg.Port = port
	}

	if cfg.Database.Redis.Address == "" {
		cfg.Database.Redis.Address = env.FirstNonEmpty("REDIS_ADDRESS")
	}

	if cfg.Oracle.APIKey == "" {
		switch cfg.Oracle.Provider {
		case "gemini":
			cfg.Oracle.APIKey = env.FirstNonEmpty("GEMINI_API_KEY", "GOOGLE_API_KEY")
		default:
			cfg.Oracle.APIKey = env.FirstNonEmpty("OPENAI_API_KEY", "OPEN_AI_KEY")
		}
	}

	if port, err := strconv.Atoi(env.FirstNonEmpty("PORT")); err == nil && port > 0 {
		cfg.Server.Port = port
	}

	if cfg.Server.Auth.JWTSecret == "" {
		cfg.Server.Auth.JWTSecret = env.FirstNonEmpty("HUMAN1_JWT_SECRET")
	}
}

// setDefaults registers defaults for numeric settings where an explicit zero
// is meaningful. Viper only falls back to them when the key is absent.
func setDefaults(v *viper.Viper) {
	v.SetDefault("database.postgres.max_connections", 25)
	v.SetDefault("database.postgres.max_idle", 5)
	v.SetDefault("oracle.temperature", 0.5)
	v.SetDefault("oracle.timeout", 30000)
	v.SetDefault("oracle.max_retries", 2)
	v.SetDefault("oracle.max_rows", 1000)
	v.SetDefault("oracle.cache_ttl", 600)
	v.SetDefault("query.timeout", 60000)
	v.SetDefault("tracing.sample_ratio", 1.0)
}

// applyDefaults fills optional fields whose zero value is never usable
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "human1-sdk"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3001
	}
	if cfg.Server.BasePath == "" {
		cfg.Server.BasePath = "/api"
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = []string{"*"}
	}

	// Database defaults
	if cfg.Database.Postgres.Driver == "" {
		cfg.Database.Postgres.Driver = "postgres"
	}
	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	// Oracle defaults
	if cfg.Oracle.Provider == "" {
		cfg.Oracle.Provider = "openai"
	}
	if cfg.Oracle.Model == "" {
		if cfg.Oracle.Provider == "gemini" {
			cfg.Oracle.Model = "gemini-2.0-flash"
		} else {
			cfg.Oracle.Model = "gpt-4o"
		}
	}
	if cfg.Oracle.BaseURL == "" && cfg.Oracle.Provider == "openai" {
		cfg.Oracle.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Oracle.MaxTokens == 0 {
		cfg.Oracle.MaxTokens = 500
	}
	if cfg.Oracle.SchemaSource == "" {
		cfg.Oracle.SchemaSource = "static"
	}

	if cfg.Query.DefaultFormat == "" {
		cfg.Query.DefaultFormat = "table"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	switch cfg.Database.Postgres.Driver {
	case "postgres", "pgx":
	default:
		return fmt.Errorf("database.postgres.driver must be postgres or pgx, got %q", cfg.Database.Postgres.Driver)
	}

	switch cfg.Oracle.Provider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("oracle.provider must be openai or gemini, got %q", cfg.Oracle.Provider)
	}

	switch cfg.Oracle.SchemaSource {
	case "static", "live":
	default:
		return fmt.Errorf("oracle.schema_source must be static or live, got %q", cfg.Oracle.SchemaSource)
	}

	switch cfg.Query.DefaultFormat {
	case "table", "paragraph":
	default:
		return fmt.Errorf("query.default_format must be table or paragraph, got %q", cfg.Query.DefaultFormat)
	}

	if cfg.Server.Auth.Enabled && cfg.Server.Auth.JWTSecret == "" {
		return fmt.Errorf("server.auth.jwt_secret is required when auth is enabled")
	}

	if cfg.Oracle.MaxRows < 0 {
		return fmt.Errorf("oracle.max_rows must not be negative")
	}

	return nil
}

// Validate checks that the settings needed to answer queries are present and
// reports every missing key at once. Serving without them is pointless, so
// callers treat this as fatal.
func (c *Config) Validate() error {
	var missing []string
	if c.Database.Postgres.Host == "" {
		missing = append(missing, "database.postgres.host")
	}
	if c.Database.Postgres.Database == "" {
		missing = append(missing, "database.postgres.database")
	}
	if c.Database.Postgres.User == "" {
		missing = append(missing, "database.postgres.user")
	}
	if c.Oracle.APIKey == "" {
		missing = append(missing, "oracle.api_key")
	}
	if len(missing) > 0 {
		return apperrors.NewEnvironmentError(missing)
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
