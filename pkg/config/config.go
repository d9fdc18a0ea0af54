package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Search       SearchConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"AISLA_APP_ENV" required:"true"`
	Port         string `envconfig:"AISLA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"AISLA_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"AISLA_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"AISLA_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"AISLA_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"AISLA_DB_DSN"`
	Driver string `envconfig:"AISLA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"AISLA_DB_HOST"`
	LegacyPort     int    `envconfig:"AISLA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"AISLA_DB_USER"`
	LegacyPassword string `envconfig:"AISLA_DB_PASSWORD"`
	LegacyName     string `envconfig:"AISLA_DB_NAME"`
	LegacySSLMode  string `envconfig:"AISLA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"AISLA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AISLA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AISLA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AISLA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is the embedded sqlite backend.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DriverSQLite)
}

// RedisConfig is optional; an empty URL and address disables the result cache.
type RedisConfig struct {
	URL          string        `envconfig:"AISLA_REDIS_URL"`
	Address      string        `envconfig:"AISLA_REDIS_ADDR"`
	Password     string        `envconfig:"AISLA_REDIS_PASSWORD"`
	DB           int           `envconfig:"AISLA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AISLA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AISLA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AISLA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AISLA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AISLA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type SearchConfig struct {
	DefaultLimit         int           `envconfig:"AISLA_SEARCH_DEFAULT_LIMIT" default:"10"`
	MaxLimit             int           `envconfig:"AISLA_SEARCH_MAX_LIMIT" default:"100"`
	InteractiveMaxLimit  int           `envconfig:"AISLA_SEARCH_INTERACTIVE_MAX_LIMIT" default:"20"`
	ExpiringSoonDays     int           `envconfig:"AISLA_SEARCH_EXPIRING_SOON_DAYS" default:"7"`
	CacheTTL             time.Duration `envconfig:"AISLA_SEARCH_CACHE_TTL" default:"0s"`
	ErrorMessage         string        `envconfig:"AISLA_SEARCH_ERROR_MESSAGE" default:"상품 목록을 불러오는 중 오류가 발생했습니다."`
	InvalidParamsMessage string        `envconfig:"AISLA_SEARCH_INVALID_PARAMS_MESSAGE" default:"잘못된 검색 조건입니다."`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"AISLA_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
