package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Timetable TimetableConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

type JWTConfig struct {
	Secret string
	Issuer string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// TimetableConfig governs the weekly timetable generator.
type TimetableConfig struct {
	Enabled         bool
	SectionLockTTL  time.Duration
	CacheTTL        time.Duration
	RunTTL          time.Duration
	Workers         int
	WorkerRetries   int
	GenerateTimeout time.Duration

	DefaultMaxConsecutive     int
	DefaultMaxSubjectPerDay   int
	DefaultMaxTeacherPerDay   int
	DefaultBalanceSubjectDist bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),

		ConnMaxLifetime: parseDuration(v.GetString("DB_CONN_MAX_LIFETIME"), time.Hour),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
		PoolSize: v.GetInt("REDIS_POOL_SIZE"),
	}

	cfg.JWT = JWTConfig{
		Secret: v.GetString("JWT_SECRET"),
		Issuer: v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Timetable = TimetableConfig{
		Enabled:                   v.GetBool("ENABLE_TIMETABLE_GENERATOR"),
		SectionLockTTL:            parseDuration(v.GetString("TIMETABLE_SECTION_LOCK_TTL"), 2*time.Minute),
		CacheTTL:                  parseDuration(v.GetString("TIMETABLE_CACHE_TTL"), 10*time.Minute),
		RunTTL:                    parseDuration(v.GetString("TIMETABLE_RUN_TTL"), 30*time.Minute),
		Workers:                   positiveOr(v.GetInt("TIMETABLE_WORKERS"), 2),
		WorkerRetries:             v.GetInt("TIMETABLE_WORKER_RETRIES"),
		GenerateTimeout:           parseDuration(v.GetString("TIMETABLE_GENERATE_TIMEOUT"), time.Minute),
		DefaultMaxConsecutive:     positiveOr(v.GetInt("TIMETABLE_DEFAULT_MAX_CONSECUTIVE"), 3),
		DefaultMaxSubjectPerDay:   positiveOr(v.GetInt("TIMETABLE_DEFAULT_MAX_SUBJECT_PER_DAY"), 2),
		DefaultMaxTeacherPerDay:   positiveOr(v.GetInt("TIMETABLE_DEFAULT_MAX_TEACHER_PER_DAY"), 6),
		DefaultBalanceSubjectDist: v.GetBool("TIMETABLE_DEFAULT_BALANCE_DISTRIBUTION"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "school_timetable")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "1h")

	v.SetDefault("REDIS_ENABLED", true)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_POOL_SIZE", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_TIMETABLE_GENERATOR", true)
	v.SetDefault("TIMETABLE_SECTION_LOCK_TTL", "2m")
	v.SetDefault("TIMETABLE_CACHE_TTL", "10m")
	v.SetDefault("TIMETABLE_RUN_TTL", "30m")
	v.SetDefault("TIMETABLE_WORKERS", 2)
	v.SetDefault("TIMETABLE_WORKER_RETRIES", 1)
	v.SetDefault("TIMETABLE_GENERATE_TIMEOUT", "1m")
	v.SetDefault("TIMETABLE_DEFAULT_MAX_CONSECUTIVE", 3)
	v.SetDefault("TIMETABLE_DEFAULT_MAX_SUBJECT_PER_DAY", 2)
	v.SetDefault("TIMETABLE_DEFAULT_MAX_TEACHER_PER_DAY", 6)
	v.SetDefault("TIMETABLE_DEFAULT_BALANCE_DISTRIBUTION", true)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func positiveOr(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
