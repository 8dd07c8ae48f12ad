package config

import (
	"errors"
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
	CORS      CORSConfig
	Log       LogConfig
	Scheduler SchedulerConfig
	Jobs      JobsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SchedulerConfig tunes the constraint-based timetable engine. Soft-constraint
// weights are configuration rather than code so their precedence can be
// adjusted without a release.
type SchedulerConfig struct {
	RunBudget           time.Duration
	BacktrackMultiplier int
	CompactorMaxPasses  int
	LockTTL             time.Duration

	WeightCompactness  float64
	WeightTeacherBreak float64
	WeightDaySpread    float64

	AllowLabFallback    bool
	ThesisDay           string
	FridayPracticalCap  int
	FridayTheoryCap     int
	DayTailCap          int
	SeniorSemesterFloor int
}

// JobsConfig controls the asynchronous generation worker pool.
type JobsConfig struct {
	Enabled    bool
	Workers    int
	BufferSize int
	ResultTTL  time.Duration
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
		if !errors.As(err, &notFound) {
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
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Scheduler = SchedulerConfig{
		RunBudget:           parseDuration(v.GetString("SCHEDULER_RUN_BUDGET"), 2*time.Minute),
		BacktrackMultiplier: v.GetInt("SCHEDULER_BACKTRACK_MULTIPLIER"),
		CompactorMaxPasses:  v.GetInt("SCHEDULER_COMPACTOR_MAX_PASSES"),
		LockTTL:             parseDuration(v.GetString("SCHEDULER_LOCK_TTL"), 5*time.Minute),
		WeightCompactness:   v.GetFloat64("SCHEDULER_WEIGHT_COMPACTNESS"),
		WeightTeacherBreak:  v.GetFloat64("SCHEDULER_WEIGHT_TEACHER_BREAK"),
		WeightDaySpread:     v.GetFloat64("SCHEDULER_WEIGHT_DAY_SPREAD"),
		AllowLabFallback:    v.GetBool("SCHEDULER_ALLOW_LAB_FALLBACK"),
		ThesisDay:           v.GetString("SCHEDULER_THESIS_DAY"),
		FridayPracticalCap:  v.GetInt("SCHEDULER_FRIDAY_PRACTICAL_CAP"),
		FridayTheoryCap:     v.GetInt("SCHEDULER_FRIDAY_THEORY_CAP"),
		DayTailCap:          v.GetInt("SCHEDULER_DAY_TAIL_CAP"),
		SeniorSemesterFloor: v.GetInt("SCHEDULER_SENIOR_SEMESTER_FLOOR"),
	}

	cfg.Jobs = JobsConfig{
		Enabled:    v.GetBool("JOBS_ENABLED"),
		Workers:    v.GetInt("JOBS_WORKERS"),
		BufferSize: v.GetInt("JOBS_BUFFER_SIZE"),
		ResultTTL:  parseDuration(v.GetString("JOBS_RESULT_TTL"), time.Hour),
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
	v.SetDefault("DB_NAME", "dept_timetable")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SCHEDULER_RUN_BUDGET", "2m")
	v.SetDefault("SCHEDULER_BACKTRACK_MULTIPLIER", 4)
	v.SetDefault("SCHEDULER_COMPACTOR_MAX_PASSES", 12)
	v.SetDefault("SCHEDULER_LOCK_TTL", "5m")
	v.SetDefault("SCHEDULER_WEIGHT_COMPACTNESS", 3.0)
	v.SetDefault("SCHEDULER_WEIGHT_TEACHER_BREAK", 2.0)
	v.SetDefault("SCHEDULER_WEIGHT_DAY_SPREAD", 1.5)
	v.SetDefault("SCHEDULER_ALLOW_LAB_FALLBACK", true)
	v.SetDefault("SCHEDULER_THESIS_DAY", "WEDNESDAY")
	v.SetDefault("SCHEDULER_FRIDAY_PRACTICAL_CAP", 4)
	v.SetDefault("SCHEDULER_FRIDAY_THEORY_CAP", 3)
	v.SetDefault("SCHEDULER_DAY_TAIL_CAP", 5)
	v.SetDefault("SCHEDULER_SENIOR_SEMESTER_FLOOR", 7)

	v.SetDefault("JOBS_ENABLED", false)
	v.SetDefault("JOBS_WORKERS", 1)
	v.SetDefault("JOBS_BUFFER_SIZE", 8)
	v.SetDefault("JOBS_RESULT_TTL", "1h")
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
