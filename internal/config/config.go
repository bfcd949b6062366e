package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/club-roster/internal/domain/schedule"
	"github.com/riskibarqy/club-roster/internal/platform/logging"
	"github.com/riskibarqy/club-roster/internal/platform/resilience"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                     string
	ServiceName                string
	ServiceVersion             string
	HTTPAddr                   string
	ReadTimeout                time.Duration
	WriteTimeout               time.Duration
	CORSAllowedOrigins         []string
	SwaggerEnabled             bool
	LogLevel                   logging.Level
	LogFormat                  logging.Format
	StoreDriver                string
	DBURL                      string
	DBDisablePreparedBinary    bool
	StoreCircuit               resilience.CircuitBreakerConfig
	CacheEnabled               bool
	CacheTTL                   time.Duration
	Tenant                     string
	Schedule                   schedule.Schedule
	AwardJobEnabled            bool
	AwardJobInterval           time.Duration
	AwardJobLookbackDays       int
	LedgerMaxRetries           int
	AttendanceWorkers          int
	InternalJobToken           string
	PprofEnabled               bool
	PprofAddr                  string
	UptraceEnabled             bool
	UptraceDSN                 string
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	swaggerDefault := "true"
	logFormatDefault := string(logging.FormatConsole)
	if appEnv == EnvProd {
		swaggerDefault = "false"
		logFormatDefault = string(logging.FormatJSON)
	}

	swaggerEnabled, err := strconv.ParseBool(getEnv("SWAGGER_ENABLED", swaggerDefault))
	if err != nil {
		return Config{}, fmt.Errorf("parse SWAGGER_ENABLED: %w", err)
	}
	logFormat, err := parseLogFormat(getEnv("APP_LOG_FORMAT", logFormatDefault))
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := time.ParseDuration(getEnv("HTTP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse HTTP_READ_TIMEOUT: %w", err)
	}
	// The feed long-poll holds a request for up to 25s.
	writeTimeout, err := time.ParseDuration(getEnv("HTTP_WRITE_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse HTTP_WRITE_TIMEOUT: %w", err)
	}

	storeDriver := strings.ToLower(strings.TrimSpace(getEnv("STORE_DRIVER", StoreMemory)))
	dbURL := strings.TrimSpace(getEnv("DB_URL", ""))
	switch storeDriver {
	case StoreMemory:
	case StorePostgres:
		if dbURL == "" {
			return Config{}, fmt.Errorf("DB_URL is required when STORE_DRIVER=%s", StorePostgres)
		}
	default:
		return Config{}, fmt.Errorf("invalid STORE_DRIVER %q: valid values are %s, %s", storeDriver, StoreMemory, StorePostgres)
	}
	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}

	storeCircuit, err := loadStoreCircuit()
	if err != nil {
		return Config{}, err
	}

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "10m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}

	tenant := strings.TrimSpace(getEnv("TENANT", "default"))
	if strings.Contains(tenant, "/") {
		return Config{}, fmt.Errorf("TENANT must not contain '/'")
	}

	loc, err := time.LoadLocation(getEnv("SCHEDULE_TZ", "UTC"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SCHEDULE_TZ: %w", err)
	}
	sched, err := schedule.Parse(getEnv("SCHEDULE", "5=19:30"), loc)
	if err != nil {
		return Config{}, fmt.Errorf("parse SCHEDULE: %w", err)
	}

	awardJobEnabled, err := strconv.ParseBool(getEnv("AWARD_JOB_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse AWARD_JOB_ENABLED: %w", err)
	}
	awardJobInterval, err := time.ParseDuration(getEnv("AWARD_JOB_INTERVAL", "5m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse AWARD_JOB_INTERVAL: %w", err)
	}
	if awardJobInterval <= 0 {
		return Config{}, fmt.Errorf("AWARD_JOB_INTERVAL must be > 0")
	}
	awardJobLookbackDays, err := getEnvAsInt("AWARD_JOB_LOOKBACK_DAYS", 7)
	if err != nil {
		return Config{}, fmt.Errorf("parse AWARD_JOB_LOOKBACK_DAYS: %w", err)
	}
	if awardJobLookbackDays < 1 {
		return Config{}, fmt.Errorf("AWARD_JOB_LOOKBACK_DAYS must be >= 1")
	}

	ledgerMaxRetries, err := getEnvAsInt("LEDGER_MAX_RETRIES", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse LEDGER_MAX_RETRIES: %w", err)
	}
	if ledgerMaxRetries < 1 {
		return Config{}, fmt.Errorf("LEDGER_MAX_RETRIES must be >= 1")
	}
	attendanceWorkers, err := getEnvAsInt("ATTENDANCE_WORKERS", 8)
	if err != nil {
		return Config{}, fmt.Errorf("parse ATTENDANCE_WORKERS: %w", err)
	}
	if attendanceWorkers < 1 {
		return Config{}, fmt.Errorf("ATTENDANCE_WORKERS must be >= 1")
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	cfg := Config{
		AppEnv:                     appEnv,
		ServiceName:                getEnv("SERVICE_NAME", "club-roster-api"),
		ServiceVersion:             getEnv("SERVICE_VERSION", "dev"),
		HTTPAddr:                   getEnv("HTTP_ADDR", ":8080"),
		ReadTimeout:                readTimeout,
		WriteTimeout:               writeTimeout,
		CORSAllowedOrigins:         splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		SwaggerEnabled:             swaggerEnabled,
		LogLevel:                   parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
		LogFormat:                  logFormat,
		StoreDriver:                storeDriver,
		DBURL:                      dbURL,
		DBDisablePreparedBinary:    dbDisablePreparedBinary,
		StoreCircuit:               storeCircuit,
		CacheEnabled:               cacheEnabled,
		CacheTTL:                   cacheTTL,
		Tenant:                     tenant,
		Schedule:                   sched,
		AwardJobEnabled:            awardJobEnabled,
		AwardJobInterval:           awardJobInterval,
		AwardJobLookbackDays:       awardJobLookbackDays,
		LedgerMaxRetries:           ledgerMaxRetries,
		AttendanceWorkers:          attendanceWorkers,
		InternalJobToken:           strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),
		PprofEnabled:               pprofEnabled,
		PprofAddr:                  pprofAddr,
		UptraceEnabled:             uptraceEnabled,
		UptraceDSN:                 uptraceDSN,
		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	return cfg, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func parseLogFormat(v string) (logging.Format, error) {
	switch logging.Format(strings.ToLower(strings.TrimSpace(v))) {
	case logging.FormatJSON:
		return logging.FormatJSON, nil
	case logging.FormatConsole:
		return logging.FormatConsole, nil
	default:
		return "", fmt.Errorf("invalid APP_LOG_FORMAT %q: valid values are %s, %s", v, logging.FormatJSON, logging.FormatConsole)
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

// loadStoreCircuit reads STORE_CIRCUIT_* on top of the resilience defaults.
func loadStoreCircuit() (resilience.CircuitBreakerConfig, error) {
	cfg := resilience.DefaultCircuitBreakerConfig()

	enabled, err := strconv.ParseBool(getEnv("STORE_CIRCUIT_ENABLED", strconv.FormatBool(cfg.Enabled)))
	if err != nil {
		return cfg, fmt.Errorf("parse STORE_CIRCUIT_ENABLED: %w", err)
	}
	cfg.Enabled = enabled
	if cfg.FailureThreshold, err = getEnvAsInt("STORE_CIRCUIT_FAILURE_COUNT", cfg.FailureThreshold); err != nil {
		return cfg, fmt.Errorf("parse STORE_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if cfg.OpenTimeout, err = time.ParseDuration(getEnv("STORE_CIRCUIT_OPEN_TIMEOUT", cfg.OpenTimeout.String())); err != nil {
		return cfg, fmt.Errorf("parse STORE_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if cfg.HalfOpenMaxReq, err = getEnvAsInt("STORE_CIRCUIT_HALF_OPEN_MAX_REQ", cfg.HalfOpenMaxReq); err != nil {
		return cfg, fmt.Errorf("parse STORE_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid STORE_CIRCUIT_*: %w", err)
	}
	return cfg, nil
}
