package config

import (
	"testing"
	"time"

	"github.com/riskibarqy/volleystats/internal/boxscore"
	"github.com/riskibarqy/volleystats/internal/platform/logging"
)

func TestLoad_RejectsInvalidEnv(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown app env", env: map[string]string{"APP_ENV": "invalid"}},
		{name: "uptrace without dsn", env: map[string]string{"UPTRACE_ENABLED": "true", "UPTRACE_DSN": "", "OTEL_EXPORTER_OTLP_HEADERS": ""}},
		{name: "pyroscope without server", env: map[string]string{"PYROSCOPE_ENABLED": "true", "PYROSCOPE_SERVER_ADDRESS": ""}},
		{name: "pprof flag not bool", env: map[string]string{"PPROF_ENABLED": "maybe"}},
		{name: "redis without url", env: map[string]string{"REDIS_ENABLED": "true", "REDIS_URL": ""}},
		{name: "swagger flag not bool", env: map[string]string{"SWAGGER_ENABLED": "sometimes"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("APP_ENV", EnvDev)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for env %v", tc.env)
			}
		})
	}
}

func TestLoad_SwaggerDefaultsByEnv(t *testing.T) {
	for env, want := range map[string]bool{EnvDev: true, EnvStage: true, EnvProd: false} {
		t.Run(env, func(t *testing.T) {
			t.Setenv("APP_ENV", env)
			t.Setenv("UPTRACE_ENABLED", "false")
			t.Setenv("SWAGGER_ENABLED", "")

			cfg, err := Load()
			if err != nil {
				t.Fatalf("load config: %v", err)
			}
			if cfg.SwaggerEnabled != want {
				t.Fatalf("unexpected SwaggerEnabled for %s: got=%v want=%v", env, cfg.SwaggerEnabled, want)
			}
		})
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("APP_SERVICE_NAME", "volleystats-api-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "volleystats-api-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_APITokenAndLogLevel(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "  ")
	t.Setenv("APP_API_TOKEN", "  s3cret ")
	t.Setenv("APP_LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.APIToken != "s3cret" {
		t.Fatalf("unexpected api token: %q", cfg.APIToken)
	}
	if cfg.LogLevel != logging.LevelDebug {
		t.Fatalf("unexpected log level: got=%v want=debug", cfg.LogLevel)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("expected blank PPROF_ADDR to fall back to :6060, got %q", cfg.PprofAddr)
	}
}

func TestLoad_CORSOriginsDefaultAndParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default wildcard", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
			t.Fatalf("unexpected default CORS origins: %+v", cfg.CORSAllowedOrigins)
		}
	})

	t.Run("comma separated parsing", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, http://localhost:5173 ")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 2 {
			t.Fatalf("unexpected CORS origins length: %d", len(cfg.CORSAllowedOrigins))
		}
		if cfg.CORSAllowedOrigins[0] != "https://a.example.com" {
			t.Fatalf("unexpected first CORS origin: %s", cfg.CORSAllowedOrigins[0])
		}
		if cfg.CORSAllowedOrigins[1] != "http://localhost:5173" {
			t.Fatalf("unexpected second CORS origin: %s", cfg.CORSAllowedOrigins[1])
		}
	})
}

func TestLoad_DBDisablePreparedBinaryResultParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default true", func(t *testing.T) {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.DBDisablePreparedBinary {
			t.Fatalf("expected DBDisablePreparedBinary=true by default")
		}
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "not-bool")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid DB_DISABLE_PREPARED_BINARY_RESULT")
		}
	})
}

func TestLoad_CacheConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("CACHE_ENABLED", "")
		t.Setenv("CACHE_TTL", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.CacheEnabled {
			t.Fatalf("expected cache enabled by default")
		}
		if cfg.CacheTTL != 30*time.Minute {
			t.Fatalf("unexpected default cache ttl: %s", cfg.CacheTTL)
		}
	})

	t.Run("invalid ttl", func(t *testing.T) {
		t.Setenv("CACHE_TTL", "bad")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid CACHE_TTL")
		}
	})
}

func TestLoad_RedisRequiresURLWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_URL", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when REDIS_ENABLED=true without REDIS_URL")
	}
}

func TestLoad_StatsFeedConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.StatsTimeout != 30*time.Second {
			t.Fatalf("unexpected stats timeout: got=%s want=30s", cfg.StatsTimeout)
		}
		if cfg.StatsMaxRetries != 2 {
			t.Fatalf("unexpected stats retries: got=%d want=2", cfg.StatsMaxRetries)
		}
		if !cfg.StatsCircuitEnabled {
			t.Fatalf("expected stats circuit breaker enabled by default")
		}
		if cfg.WorkerCount != 4 || cfg.CSVWorkerCount != 8 {
			t.Fatalf("unexpected worker counts: got=%d/%d want=4/8", cfg.WorkerCount, cfg.CSVWorkerCount)
		}
	})

	t.Run("explicit values", func(t *testing.T) {
		t.Setenv("STATS_TIMEOUT", "5s")
		t.Setenv("STATS_REQUESTS_PER_SECOND", "0.5")
		t.Setenv("STATS_MAX_RETRIES", "0")
		t.Setenv("OVERRIDES_PATH", " overrides/manual.json ")
		t.Setenv("CSV_DIR", "exports")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.StatsTimeout != 5*time.Second {
			t.Fatalf("unexpected stats timeout: %s", cfg.StatsTimeout)
		}
		if cfg.StatsRequestsPerSecond != 0.5 {
			t.Fatalf("unexpected stats rate: %v", cfg.StatsRequestsPerSecond)
		}
		if cfg.StatsMaxRetries != 0 {
			t.Fatalf("unexpected stats retries: %d", cfg.StatsMaxRetries)
		}
		if cfg.OverridesPath != "overrides/manual.json" || cfg.CSVDir != "exports" {
			t.Fatalf("unexpected paths: overrides=%q csv=%q", cfg.OverridesPath, cfg.CSVDir)
		}
	})

	t.Run("invalid worker count", func(t *testing.T) {
		t.Setenv("WORKER_COUNT", "0")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for WORKER_COUNT=0")
		}
	})
}

func TestLoad_GlueBounds(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if got, want := cfg.GlueBounds(), boxscore.DefaultGlueBounds(); got != want {
			t.Fatalf("unexpected glue bounds: got=%+v want=%+v", got, want)
		}
	})

	t.Run("override", func(t *testing.T) {
		t.Setenv("GLUE_ATTACK_POINTS_MAX", "99")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.GlueBounds().AttackPointsMax != 99 {
			t.Fatalf("unexpected attack points bound: got=%d want=99", cfg.GlueBounds().AttackPointsMax)
		}
	})

	t.Run("non positive", func(t *testing.T) {
		t.Setenv("GLUE_SERVE_ERRORS_MAX", "-1")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for negative GLUE_SERVE_ERRORS_MAX")
		}
	})
}
