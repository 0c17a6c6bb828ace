package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type CacheCfg struct {
	Enabled    bool
	Driver     string
	RedisAddr  string
	RedisPool  int
	MemorySize int
	TTL        time.Duration
	OpTimeout  time.Duration
}

type InvalidationCfg struct {
	Enabled bool
	Topic   string
	Brokers string
	GroupID string
}

type H3Cfg struct {
	Enabled  bool
	Res      int
	MaxCells int
}

type MetricsCfg struct {
	Enabled bool
	Addr    string
	Path    string
}

type Config struct {
	Addr          string
	LogLevel      string
	LogConsole    bool
	LogSampleN    int
	CatalogPath   string
	SchemaBaseURL string
	CRSCacheSize  int
	Cache         CacheCfg
	Invalidation  InvalidationCfg
	H3            H3Cfg
	Metrics       MetricsCfg
}

const (
	CacheDriverRedis  = "redis"
	CacheDriverMemory = "memory"
)

func FromEnv() Config {
	res := getint("H3_RES", 5)
	if res < 0 {
		res = 0
	}
	if res > 15 {
		res = 15
	}

	driver := strings.ToLower(getenv("CACHE_DRIVER", CacheDriverRedis))
	if driver != CacheDriverMemory {
		driver = CacheDriverRedis
	}

	return Config{
		Addr:          getenv("ADDR", ":8090"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		LogConsole:    getbool("LOG_CONSOLE", false),
		LogSampleN:    getint("LOG_SAMPLE_N", 0),
		CatalogPath:   getenv("CATALOG_PATH", "catalog.yaml"),
		SchemaBaseURL: getenv("SCHEMA_BASE_URL", "http://schemas.opengis.net"),
		CRSCacheSize:  getint("CRS_CACHE_SIZE", 256),
		Cache: CacheCfg{
			Enabled:    getbool("CACHE_ENABLED", false),
			Driver:     driver,
			RedisAddr:  getenv("REDIS_ADDR", "localhost:6379"),
			MemorySize: getint("CACHE_MEMORY_SIZE", 1024),
			RedisPool:  getint("REDIS_POOL_SIZE", 64),
			TTL:        getduration("CACHE_TTL", 5*time.Minute),
			OpTimeout:  getduration("CACHE_OP_TIMEOUT", 250*time.Millisecond),
		},
		Invalidation: InvalidationCfg{
			Enabled: getbool("INVALIDATION_ENABLED", false),
			Topic:   getenv("KAFKA_TOPIC", "coverage-catalog-events"),
			Brokers: getenv("KAFKA_BROKERS", "localhost:9092"),
			GroupID: getenv("KAFKA_GROUP_ID", "wcs-describe-invalidator"),
		},
		H3: H3Cfg{
			Enabled:  getbool("H3_METADATA_ENABLED", false),
			Res:      res,
			MaxCells: getint("H3_MAX_CELLS", 64),
		},
		Metrics: MetricsCfg{
			Enabled: getbool("METRICS_ENABLED", true),
			Addr:    getenv("METRICS_ADDR", ":9090"),
			Path:    getenv("METRICS_PATH", "/metrics"),
		},
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
