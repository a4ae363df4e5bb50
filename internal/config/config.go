package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the solrdex configuration.
type Config struct {
	HTTP     HTTPConfig             `yaml:"http"`
	Solr     SolrConfig             `yaml:"solr"`
	Indices  []IndexConfig          `yaml:"indices"`
	Search   SearchConfig           `yaml:"search"`
	Exports  ExportsConfig          `yaml:"exports"`
	Queue    QueueConfig            `yaml:"queue"`
	Database DatabaseConfig         `yaml:"database"`
	Records  map[string]RecordClass `yaml:"records"`
	Logging  LoggingConfig          `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// SolrConfig holds search engine settings.
type SolrConfig struct {
	// Endpoint overrides SOLR_END_POINT. Empty reads the variable on every operation.
	Endpoint     string `yaml:"endpoint"`
	VerifyTLS    bool   `yaml:"verify_tls"`
	TimeoutSec   int    `yaml:"timeout_sec"` // 0 = no client timeout
	Debug        bool   `yaml:"debug"`
	MaxBatchSize int    `yaml:"max_batch_size"`
}

// IndexConfig holds static settings of one collection.
type IndexConfig struct {
	Name                  string   `yaml:"name"`
	NumShards             int      `yaml:"num_shards"`
	AttributesForFaceting []string `yaml:"attributes_for_faceting"`
}

// SearchConfig holds pagination settings.
type SearchConfig struct {
	DefaultPageSize int `yaml:"default_page_size"`
	MaxPageSize     int `yaml:"max_page_size"`
}

// ExportsConfig enables the job queue side: export endpoints and the worker.
type ExportsConfig struct {
	Enabled     bool `yaml:"enabled"`
	BatchLength int  `yaml:"batch_length"`
	Workers     int  `yaml:"workers"`
}

// QueueConfig holds Redis job queue settings.
type QueueConfig struct {
	Addrs           []string `yaml:"addrs"`
	Username        string   `yaml:"username"`
	Password        string   `yaml:"password"`
	DB              int      `yaml:"db"`
	Key             string   `yaml:"key"`
	BlockTimeoutSec int      `yaml:"block_timeout_sec"`
	ReadinessSec    int      `yaml:"readiness_timeout_sec"`
}

// DatabaseConfig holds MySQL connection settings for the record source.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// RecordClass maps a record class to its source table.
type RecordClass struct {
	Table    string   `yaml:"table"`
	IDColumn string   `yaml:"id_column"`
	Columns  []string `yaml:"columns"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Solr.MaxBatchSize <= 0 {
		c.Solr.MaxBatchSize = 1000
	}
	if c.Search.DefaultPageSize <= 0 {
		c.Search.DefaultPageSize = 20
	}
	if c.Search.MaxPageSize <= 0 {
		c.Search.MaxPageSize = 1000
	}
	if c.Exports.BatchLength <= 0 {
		c.Exports.BatchLength = 100
	}
	if c.Exports.Workers <= 0 {
		c.Exports.Workers = 1
	}
	if c.Queue.Key == "" {
		c.Queue.Key = "solrdex:jobs"
	}
	if c.Queue.BlockTimeoutSec <= 0 {
		c.Queue.BlockTimeoutSec = 5
	}
	if c.Queue.ReadinessSec <= 0 {
		c.Queue.ReadinessSec = 10
	}
	if c.Database.Port <= 0 {
		c.Database.Port = 3306
	}
	for name, rc := range c.Records {
		if rc.IDColumn == "" {
			rc.IDColumn = "id"
			c.Records[name] = rc
		}
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Solr.TimeoutSec < 0 {
		return fmt.Errorf("solr.timeout_sec must be non-negative, got %d", c.Solr.TimeoutSec)
	}
	seen := make(map[string]bool, len(c.Indices))
	for i, idx := range c.Indices {
		if idx.Name == "" {
			return fmt.Errorf("indices[%d].name is required", i)
		}
		if seen[idx.Name] {
			return fmt.Errorf("indices[%d].name %q is duplicated", i, idx.Name)
		}
		seen[idx.Name] = true
		if idx.NumShards < 0 {
			return fmt.Errorf("indices.%s.num_shards must be non-negative, got %d", idx.Name, idx.NumShards)
		}
	}
	if c.Search.DefaultPageSize > c.Search.MaxPageSize {
		return fmt.Errorf("search.default_page_size %d exceeds search.max_page_size %d",
			c.Search.DefaultPageSize, c.Search.MaxPageSize)
	}
	if !c.Exports.Enabled {
		return nil
	}
	if len(c.Queue.Addrs) == 0 {
		return fmt.Errorf("queue.addrs is required when exports are enabled")
	}
	if c.Database.Host == "" || c.Database.Name == "" {
		return fmt.Errorf("database.host and database.name are required when exports are enabled")
	}
	if len(c.Records) == 0 {
		return fmt.Errorf("records must define at least one class when exports are enabled")
	}
	for name, rc := range c.Records {
		if rc.Table == "" {
			return fmt.Errorf("records.%s.table is required", name)
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
