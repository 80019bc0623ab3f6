package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port                int      `yaml:"port" toml:"port"`
		ReadTimeoutSeconds  int      `yaml:"readTimeoutSeconds" toml:"read_timeout_seconds"`
		WriteTimeoutSeconds int      `yaml:"writeTimeoutSeconds" toml:"write_timeout_seconds"`
		CORSOrigins         []string `yaml:"corsOrigins" toml:"cors_origins"`
	} `yaml:"server" toml:"server"`

	Database struct {
		Driver   string `yaml:"driver" toml:"driver"`
		Host     string `yaml:"host" toml:"host"`
		Port     int    `yaml:"port" toml:"port"`
		User     string `yaml:"user" toml:"user"`
		Password string `yaml:"password" toml:"password"`
		Name     string `yaml:"name" toml:"name"`
		SSLMode  string `yaml:"sslMode" toml:"ssl_mode"`
		// SecretName, when set, replaces host/port/user/password/name with
		// the AWS Secrets Manager secret of that name.
		SecretName             string `yaml:"secretName" toml:"secret_name"`
		MaxOpenConns           int    `yaml:"maxOpenConns" toml:"max_open_conns"`
		MaxIdleConns           int    `yaml:"maxIdleConns" toml:"max_idle_conns"`
		ConnMaxLifetimeMinutes int    `yaml:"connMaxLifetimeMinutes" toml:"conn_max_lifetime_minutes"`
		MigrateOnStart         bool   `yaml:"migrateOnStart" toml:"migrate_on_start"`
	} `yaml:"database" toml:"database"`

	Catalog struct {
		Threshold       float64           `yaml:"threshold" toml:"threshold"`
		ClassifyVariant string            `yaml:"classifyVariant" toml:"classify_variant"`
		Tables          map[string]string `yaml:"tables" toml:"tables"`
	} `yaml:"catalog" toml:"catalog"`

	Inference struct {
		Provider       string            `yaml:"provider" toml:"provider"`
		BaseURL        string            `yaml:"baseURL" toml:"base_url"`
		APIKey         string            `yaml:"apiKey" toml:"api_key"`
		TimeoutSeconds int               `yaml:"timeoutSeconds" toml:"timeout_seconds"`
		Models         map[string]string `yaml:"models" toml:"models"`
	} `yaml:"inference" toml:"inference"`

	OCR struct {
		Enabled       bool     `yaml:"enabled" toml:"enabled"`
		Languages     []string `yaml:"languages" toml:"languages"`
		MaxUploadMB   int      `yaml:"maxUploadMB" toml:"max_upload_mb"`
		MaxMegapixels int      `yaml:"maxMegapixels" toml:"max_megapixels"`
	} `yaml:"ocr" toml:"ocr"`

	AWS struct {
		Region string `yaml:"region" toml:"region"`
	} `yaml:"aws" toml:"aws"`

	Compute struct {
		InstanceID string `yaml:"instanceID" toml:"instance_id"`
		Region     string `yaml:"region" toml:"region"`
	} `yaml:"compute" toml:"compute"`

	Minio struct {
		Enabled    bool   `yaml:"enabled" toml:"enabled"`
		Endpoint   string `yaml:"endpoint" toml:"endpoint"`
		AccessKey  string `yaml:"accessKey" toml:"access_key"`
		SecretKey  string `yaml:"secretKey" toml:"secret_key"`
		BucketName string `yaml:"bucketName" toml:"bucket_name"`
		Region     string `yaml:"region" toml:"region"`
		UseSSL     bool   `yaml:"useSSL" toml:"use_ssl"`
	} `yaml:"minio" toml:"minio"`

	RateLimit struct {
		Enabled           bool    `yaml:"enabled" toml:"enabled"`
		RequestsPerSecond float64 `yaml:"requestsPerSecond" toml:"requests_per_second"`
		Burst             int     `yaml:"burst" toml:"burst"`
	} `yaml:"rateLimit" toml:"rate_limit"`

	Auth struct {
		APIKeys []string `yaml:"apiKeys" toml:"api_keys"`
	} `yaml:"auth" toml:"auth"`

	Log struct {
		Level  string `yaml:"level" toml:"level"`
		Format string `yaml:"format" toml:"format"`
	} `yaml:"log" toml:"log"`
}

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// Load reads a YAML or TOML file (by extension), then applies defaults and
// KLEAN_* environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".toml":
			err = toml.Unmarshal(data, &cfg)
		default:
			err = yaml.Unmarshal(data, &cfg)
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	cfg.applyDefaults()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Server.ReadTimeoutSeconds == 0 {
		c.Server.ReadTimeoutSeconds = 30
	}
	if c.Server.WriteTimeoutSeconds == 0 {
		// must outlive a full inference call
		c.Server.WriteTimeoutSeconds = 330
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"http://localhost", "http://localhost:*", "https://*.ngrok.io", "https://*.ngrok-free.app"}
	}

	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == 0 {
		if c.Database.Driver == "mysql" {
			c.Database.Port = 3306
		} else {
			c.Database.Port = 5432
		}
	}
	if c.Database.Name == "" {
		c.Database.Name = "klean"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 30
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 10
	}
	if c.Database.ConnMaxLifetimeMinutes == 0 {
		c.Database.ConnMaxLifetimeMinutes = 30
	}

	if c.Catalog.Threshold == 0 {
		c.Catalog.Threshold = 0.4
	}
	if c.Catalog.ClassifyVariant == "" {
		c.Catalog.ClassifyVariant = "qwen"
	}
	if len(c.Catalog.Tables) == 0 {
		c.Catalog.Tables = map[string]string{
			"default": "ingredient",
			"gemma":   "ingredient_gemma",
			"qwen":    "ingredient_qwen",
		}
	}

	if c.Inference.Provider == "" {
		c.Inference.Provider = "ollama"
	}
	if c.Inference.BaseURL == "" && c.Inference.Provider == "ollama" {
		c.Inference.BaseURL = "http://localhost:11434"
	}
	if c.Inference.TimeoutSeconds == 0 {
		c.Inference.TimeoutSeconds = 300
	}
	if len(c.Inference.Models) == 0 {
		c.Inference.Models = map[string]string{
			"default":   "llama3",
			"gemma":     "gemma2:9b",
			"tinygemma": "gemma2:2b",
			"qwen":      "qwen3:8b",
		}
	}

	if len(c.OCR.Languages) == 0 {
		c.OCR.Languages = []string{"eng"}
	}
	if c.OCR.MaxUploadMB == 0 {
		c.OCR.MaxUploadMB = 10
	}
	if c.OCR.MaxMegapixels == 0 {
		c.OCR.MaxMegapixels = 40
	}

	if c.AWS.Region == "" {
		c.AWS.Region = "us-east-2"
	}
	if c.Compute.Region == "" {
		c.Compute.Region = "us-west-2"
	}

	if c.RateLimit.RequestsPerSecond == 0 {
		c.RateLimit.RequestsPerSecond = 5
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 20
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

func (c *Config) applyEnv() error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := os.LookupEnv(key)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}
	flag := func(key string, dst *bool) error {
		v, ok := os.LookupEnv(key)
		if !ok {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = b
		return nil
	}
	list := func(key string, dst *[]string) {
		v, ok := os.LookupEnv(key)
		if !ok {
			return
		}
		var out []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		*dst = out
	}

	str("KLEAN_DB_DRIVER", &c.Database.Driver)
	str("KLEAN_DB_HOST", &c.Database.Host)
	str("KLEAN_DB_USER", &c.Database.User)
	str("KLEAN_DB_PASSWORD", &c.Database.Password)
	str("KLEAN_DB_NAME", &c.Database.Name)
	str("KLEAN_DB_SSLMODE", &c.Database.SSLMode)
	str("KLEAN_DB_SECRET_NAME", &c.Database.SecretName)
	str("KLEAN_CLASSIFY_VARIANT", &c.Catalog.ClassifyVariant)
	str("KLEAN_INFERENCE_PROVIDER", &c.Inference.Provider)
	str("KLEAN_INFERENCE_BASE_URL", &c.Inference.BaseURL)
	str("KLEAN_INFERENCE_API_KEY", &c.Inference.APIKey)
	str("KLEAN_AWS_REGION", &c.AWS.Region)
	str("KLEAN_COMPUTE_INSTANCE_ID", &c.Compute.InstanceID)
	str("KLEAN_COMPUTE_REGION", &c.Compute.Region)
	str("KLEAN_MINIO_ENDPOINT", &c.Minio.Endpoint)
	str("KLEAN_MINIO_ACCESS_KEY", &c.Minio.AccessKey)
	str("KLEAN_MINIO_SECRET_KEY", &c.Minio.SecretKey)
	str("KLEAN_MINIO_BUCKET", &c.Minio.BucketName)
	str("KLEAN_LOG_LEVEL", &c.Log.Level)
	list("KLEAN_API_KEYS", &c.Auth.APIKeys)
	list("KLEAN_CORS_ORIGINS", &c.Server.CORSOrigins)

	for key, dst := range map[string]*int{
		"KLEAN_PORT":    &c.Server.Port,
		"KLEAN_DB_PORT": &c.Database.Port,
	} {
		if err := num(key, dst); err != nil {
			return err
		}
	}
	for key, dst := range map[string]*bool{
		"KLEAN_DB_MIGRATE":  &c.Database.MigrateOnStart,
		"KLEAN_OCR_ENABLED": &c.OCR.Enabled,
		"KLEAN_MINIO":       &c.Minio.Enabled,
		"KLEAN_RATE_LIMIT":  &c.RateLimit.Enabled,
	} {
		if err := flag(key, dst); err != nil {
			return err
		}
	}
	if v, ok := os.LookupEnv("KLEAN_THRESHOLD"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("KLEAN_THRESHOLD: %w", err)
		}
		c.Catalog.Threshold = f
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	switch c.Database.Driver {
	case "postgres", "mysql":
	default:
		return fmt.Errorf("database.driver must be postgres or mysql, got %q", c.Database.Driver)
	}
	switch c.Inference.Provider {
	case "ollama", "openai":
	default:
		return fmt.Errorf("inference.provider must be ollama or openai, got %q", c.Inference.Provider)
	}
	if c.OCR.MaxMegapixels < 0 {
		return fmt.Errorf("ocr.maxMegapixels must be positive, got %d", c.OCR.MaxMegapixels)
	}
	if c.Catalog.Threshold < 0 || c.Catalog.Threshold >= 1 {
		return fmt.Errorf("catalog.threshold must be in [0,1), got %v", c.Catalog.Threshold)
	}
	for variant, table := range c.Catalog.Tables {
		if !tableName.MatchString(table) {
			return fmt.Errorf("catalog.tables.%s: invalid table name %q", variant, table)
		}
	}
	if _, ok := c.Catalog.Tables[c.Catalog.ClassifyVariant]; !ok {
		return fmt.Errorf("catalog.classifyVariant %q has no table", c.Catalog.ClassifyVariant)
	}
	if _, ok := c.Catalog.Tables["default"]; !ok {
		return fmt.Errorf("catalog.tables needs a default entry")
	}
	if _, ok := c.Inference.Models["default"]; !ok {
		return fmt.Errorf("inference.models needs a default entry")
	}
	return nil
}

func (c *Config) InferenceTimeout() time.Duration {
	return time.Duration(c.Inference.TimeoutSeconds) * time.Second
}

// PostgresDSN is a URL accepted by both lib/pq and golang-migrate.
func (c *Config) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     net.JoinHostPort(c.Database.Host, strconv.Itoa(c.Database.Port)),
		Path:     "/" + c.Database.Name,
		RawQuery: url.Values{"sslmode": {c.Database.SSLMode}}.Encode(),
	}
	return u.String()
}

// MySQLDSN builds a go-sql-driver/mysql DSN.
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

func (c *Config) DSN() string {
	if c.Database.Driver == "mysql" {
		return c.MySQLDSN()
	}
	return c.PostgresDSN()
}

// MigrateURL converts a driver DSN into golang-migrate's URL form.
func MigrateURL(driver, dsn string) string {
	if driver == "mysql" {
		return "mysql://" + dsn + "&multiStatements=true"
	}
	return dsn
}
