package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ストレージドライバ名です。
const (
	DriverFile     = "file"
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	Mongo    MongoConfig    `yaml:"mongo"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig は gRPC サーバーに関する設定です。
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// StorageConfig は利用するストアの設定です。data_dir は旧 JSON ストアの置き場所です。
type StorageConfig struct {
	Driver  string `yaml:"driver"`
	DataDir string `yaml:"data_dir"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。
type DatabaseConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	SSLMode            string        `yaml:"ssl_mode"`
	MaxOpenConns       int           `yaml:"max_open_conns"`
	MaxIdleConns       int           `yaml:"max_idle_conns"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
	ConnMaxIdleTime    time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time"`
}

// MongoConfig は MongoDB 接続に関する設定です。
type MongoConfig struct {
	URI               string        `yaml:"uri"`
	Database          string        `yaml:"database"`
	ConnectTimeout    time.Duration `yaml:"-"`
	ConnectTimeoutRaw string        `yaml:"connect_timeout"`
}

// LoggingConfig はログ出力の設定です。file が空の場合は標準出力へ書き出します。
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Load は .env を読み込んだ上で、指定されたパスから設定ファイルを読み込みます。
// 環境変数は YAML の値より優先されます。
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyEnv() {
	overrides := []struct {
		key    string
		target *string
	}{
		{"LOGIFLOW_STORAGE_DRIVER", &c.Storage.Driver},
		{"LOGIFLOW_DATA_DIR", &c.Storage.DataDir},
		{"LOGIFLOW_LISTEN_ADDR", &c.Server.ListenAddr},
		{"MONGO_URI", &c.Mongo.URI},
		{"MONGO_DB_NAME", &c.Mongo.Database},
		{"DATABASE_HOST", &c.Database.Host},
		{"DATABASE_PASSWORD", &c.Database.Password},
		{"LOG_LEVEL", &c.Logging.Level},
	}
	for _, o := range overrides {
		if v, ok := os.LookupEnv(o.key); ok && v != "" {
			*o.target = v
		}
	}
	if v, ok := os.LookupEnv("DATABASE_PORT"); ok {
		if port, err := strconv.Atoi(v); err == nil {
			c.Database.Port = port
		}
	}
}

func (c *Config) validateAndNormalize() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("config: server.listen_addr must be set")
	}

	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverFile
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "data"
	}

	switch c.Storage.Driver {
	case DriverFile:
	case DriverMongo:
		if err := c.Mongo.validateAndNormalize(); err != nil {
			return err
		}
	case DriverPostgres:
		if err := c.Database.validateAndNormalize(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("config: storage.driver %q is not supported", c.Storage.Driver)
	}

	c.Logging.normalize()
	return nil
}

// Validate は PostgreSQL の設定を検証します。storage.driver が postgres 以外の場合に利用します。
func (d *DatabaseConfig) Validate() error {
	return d.validateAndNormalize()
}

func (d *DatabaseConfig) validateAndNormalize() error {
	if d.Host == "" {
		return fmt.Errorf("config: database.host must be set")
	}
	if d.Port == 0 {
		return fmt.Errorf("config: database.port must be set")
	}
	if d.User == "" {
		return fmt.Errorf("config: database.user must be set")
	}
	if d.Password == "" {
		return fmt.Errorf("config: database.password must be set")
	}
	if d.Name == "" {
		return fmt.Errorf("config: database.name must be set")
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}

	lifetime, err := parseDurationAllowEmpty(d.ConnMaxLifetimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_lifetime: %w", err)
	}
	d.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationAllowEmpty(d.ConnMaxIdleTimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_idle_time: %w", err)
	}
	d.ConnMaxIdleTime = idleTime

	return nil
}

// Validate は MongoDB の設定を検証します。
func (m *MongoConfig) Validate() error {
	return m.validateAndNormalize()
}

func (m *MongoConfig) validateAndNormalize() error {
	if m.URI == "" {
		return fmt.Errorf("config: mongo.uri must be set")
	}
	if m.Database == "" {
		return fmt.Errorf("config: mongo.database must be set")
	}

	timeout, err := parseDurationAllowEmpty(m.ConnectTimeoutRaw)
	if err != nil {
		return fmt.Errorf("config: mongo.connect_timeout: %w", err)
	}
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	m.ConnectTimeout = timeout
	return nil
}

func (l *LoggingConfig) normalize() {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.MaxSizeMB == 0 {
		l.MaxSizeMB = 10
	}
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	return d, nil
}

// DSN は pgx 用の接続文字列を返します。ユーザー名とパスワードはエスケープされます。
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": []string{d.SSLMode}}.Encode(),
	}
	return u.String()
}
