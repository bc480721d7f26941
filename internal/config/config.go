package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Supported values of DB_DRIVER.
const (
	DriverPostgres = "pgx"
	DriverMySQL    = "mysql"
)

// Config holds every setting the service needs at startup.
type Config struct {
	AppHost     string   `envconfig:"APP_HOST" default:"localhost"`
	AppPort     string   `envconfig:"APP_PORT" default:"5000"`
	LogLevel    string   `envconfig:"APP_LOG_LEVEL" default:"info"`
	Migrate     bool     `envconfig:"APP_MIGRATE" default:"true"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`

	DBDriver       string `envconfig:"DB_DRIVER" default:"pgx"`
	DBHost         string `envconfig:"DB_HOST" default:"localhost"`
	DBPort         int    `envconfig:"DB_PORT" default:"5432"`
	DBUser         string `envconfig:"DB_USER" default:"user"`
	DBPassword     string `envconfig:"DB_PASSWORD" default:"password"`
	DBName         string `envconfig:"DB_NAME" default:"database"`
	DBMaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"16"`
	DBMaxIdleConns int    `envconfig:"DB_MAX_IDLE_CONNS" default:"8"`

	JWTSecret string        `envconfig:"JWT_SECRET" default:"my_super_secret_key"`
	JWTExp    time.Duration `envconfig:"JWT_EXP" default:"1h"`
}

// Load reads the env file at path (a missing file is ignored) and then
// parses the process environment into a Config.
func Load(path string) (*Config, error) {
	_ = godotenv.Load(path)

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot express as tags.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverPostgres, DriverMySQL:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if c.JWTExp <= 0 {
		return fmt.Errorf("JWT_EXP must be positive, got %s", c.JWTExp)
	}
	return nil
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.AppHost, c.AppPort)
}

// DSN builds the data source name for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == DriverMySQL {
		mc := mysql.NewConfig()
		mc.User = c.DBUser
		mc.Passwd = c.DBPassword
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(c.DBHost, strconv.Itoa(c.DBPort))
		mc.DBName = c.DBName
		mc.ParseTime = true
		return mc.FormatDSN()
	}
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, net.JoinHostPort(c.DBHost, strconv.Itoa(c.DBPort)), c.DBName)
}
