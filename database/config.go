/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"fmt"
	"net/url"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
	DriverSQLite   = "sqlite"

	// EnvPrefix marks environment variables that override file keys,
	// e.g. SALESDB_DBURL overrides dburl.
	EnvPrefix = "SALESDB_"

	redactedPassword = "xxxxx"
)

// Config describes the single connection opened by a Provider.
type Config struct {
	Driver         string        `koanf:"driver" validate:"omitempty,oneof=mysql postgres pgx sqlite"`
	URL            string        `koanf:"dburl" validate:"required"`
	User           string        `koanf:"user"`
	Password       string        `koanf:"password"`
	EnableQueryLog bool          `koanf:"query_log"`
	SlowQueryTime  time.Duration `koanf:"slow_query_time" validate:"gte=0"`
	ConnectTimeout time.Duration `koanf:"connect_timeout" validate:"gte=0"`

	// Properties holds every other key of the configuration file. They are
	// passed to the driver as connection parameters.
	Properties map[string]string `koanf:"-"`
}

var knownKeys = map[string]struct{}{
	"driver":          {},
	"dburl":           {},
	"user":            {},
	"password":        {},
	"query_log":       {},
	"slow_query_time": {},
	"connect_timeout": {},
}

// DefaultConfig returns a config with the default timeouts and no URL.
func DefaultConfig() *Config {
	return &Config{
		ConnectTimeout: 10 * time.Second,
		SlowQueryTime:  2 * time.Second,
		Properties:     map[string]string{},
	}
}

// LoadConfig reads a key-value configuration file. YAML files are parsed
// as YAML, anything else as key=value lines. Variables prefixed with
// EnvPrefix override the file.
func LoadConfig(path string) (*Config, error) {
	const op = "load config"

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
		return nil, wrapf(op, err, "cannot read %s", path)
	}
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return nil, wrapf(op, err, "cannot read environment")
	}

	cfg := DefaultConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, wrapf(op, err, "cannot decode %s", path)
	}
	for _, key := range k.Keys() {
		if _, ok := knownKeys[key]; ok {
			continue
		}
		cfg.Properties[key] = k.String(key)
	}

	if err := cfg.Validate(); err != nil {
		return nil, wrapf(op, err, "invalid configuration in %s", path)
	}
	return cfg, nil
}

// Validate checks required fields and known driver names.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// DriverName returns the configured driver or the one implied by the URL.
func (c *Config) DriverName() string {
	if c.Driver != "" {
		return c.Driver
	}
	u := trimJDBC(c.URL)
	switch {
	case strings.HasPrefix(u, "postgres://"), strings.HasPrefix(u, "postgresql://"):
		return DriverPostgres
	case strings.HasPrefix(u, "sqlite:"),
		strings.HasPrefix(u, "file:"),
		strings.HasPrefix(u, ":memory:"),
		strings.HasSuffix(u, ".db"),
		strings.HasSuffix(u, ".sqlite"):
		return DriverSQLite
	default:
		return DriverMySQL
	}
}

// DSN builds the data source name handed to sql.Open.
func (c *Config) DSN() (string, error) {
	switch c.DriverName() {
	case DriverMySQL:
		return c.mysqlDSN()
	case DriverPostgres, DriverPgx:
		return c.postgresDSN()
	case DriverSQLite:
		return strings.TrimPrefix(trimJDBC(c.URL), "sqlite:"), nil
	default:
		return "", fmt.Errorf("unsupported driver: %s", c.Driver)
	}
}

// Redacted returns the DSN with the password masked, for logging.
func (c *Config) Redacted() string {
	switch c.DriverName() {
	case DriverMySQL:
		mc, err := c.mysqlConfig()
		if err != nil {
			return "invalid mysql dsn"
		}
		if mc.Passwd != "" {
			mc.Passwd = redactedPassword
		}
		return mc.FormatDSN()
	case DriverPostgres, DriverPgx:
		u, err := c.postgresURL()
		if err != nil {
			return "invalid postgres url"
		}
		if q := u.Query(); q.Get("password") != "" {
			q.Set("password", redactedPassword)
			u.RawQuery = q.Encode()
		}
		return u.Redacted()
	default:
		dsn, err := c.DSN()
		if err != nil {
			return "invalid dsn"
		}
		return dsn
	}
}

func (c *Config) mysqlDSN() (string, error) {
	mc, err := c.mysqlConfig()
	if err != nil {
		return "", err
	}
	return mc.FormatDSN(), nil
}

func (c *Config) mysqlConfig() (*mysql.Config, error) {
	raw := trimJDBC(c.URL)
	var mc *mysql.Config
	if strings.HasPrefix(raw, "mysql://") {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid mysql url: %w", err)
		}
		mc = mysql.NewConfig()
		mc.Net = "tcp"
		mc.Addr = u.Host
		mc.DBName = strings.TrimPrefix(u.Path, "/")
		if u.User != nil {
			mc.User = u.User.Username()
			mc.Passwd, _ = u.User.Password()
		}
		for key, values := range u.Query() {
			if len(values) > 0 {
				setParam(mc, key, values[0])
			}
		}
	} else {
		parsed, err := mysql.ParseDSN(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid mysql dsn: %w", err)
		}
		mc = parsed
	}
	if c.User != "" {
		mc.User = c.User
	}
	if c.Password != "" {
		mc.Passwd = c.Password
	}
	if c.ConnectTimeout > 0 {
		mc.Timeout = c.ConnectTimeout
	}
	// Report matched rows, not changed rows, so that an update writing
	// identical values is not mistaken for a missing row.
	mc.ClientFoundRows = true
	for _, key := range sortedKeys(c.Properties) {
		setParam(mc, key, c.Properties[key])
	}
	return mc, nil
}

func setParam(mc *mysql.Config, key, value string) {
	if mc.Params == nil {
		mc.Params = map[string]string{}
	}
	mc.Params[key] = value
}

func (c *Config) postgresDSN() (string, error) {
	u, err := c.postgresURL()
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (c *Config) postgresURL() (*url.URL, error) {
	u, err := url.Parse(trimJDBC(c.URL))
	if err != nil {
		return nil, fmt.Errorf("invalid postgres url: %w", err)
	}
	if u.Scheme == "postgresql" {
		u.Scheme = "postgres"
	}
	if c.User != "" {
		if c.Password != "" {
			u.User = url.UserPassword(c.User, c.Password)
		} else {
			u.User = url.User(c.User)
		}
	}
	q := u.Query()
	for key, value := range c.Properties {
		q.Set(key, value)
	}
	if q.Get("sslmode") == "" {
		q.Set("sslmode", "disable")
	}
	if c.ConnectTimeout > 0 && q.Get("connect_timeout") == "" {
		q.Set("connect_timeout", fmt.Sprintf("%d", int(c.ConnectTimeout.Seconds())))
	}
	u.RawQuery = q.Encode()
	return u, nil
}

func trimJDBC(s string) string {
	return strings.TrimPrefix(strings.TrimSpace(s), "jdbc:")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yamlParser{}
	default:
		return propertiesParser{}
	}
}

// propertiesParser reads key=value files (.properties, .env).
type propertiesParser struct{}

func (propertiesParser) Unmarshal(b []byte) (map[string]interface{}, error) {
	values, err := godotenv.UnmarshalBytes(b)
	if err != nil {
		return nil, err
	}
	out := make(map[string]interface{}, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out, nil
}

func (propertiesParser) Marshal(m map[string]interface{}) ([]byte, error) {
	values := make(map[string]string, len(m))
	for k, v := range m {
		values[k] = fmt.Sprint(v)
	}
	s, err := godotenv.Marshal(values)
	return []byte(s), err
}

type yamlParser struct{}

func (yamlParser) Unmarshal(b []byte) (map[string]interface{}, error) {
	out := map[string]interface{}{}
	if err := yaml.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (yamlParser) Marshal(m map[string]interface{}) ([]byte, error) {
	return yaml.Marshal(m)
}
