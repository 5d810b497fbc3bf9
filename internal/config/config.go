// Package config loads the pipeline configuration from a YAML file with
// environment variable overrides. Credentials never live in code: the YAML
// file carries endpoints and table addresses, and secrets can be injected
// through ETL_* environment variables at deploy time.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

// envPrefix namespaces the override variables, e.g. ETL_WAREHOUSE_DSN.
const envPrefix = "ETL_"

// Config is the full pipeline configuration.
type Config struct {
	Warehouse WarehouseConfig `koanf:"warehouse" validate:"required"`
	SourceDB  SourceDBConfig  `koanf:"source_db" validate:"required"`
	StoreAPI  StoreAPIConfig  `koanf:"store_api" validate:"required"`
	Objects   ObjectsConfig   `koanf:"objects" validate:"required"`
	CardPDF   CardPDFConfig   `koanf:"card_pdf" validate:"required"`
	Metrics   MetricsConfig   `koanf:"metrics"`
}

// WarehouseConfig locates the destination Postgres database.
type WarehouseConfig struct {
	DSN string `koanf:"dsn" validate:"required"`
}

// SourceDBConfig holds the credentials of the relational source database.
type SourceDBConfig struct {
	Driver   string `koanf:"driver" validate:"required,oneof=pgx mysql sqlserver sqlite"`
	Host     string `koanf:"host" validate:"required_unless=Driver sqlite"`
	Port     int    `koanf:"port" validate:"required_unless=Driver sqlite"`
	User     string `koanf:"user" validate:"required_unless=Driver sqlite"`
	Password string `koanf:"password"`
	Database string `koanf:"database" validate:"required"`

	// Tables read from the source database.
	UsersTable  string `koanf:"users_table" validate:"required"`
	OrdersTable string `koanf:"orders_table" validate:"required"`
}

// DSN renders a connection string for the configured driver. For sqlite the
// Database field is the database file path.
func (c SourceDBConfig) DSN() string {
	switch c.Driver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s", c.User, c.Password, c.Host, c.Port, c.Database)
	case "sqlserver":
		u := url.URL{
			Scheme:   "sqlserver",
			User:     url.UserPassword(c.User, c.Password),
			Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
			RawQuery: url.Values{"database": {c.Database}}.Encode(),
		}
		return u.String()
	case "sqlite":
		return c.Database
	default: // pgx
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(c.User, c.Password),
			Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
			Path:   "/" + c.Database,
		}
		return u.String()
	}
}

// StoreAPIConfig locates the retailer's store REST API.
type StoreAPIConfig struct {
	Key string `koanf:"key" validate:"required"`

	// CountURL returns the number of stores.
	CountURL string `koanf:"count_url" validate:"required,url"`

	// DetailURLTemplate is a fmt template with one %d verb for the store number.
	DetailURLTemplate string `koanf:"detail_url_template" validate:"required,contains=%d"`

	Concurrency int `koanf:"concurrency" validate:"gte=0"`
	MaxRetries  int `koanf:"max_retries" validate:"gte=0"`
}

// ObjectsConfig names the object-storage addresses of the flat-file extracts.
type ObjectsConfig struct {
	ProductsAddress string `koanf:"products_address" validate:"required,uri"`
	DatesAddress    string `koanf:"dates_address" validate:"required,uri"`
}

// CardPDFConfig locates the card details statement.
type CardPDFConfig struct {
	Path string `koanf:"path" validate:"required"`
}

// MetricsConfig selects the metrics backend. An empty backend disables
// metrics publishing.
type MetricsConfig struct {
	Backend        string `koanf:"backend" validate:"omitempty,oneof=pushgateway datadog"`
	PushgatewayURL string `koanf:"pushgateway_url" validate:"omitempty,url"`
	DatadogAddr    string `koanf:"datadog_addr"`
	JobName        string `koanf:"job_name"`
}

// Load reads the YAML file at path, layers ETL_* environment variables on
// top, and validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "config: read %s", path)
	}

	// ETL_SOURCE_DB_PASSWORD -> source_db.password. Two-level keys only, so
	// the split point is found against the known top-level sections.
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			return envKeyToPath(strings.TrimPrefix(key, envPrefix)), value
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "config: load environment overrides")
	}

	cfg := &Config{}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			TagName:          "koanf",
			WeaklyTypedInput: true,
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "config: decode %s", path)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// sections are the top-level config keys an env override can target.
var sections = []string{"warehouse", "source_db", "store_api", "objects", "card_pdf", "metrics"}

// envKeyToPath maps WAREHOUSE_DSN to warehouse.dsn and SOURCE_DB_PASSWORD to
// source_db.password. Unknown prefixes map to a lowercased dotless key, which
// no config field matches.
func envKeyToPath(key string) string {
	lower := strings.ToLower(key)
	for _, s := range sections {
		if rest, ok := strings.CutPrefix(lower, s+"_"); ok {
			return s + "." + rest
		}
	}
	return lower
}
