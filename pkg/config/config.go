package config

import (
	"fmt"
	"log"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// App holds application configuration.
type App struct {
	Name    string `mapstructure:"name" default:"TradeharmonyAI"`
	Env     string `mapstructure:"env" default:"development"`
	Version string `mapstructure:"version" default:"1.0.1"`
}

// Logger holds logger configuration.
type Logger struct {
	Level    string `mapstructure:"level" default:"info" validate:"oneof=debug info warn error"`
	Encoding string `mapstructure:"encoding" default:"json" validate:"oneof=json console"`
}

// Database holds database configuration.
type Database struct {
	URL             string `mapstructure:"url"`
	Host            string `mapstructure:"host" default:"localhost"`
	Port            int    `mapstructure:"port" default:"5432"`
	User            string `mapstructure:"user" default:"postgres"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name" default:"postgres"`
	SSLMode         string `mapstructure:"ssl_mode" default:"disable"`
	TimeZone        string `mapstructure:"time_zone" default:"UTC"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns" default:"2"`
	MaxOpenConns    int    `mapstructure:"max_open_conns" default:"5"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime" default:"30m"`
	LogLevel        string `mapstructure:"log_level" default:"silent"`
}

// DSN returns the connection URL, preferring an explicit URL when one is set.
func (d Database) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&TimeZone=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode, d.TimeZone)
}

// Redis holds Redis configuration.
type Redis struct {
	Host      string `mapstructure:"host" default:"localhost"`
	Port      int    `mapstructure:"port" default:"6379"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	PoolSize  int    `mapstructure:"pool_size" default:"10"`
	KeyPrefix string `mapstructure:"key_prefix" default:"signal"`
}

// API holds API server configuration.
type API struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port" default:"8080" validate:"gt=0"`
}

var validate = validator.New()

// Load fills config from `default` tags, overlays the YAML file at path and
// environment overrides, then validates the result.
//
// aliases maps flat environment variable names to viper keys, for deployments
// that only set e.g. MAX_DAILY_MESSAGES instead of QUOTA_MAX_DAILY_MESSAGES.
func Load(path string, config interface{}, aliases map[string][]string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		log.Println("Failed to read config file, falling back to environment variables")
	}

	bindEnvs(v, reflect.TypeOf(config), "")
	for key, envs := range aliases {
		// The derived name stays first so QUOTA_MAX_DAILY_MESSAGES keeps working.
		args := append([]string{key, strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return fmt.Errorf("failed to bind env alias for %s: %w", key, err)
		}
	}

	// Defaults go in first so explicit zeros from the file or env survive.
	if err := defaults.Set(config); err != nil {
		return fmt.Errorf("failed to apply config defaults: %w", err)
	}
	if err := v.Unmarshal(config); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validate.Struct(config); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// bindEnvs registers every mapstructure key with viper so AutomaticEnv also
// covers keys that are absent from the config file.
func bindEnvs(v *viper.Viper, t reflect.Type, prefix string) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		ft := f.Type
		if ft.Kind() == reflect.Struct && ft.String() != "time.Duration" {
			bindEnvs(v, ft, key)
			continue
		}
		_ = v.BindEnv(key)
	}
}
