// server/config/config.go
package config

import (
	"time"

	"github.com/spf13/viper"
)

// --- Sub-structs, mirroring the YAML layout ---

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug | release | test
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // postgres | sqlite
	DSN    string `mapstructure:"dsn"`
	Debug  bool   `mapstructure:"debug"`
}

type JWTConfig struct {
	Secret     string `mapstructure:"secret"`
	Expiration string `mapstructure:"expiration"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

type AuthConfig struct {
	MaxFailedAttempts int    `mapstructure:"maxFailedAttempts"`
	LockDuration      string `mapstructure:"lockDuration"`
	ResetTokenTTL     string `mapstructure:"resetTokenTTL"`
}

type CleanupConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Interval string `mapstructure:"interval"`
}

type DemoConfig struct {
	AdminEmail    string `mapstructure:"adminEmail"`
	AdminPassword string `mapstructure:"adminPassword"`
	UserEmail     string `mapstructure:"userEmail"`
	UserPassword  string `mapstructure:"userPassword"`
}

type MaintenanceConfig struct {
	Key string `mapstructure:"key"`
}

type MongoConfig struct {
	URI    string `mapstructure:"uri"`
	DBName string `mapstructure:"dbName"`
}

type S3Config struct {
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	AccessKeyID      string `mapstructure:"accessKeyID"`
	SecretAccessKey  string `mapstructure:"secretAccessKey"`
	CloudFrontDomain string `mapstructure:"cloudFrontDomain"`
}

type TelemetryConfig struct {
	ServiceName  string `mapstructure:"serviceName"`
	OTLPEndpoint string `mapstructure:"otlpEndpoint"`
	Insecure     bool   `mapstructure:"insecure"`
}

// --- Root Config ---

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	JWT         JWTConfig         `mapstructure:"jwt"`
	CORS        CORSConfig        `mapstructure:"cors"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Cleanup     CleanupConfig     `mapstructure:"cleanup"`
	Demo        DemoConfig        `mapstructure:"demo"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
	Mongo       MongoConfig       `mapstructure:"mongo"`
	S3          S3Config          `mapstructure:"s3"`
	Telemetry   TelemetryConfig   `mapstructure:"telemetry"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("jwt.expiration", "24h")
	v.SetDefault("cors.allowedOrigins", []string{"http://localhost:3000", "http://localhost:4200"})
	v.SetDefault("auth.maxFailedAttempts", 5)
	v.SetDefault("auth.lockDuration", "15m")
	v.SetDefault("auth.resetTokenTTL", "1h")
	v.SetDefault("cleanup.enabled", true)
	v.SetDefault("cleanup.interval", "30m")
	v.SetDefault("demo.adminEmail", "admin@port.local")
	v.SetDefault("demo.adminPassword", "admin123")
	v.SetDefault("demo.userEmail", "user@port.local")
	v.SetDefault("demo.userPassword", "user123")
	v.SetDefault("mongo.dbName", "port_ops")
	v.SetDefault("telemetry.serviceName", "port-ops-api-server")
}

// LoadConfig reads config.yaml from path and overrides it with environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	setDefaults(v)

	v.AutomaticEnv()

	// Explicit env names; keys in YAML are camelCase so the automatic mapping is not enough.
	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("server.mode", "GIN_MODE")
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.dsn", "DATABASE_DSN")
	v.BindEnv("database.debug", "DB_DEBUG")
	v.BindEnv("jwt.secret", "JWT_SECRET")
	v.BindEnv("jwt.expiration", "JWT_EXPIRATION")
	v.BindEnv("cleanup.enabled", "CLEANUP_ENABLED")
	v.BindEnv("cleanup.interval", "CLEANUP_INTERVAL")
	v.BindEnv("maintenance.key", "MAINTENANCE_KEY")
	v.BindEnv("demo.adminPassword", "DEMO_ADMIN_PASSWORD")
	v.BindEnv("demo.userPassword", "DEMO_USER_PASSWORD")
	v.BindEnv("mongo.uri", "MONGO_URI")
	v.BindEnv("mongo.dbName", "MONGO_DBNAME")
	v.BindEnv("s3.bucket", "S3_BUCKET")
	v.BindEnv("s3.region", "S3_REGION")
	v.BindEnv("s3.accessKeyID", "S3_ACCESS_KEY_ID")
	v.BindEnv("s3.secretAccessKey", "S3_SECRET_ACCESS_KEY")
	v.BindEnv("s3.cloudFrontDomain", "S3_CLOUDFRONT_DOMAIN")
	v.BindEnv("telemetry.otlpEndpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")
	v.BindEnv("telemetry.insecure", "OTEL_EXPORTER_OTLP_INSECURE")

	// A missing config.yaml is fine: defaults and env vars still apply.
	err = v.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
		err = nil
	}

	err = v.Unmarshal(&config)
	return
}

// Duration parses a config duration string, falling back to def when empty or malformed.
func Duration(raw string, def time.Duration) time.Duration {
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
