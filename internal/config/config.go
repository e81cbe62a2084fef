package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env        string     `yaml:"env" env:"APP_ENV" env-default:"local"`
	HTTPServer HTTPServer `yaml:"http_server"`
	Postgres   Postgres   `yaml:"postgres"`
	JWT        JWT        `yaml:"jwt"`
	ES         ES         `yaml:"elasticsearch"`
	Minio      Minio      `yaml:"minio"`
	Redis      Redis      `yaml:"redis"`
	Statistics Statistics `yaml:"statistics"`
}

type Minio struct {
	Endpoint  string                  `yaml:"endpoint" env:"MINIO_ENDPOINT" env-default:"minio:9000"`
	AccessKey string                  `yaml:"access_key" env:"MINIO_ACCESS_KEY"`
	SecretKey string                  `yaml:"secret_key" env:"MINIO_SECRET_KEY"`
	UseSSL    bool                    `yaml:"use_ssl"`
	Buckets   map[string]BucketConfig `yaml:"buckets"`
}

type BucketConfig struct {
	Name       string        `yaml:"name"`
	PresignTTL time.Duration `yaml:"presign_ttl"`
}

// Bucket keys looked up in Minio.Buckets.
const (
	LevelImagesBucket     = "level_images"
	ProfilePicturesBucket = "profile_pictures"
)

type ES struct {
	Hosts      []string `yaml:"hosts" env:"ES_HOSTS" env-separator:","`
	Index      string   `yaml:"index" env-default:"levels"`
	Username   string   `yaml:"username" env-default:"elastic"`
	Password   string   `yaml:"password" env:"ES_PASSWORD"`
	MaxRetries int      `yaml:"max_retries" env-default:"3"`
}

type JWT struct {
	SecretKey string        `yaml:"secret_key" env:"JWT_SECRET_KEY" env-required:"true"`
	Issuer    string        `yaml:"issuer" env-default:"sounds-api"`
	AccessTTL time.Duration `yaml:"access_token_ttl" env-default:"24h"`
}

type Postgres struct {
	Host            string        `yaml:"host" env:"POSTGRES_HOST" env-default:"localhost"`
	Port            string        `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	User            string        `yaml:"user" env:"POSTGRES_USER"`
	Password        string        `yaml:"password" env:"POSTGRES_PASSWORD"`
	DBName          string        `yaml:"dbname" env:"POSTGRES_DB"`
	SSLMode         string        `yaml:"sslmode" env-default:"disable"`
	MaxConns        int           `yaml:"max_conns" env-default:"20"`
	MinConns        int           `yaml:"min_conns" env-default:"2"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime" env-default:"30m"`
	ApplySchema     bool          `yaml:"apply_schema" env:"POSTGRES_APPLY_SCHEMA"`
}

// DSN builds the pgx connection string.
func (p Postgres) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", p.User, p.Password, p.Host, p.Port, p.DBName, p.SSLMode)
}

type Redis struct {
	URL string `yaml:"url" env:"REDIS_URL" env-default:"redis://localhost:6379/0"`
}

type Statistics struct {
	CacheTTL time.Duration `yaml:"cache_ttl" env-default:"1m"`
}

type HTTPServer struct {
	Address      string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8081"`
	Timeout      time.Duration `yaml:"timeout" env-default:"5s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env-default:"60s"`
	AllowOrigins []string      `yaml:"allow_origins" env:"HTTP_ALLOW_ORIGINS" env-separator:"," env-default:"http://localhost:5173"`
}

// Load reads the file named by path. Values from the environment (and an
// optional .env in the working directory) override the file.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return &cfg, nil
}

func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("Can not read config: %s", err)
	}
	return cfg
}
