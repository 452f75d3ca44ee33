package config

import (
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env         string      `yaml:"env" env:"ENV" env-default:"local"`
	StoragePath string      `yaml:"storage_path" env:"STORAGE_PATH" env-required:"true"`
	HTTP        HTTPConfig  `yaml:"http"`
	Mongo       MongoConfig `yaml:"mongo"`
	Tokens      TokenConfig `yaml:"tokens"`
}

type HTTPConfig struct {
	Port    int           `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	Timeout time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"10s"`
}

type MongoConfig struct {
	URI      string        `yaml:"uri" env:"MONGO_URI" env-default:"mongodb://localhost:27017"`
	Database string        `yaml:"database" env:"MONGO_DATABASE" env-default:"jobtrack"`
	Timeout  time.Duration `yaml:"timeout" env:"MONGO_TIMEOUT" env-default:"5s"`
}

// TokenConfig carries the signing setup. Access and refresh secrets are
// both required and must differ; the codec rejects equal secrets at startup.
type TokenConfig struct {
	AccessSecret  string        `yaml:"access_secret" env:"JWT_ACCESS_SECRET" env-required:"true"`
	RefreshSecret string        `yaml:"refresh_secret" env:"JWT_REFRESH_SECRET" env-required:"true"`
	Algorithm     string        `yaml:"algorithm" env:"JWT_ALGORITHM" env-default:"HS256"`
	AccessTTL     time.Duration `yaml:"access_ttl" env:"JWT_ACCESS_TTL" env-default:"15m"`
	RefreshTTL    time.Duration `yaml:"refresh_ttl" env:"JWT_REFRESH_TTL" env-default:"24h"`
}

func LoadConfig(path string) *Config {
	var cfg Config

	if _, err := os.Stat(path); os.IsNotExist(err) {
		panic("config file not found: " + path)
	}

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		panic("failed to read config: " + err.Error())
	}

	return &cfg
}
