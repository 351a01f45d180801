package config

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type HTTPConfig struct {
	Address string        `yaml:"address" env:"API_ADDRESS" env-default:":8080"`
	Timeout time.Duration `yaml:"timeout" env:"API_TIMEOUT" env-default:"5s"`
}

type JWTConfig struct {
	Secret string        `yaml:"secret" env:"JWT_SECRET" env-required:"true"`
	TTL    time.Duration `yaml:"ttl" env:"JWT_TTL" env-default:"24h"`
	Issuer string        `yaml:"issuer" env:"JWT_ISSUER" env-default:"groodo-api"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
}

type RateLimitConfig struct {
	Enabled bool `yaml:"enabled" env:"RATE_LIMIT_ENABLED" env-default:"true"`
	// Rate in ulule/limiter notation, e.g. "100-M" for 100 requests a minute.
	Rate string `yaml:"rate" env:"RATE_LIMIT_RATE" env-default:"300-M"`
}

type Config struct {
	LogLevel  string     `yaml:"log_level" env:"LOG_LEVEL" env-default:"DEBUG"`
	HTTP      HTTPConfig `yaml:"api_server"`
	DBAddress string     `yaml:"db_address" env:"DB_ADDRESS" env-required:"true"`

	JWT JWTConfig `yaml:"jwt"`

	// bcrypt cost for stored passwords
	PasswordCost int `yaml:"password_cost" env:"PASSWORD_COST" env-default:"10"`

	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

func MustLoad(configPath string) Config {
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

func Load(configPath string) (Config, error) {
	var cfg Config

	// если путь пустой - просто env
	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, errors.Join(errors.New("cannot read env"), err)
		}
		return cfg, nil
	}

	// пробуем файл, если его нет - env
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		var pe *os.PathError
		if errors.As(err, &pe) {
			if err := cleanenv.ReadEnv(&cfg); err != nil {
				return Config{}, errors.Join(errors.New("cannot read env"), err)
			}
			return cfg, nil
		}
		return Config{}, errors.Join(errors.New("cannot read config "+configPath), err)
	}

	return cfg, nil
}
