package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

type Config struct {
	Port            int            `json:"port"`
	Env             string         `json:"env"`
	Pepper          string         `json:"pepper"`
	HMACKey         string         `json:"hmac_key"`
	CSRFKey         string         `json:"csrf_key"`
	ImagesDir       string         `json:"images_dir"`
	CacheTTLSeconds int            `json:"cache_ttl_seconds"`
	RedisAddr       string         `json:"redis_addr"`
	Database        PostgresConfig `json:"database"`
}

func (c Config) IsProd() bool {
	return c.Env == "prod"
}

type PostgresConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (pc PostgresConfig) ConnectionInfo() string {
	if pc.Password == "" {
		return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=disable", pc.Host, pc.Port, pc.User, pc.Name)
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable", pc.Host, pc.Port, pc.User, pc.Password, pc.Name)
}

func DefaultConfig() Config {
	return Config{
		Port:            8000,
		Env:             "dev",
		Pepper:          "secret-random-string",
		HMACKey:         "secret-hmac-key",
		CSRFKey:         "32-byte-long-auth-key-for-dev-00",
		ImagesDir:       "images",
		CacheTTLSeconds: 20,
		RedisAddr:       "",
		Database:        DefaultPostgresConfig(),
	}
}

func DefaultPostgresConfig() PostgresConfig {
	return PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "",
		Name:     "blognest",
	}
}

// LoadConfig loads configuration from a .config.json file if present,
// otherwise it falls back to the default dev setup. In production the file
// is required and the app will panic if none is found.
func LoadConfig(isProd bool) Config {
	f, err := os.Open(".config.json")
	if err != nil {
		if isProd {
			panic("a .config.json file is required in production")
		}
		return DefaultConfig()
	}
	defer f.Close()
	var c Config
	if err := json.NewDecoder(f).Decode(&c); err != nil {
		panic(err)
	}
	slog.Info("loaded configuration", "file", ".config.json")
	return c
}
