package main

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr           string        `yaml:"addr"`
	DatabasePath   string        `yaml:"database_path"`
	SecureCookies  bool          `yaml:"secure_cookies"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	RedisURL       string        `yaml:"redis_url"`
	RedisChannel   string        `yaml:"redis_channel"`
	LogLevel       string        `yaml:"log_level"`
	AtomicCredit   bool          `yaml:"atomic_credit"`
	ResetStudents  bool          `yaml:"reset_students"`
	SeedPath       string        `yaml:"seed_path"`
	ShutdownGrace  time.Duration `yaml:"shutdown_grace"`
}

// LoadConfig builds the config from the environment (a .env file in the
// working directory is honoured) and then overlays the YAML file at path,
// if any.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "load .env")
	}

	addr := getEnv("QA_ADDR", "")
	if addr == "" {
		addr = ":" + getEnv("PORT", "8080")
	}
	cfg := &Config{
		Addr:           addr,
		DatabasePath:   getEnv("QA_DATABASE_PATH", "forum.db"),
		SecureCookies:  getEnv("SECURE_COOKIES", "") == "true",
		AllowedOrigins: splitList(getEnv("QA_ALLOWED_ORIGINS", "")),
		RedisURL:       getEnv("QA_REDIS_URL", ""),
		RedisChannel:   getEnv("QA_REDIS_CHANNEL", "qa-forum-changes"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AtomicCredit:   getEnv("QA_ATOMIC_CREDIT", "") == "true",
		ResetStudents:  getEnv("QA_RESET_STUDENTS", "") == "true",
		SeedPath:       getEnv("QA_SEED_PATH", "data/roster.json"),
		ShutdownGrace:  10 * time.Second,
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap(err, "open config")
		}
		defer f.Close()

		if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
			return nil, errors.Wrapf(err, "decode %s", path)
		}
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
