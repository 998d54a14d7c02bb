package gosquirrelstash

import (
	"os"
	"strconv"
	"strings"

	"github.com/Keksclan/goSquirrelStash/cache"
	"github.com/joho/godotenv"
)

// LoadEnv builds a store configuration from the environment, reading an
// optional .env file first:
//
//	STASH_REDIS_ADDR      host:port of the store (required)
//	STASH_REDIS_USERNAME  optional username
//	STASH_REDIS_PASSWORD  optional password
//	STASH_REDIS_DB        database index (standalone only, default 0)
//	STASH_REDIS_CLUSTER   "true" to use cluster topology
//
// A missing address is reported by [New], which validates the returned
// configuration.
func LoadEnv() cache.ConnConfig {
	_ = godotenv.Load()
	return cache.ConnConfig{
		Addr:     os.Getenv("STASH_REDIS_ADDR"),
		Username: os.Getenv("STASH_REDIS_USERNAME"),
		Password: os.Getenv("STASH_REDIS_PASSWORD"),
		DB:       getEnvAsInt("STASH_REDIS_DB", 0),
		Cluster:  getEnvAsBool("STASH_REDIS_CLUSTER", false),
	}
}

func getEnvAsInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvAsBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
