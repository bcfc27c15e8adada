package config

import (
	"os"
	"time"
)

// Config carries all runtime settings. Everything comes from the
// environment with development defaults.
type Config struct {
	MongoURI  string
	MongoDB   string
	RedisAddr string
	HTTPPort  string

	QuestionsPath string
	ProfilesPath  string

	SessionTTL    time.Duration
	SweepInterval time.Duration

	JWTSecret     string
	AdminUsername string
	AdminPassword string
}

// Load reads the configuration from the environment.
func Load() *Config {
	return &Config{
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:       getEnv("MONGO_DB", "mindprint"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		HTTPPort:      getEnv("PORT", "8080"),
		QuestionsPath: getEnv("QUESTIONS_PATH", "data/questions.yaml"),
		ProfilesPath:  getEnv("PROFILES_PATH", "data/personality_profiles.yaml"),
		SessionTTL:    getDuration("SESSION_TTL", 5*time.Minute),
		SweepInterval: getDuration("SWEEP_INTERVAL", time.Minute),
		JWTSecret:     getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "password123"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}
