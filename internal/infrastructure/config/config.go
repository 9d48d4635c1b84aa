package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type KafkaConfig struct {
	Brokers []string
}

type ScoringConfig struct {
	Threshold       float64
	ReasonCodeCount int
	OverwritePolicy string
}

type TrainingConfig struct {
	MinRecords int
}

type Config struct {
	HTTPPort     int
	DB           DatabaseConfig
	Kafka        KafkaConfig
	Scoring      ScoringConfig
	Training     TrainingConfig
	JWTSecret    string
	JWTPublicKey string
	LogLevel     string
	LogFormat    string
	ServiceName  string
}

// Validate rejects a configuration the service cannot safely run with.
func (c Config) Validate() error {
	if c.DB.Password == "" {
		return fmt.Errorf("DB_PASSWORD environment variable is required")
	}
	if c.JWTSecret == "" && c.JWTPublicKey == "" {
		return fmt.Errorf("JWT_SECRET or JWT_PUBLIC_KEY environment variable is required")
	}
	if c.Scoring.Threshold <= 0 || c.Scoring.Threshold >= 1 {
		return fmt.Errorf("SCORE_THRESHOLD must be in (0, 1), got %v", c.Scoring.Threshold)
	}
	if c.Scoring.ReasonCodeCount < 3 || c.Scoring.ReasonCodeCount > 5 {
		return fmt.Errorf("REASON_CODE_COUNT must be in [3, 5], got %d", c.Scoring.ReasonCodeCount)
	}
	if _, err := valueobject.NewOverwritePolicy(c.Scoring.OverwritePolicy); err != nil {
		return fmt.Errorf("OVERWRITE_POLICY: %w", err)
	}
	if c.Training.MinRecords < 1 {
		return fmt.Errorf("MIN_TRAIN_RECORDS must be positive, got %d", c.Training.MinRecords)
	}
	return nil
}

func Load() Config {
	return Config{
		HTTPPort: getEnvInt("HTTP_PORT", 8094),
		DB: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "bib"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "bib_creditrisk"),
			SSLMode:  getEnv("DB_SSLMODE", "require"),
		},
		Kafka: KafkaConfig{
			Brokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		},
		Scoring: ScoringConfig{
			Threshold:       getEnvFloat("SCORE_THRESHOLD", 0.5),
			ReasonCodeCount: getEnvInt("REASON_CODE_COUNT", 5),
			OverwritePolicy: getEnv("OVERWRITE_POLICY", "REJECT"),
		},
		Training: TrainingConfig{
			MinRecords: getEnvInt("MIN_TRAIN_RECORDS", 30),
		},
		JWTSecret:    getEnv("JWT_SECRET", ""),
		JWTPublicKey: getEnv("JWT_PUBLIC_KEY", ""),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "json"),
		ServiceName:  "creditrisk-service",
	}
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
