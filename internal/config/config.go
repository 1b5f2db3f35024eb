package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the assistant.
type Config struct {
	// Server configuration
	Port string

	// Gemini API configuration. An empty key disables the LLM parser and
	// the pipeline runs on the rule-based fallback alone.
	GeminiAPIKey   string
	GeminiModel    string
	LLMMaxTokens   int
	LLMTemperature float64
	LLMRPS         float64

	// Pipeline tuning
	LLMConfidenceFloor float64
	InterStepDelay     time.Duration

	// Persistence
	DataPath         string
	SnapshotInterval time.Duration

	// Context store bounds
	MaxTurns    int
	MaxActions  int
	MaxEmotions int

	// Safety
	SafetyPolicyPath string
	EnableSafeMode   bool

	// Desktop telephony. When set ("x,y" in screen pixels) the call-button
	// position is recorded at startup so dialing can click it directly.
	PhoneDialButton string
}

var AppConfig *Config

// Load loads configuration from environment variables.
func Load() error {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}

	AppConfig = &Config{
		Port:               getEnv("PORT", "8080"),
		GeminiAPIKey:       apiKey,
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.0-flash-exp"),
		LLMMaxTokens:       getEnvInt("LLM_MAX_TOKENS", 2000),
		LLMTemperature:     getEnvFloat("LLM_TEMPERATURE", 0.7),
		LLMRPS:             getEnvFloat("LLM_RPS", 1.0),
		LLMConfidenceFloor: getEnvFloat("LLM_CONFIDENCE_FLOOR", 0.5),
		InterStepDelay:     time.Duration(getEnvInt("INTER_STEP_DELAY_MS", 300)) * time.Millisecond,
		DataPath:           getEnv("DATA_PATH", "./data"),
		SnapshotInterval:   time.Duration(getEnvInt("SNAPSHOT_INTERVAL_SECONDS", 60)) * time.Second,
		MaxTurns:           getEnvInt("MAX_TURNS", 50),
		MaxActions:         getEnvInt("MAX_ACTIONS", 20),
		MaxEmotions:        getEnvInt("MAX_EMOTIONS", 50),
		SafetyPolicyPath:   getEnv("SAFETY_POLICY_PATH", ""),
		EnableSafeMode:     getEnvBool("ENABLE_SAFE_MODE", true),
		PhoneDialButton:    getEnv("PHONE_DIAL_BUTTON", ""),
	}

	if AppConfig.LLMConfidenceFloor < 0 || AppConfig.LLMConfidenceFloor > 1 {
		return fmt.Errorf("LLM_CONFIDENCE_FLOOR must be in [0,1], got %v", AppConfig.LLMConfidenceFloor)
	}

	// Ensure the data directory exists
	if err := os.MkdirAll(AppConfig.DataPath, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	return nil
}

// Helper functions for getting environment variables with defaults
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
