package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"gamedocs.dev/interview-wizard/internal/wizard"
)

type Config struct {
	GeminiAPIKey  string
	DatabaseURL   string
	HTTPPort      string
	LogLevel      string
	ExportDir     string
	TagVocabulary []string
}

var AppConfig Config

// defaultTagVocabulary is the fixed candidate set for tag suggestions
// when TAG_VOCABULARY is not configured.
var defaultTagVocabulary = []string{
	"concept", "genre", "audience", "mechanics", "visuals", "story",
	"platforms", "features", "monetization", "resources", "scope",
}

func LoadConfig() {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = Config{
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		DatabaseURL:   getEnv("DATABASE_URL", "interview_wizard.db"),
		HTTPPort:      getEnv("HTTP_PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "INFO"),
		ExportDir:     getEnv("EXPORT_DIR", "exports"),
		TagVocabulary: getEnvAsList("TAG_VOCABULARY", defaultTagVocabulary),
	}

	if AppConfig.GeminiAPIKey == "" {
		log.Fatal("GEMINI_API_KEY environment variable is required")
	}
}

// DefaultSettings returns the generation settings used to seed the
// settings store on first read. Default-filling is owned here, at the
// configuration layer; the wizard core only ever validates.
func DefaultSettings() wizard.Settings {
	return wizard.Settings{
		Temperature:     getEnvAsFloat("GEN_TEMPERATURE", 0.9),
		MaxOutputTokens: int32(getEnvAsInt("GEN_MAX_OUTPUT_TOKENS", 1024)),
		TopP:            getEnvAsFloat("GEN_TOP_P", 1),
		TopK:            int32(getEnvAsInt("GEN_TOP_K", 1)),
		Model:           getEnv("GEN_MODEL", "gemini-2.5-flash"),
		ProjectID:       getEnv("GEN_PROJECT_ID", "local-dev"),
		Region:          getEnv("GEN_REGION", "us-central1"),
		StorageBucket:   getEnv("GEN_STORAGE_BUCKET", ""),
	}
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float32) float32 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 32); err == nil {
		return float32(value)
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(valueStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
