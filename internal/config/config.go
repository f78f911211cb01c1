package config

import "os"

type Config struct {
	Port            string
	DefaultProvider string
	GeminiKey       string
	GeminiBaseURL   string
	GeminiModel     string
	GeminiTTSModel  string
	OpenAIKey       string
	OpenAIBaseURL   string
	OpenAIModel     string
	DBPath          string
	ExportEnabled   bool
	ExportFile      string
}

func FromEnv() Config {
	c := Config{}
	c.Port = getenv("PORT", "8080")
	c.DefaultProvider = getenv("DEFAULT_PROVIDER", "gemini")
	c.GeminiKey = os.Getenv("GEMINI_API_KEY")
	c.GeminiBaseURL = os.Getenv("GEMINI_BASE_URL")
	c.GeminiModel = getenv("GEMINI_MODEL", "gemini-2.0-flash")
	c.GeminiTTSModel = getenv("GEMINI_TTS_MODEL", "gemini-2.5-flash-preview-tts")
	c.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	c.OpenAIBaseURL = os.Getenv("OPENAI_BASE_URL")
	c.OpenAIModel = getenv("OPENAI_MODEL", "gpt-4o-mini")
	c.DBPath = getenv("DB_PATH", "./showdown.db")
	c.ExportEnabled = getenv("EXPORT_ENABLED", "false") == "true"
	c.ExportFile = getenv("EXPORT_FILE", "./showdown-results.txt")
	return c
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
