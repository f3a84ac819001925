package model

// ================ Config ================

type GroqConfig struct {
	APIKey      string  `envconfig:"GROQ_API_KEY"`
	BaseURL     string  `envconfig:"GROQ_BASE_URL" default:"https://api.groq.com/openai/v1"`
	Model       string  `envconfig:"GROQ_MODEL" default:"llama-3.3-70b-versatile"`
	MaxTokens   int     `envconfig:"GROQ_MAX_TOKENS" default:"1500"`
	Temperature float32 `envconfig:"GROQ_TEMPERATURE" default:"0.6"`
	TopP        float32 `envconfig:"GROQ_TOP_P" default:"0.9"`
}

type ClaudeConfig struct {
	APIKey      string  `envconfig:"ANTHROPIC_API_KEY"`
	BaseURL     string  `envconfig:"ANTHROPIC_BASE_URL" default:"https://api.anthropic.com"`
	Model       string  `envconfig:"CLAUDE_MODEL" default:"claude-3-5-sonnet-20241022"`
	MaxTokens   int     `envconfig:"CLAUDE_MAX_TOKENS" default:"1500"`
	Temperature float32 `envconfig:"CLAUDE_TEMPERATURE" default:"0.6"`
}

type GeminiConfig struct {
	APIKey      string  `envconfig:"GEMINI_API_KEY"`
	BaseURL     string  `envconfig:"GEMINI_BASE_URL"`
	Model       string  `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`
	MaxTokens   int     `envconfig:"GEMINI_MAX_TOKENS" default:"1500"`
	Temperature float32 `envconfig:"GEMINI_TEMPERATURE" default:"0.5"`
}

type MentorConfig struct {
	// PreferredModel is one of auto, groq, claude, gemini. Under auto the
	// first available provider in priority order answers.
	PreferredModel string `envconfig:"PREFERRED_MODEL" default:"auto"`
}

type ServerConfig struct {
	Port         string `envconfig:"SERVER_PORT" default:"8080"`
	AllowOrigins string `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
}

type ConversationConfig struct {
	TTL      string `envconfig:"CONVERSATION_TTL" default:"15m"`
	MaxTurns int    `envconfig:"CONVERSATION_MAX_TURNS" default:"20"`
}
