package model

// ================ Config ================

type ConversationConfig struct {
	TTL    string `envconfig:"CONVERSATION_TTL" default:"30m"`
	Window struct {
		MaxTurns int `envconfig:"CONVERSATION_WINDOW_MAX_TURNS" default:"8"`
	}
}

type ChatModelConfig struct {
	Model       string  `envconfig:"CHAT_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"CHAT_MAX_TOKENS" default:"2048"`
	Temperature float32 `envconfig:"CHAT_TEMPERATURE" default:"0.3"`
}

type PromptConfig struct {
	AssistantName string `envconfig:"PROMPT_ASSISTANT_NAME" default:"SuiMate"`
	Network       string `envconfig:"PROMPT_NETWORK" default:"Sui"`
}
