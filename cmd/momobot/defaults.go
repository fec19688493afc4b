package main

import (
	"time"

	"github.com/spf13/viper"
)

func initViperDefaults() {
	// Telegram
	viper.SetDefault("telegram.bot_token", "")
	viper.SetDefault("telegram.poll_timeout", 60*time.Second)
	viper.SetDefault("telegram.handler_timeout", 2*time.Minute)
	viper.SetDefault("telegram.max_concurrency", 8)

	// LLM gateway
	viper.SetDefault("llm.endpoint", "https://api.openai.com")
	viper.SetDefault("llm.api_key", "")
	viper.SetDefault("llm.model", "gpt-3.5-turbo")
	viper.SetDefault("llm.request_timeout", 90*time.Second)

	// Speech pipeline (shares the LLM endpoint and key unless overridden)
	viper.SetDefault("speech.endpoint", "")
	viper.SetDefault("speech.api_key", "")
	viper.SetDefault("speech.stt_model", "whisper-1")
	viper.SetDefault("speech.tts_model", "tts-1")
	viper.SetDefault("speech.tts_voice", "alloy")
	viper.SetDefault("speech.language", "ru")
	viper.SetDefault("speech.request_timeout", 2*time.Minute)

	// Bot behavior
	viper.SetDefault("assets.dir", "assets")
	viper.SetDefault("bot.temp_dir", "")
	viper.SetDefault("bot.menu_return_delay", 3*time.Second)

	// Logging
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")
	viper.SetDefault("logging.add_source", false)
}
