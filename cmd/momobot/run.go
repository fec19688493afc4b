package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MomoTMR/MomoTMR-bot/bot"
	"github.com/MomoTMR/MomoTMR-bot/internal/logutil"
	"github.com/MomoTMR/MomoTMR-bot/providers/openai"
	"github.com/MomoTMR/MomoTMR-bot/speech"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the bot (long polling)",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logutil.LoggerFromViper()
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			botToken := strings.TrimSpace(viper.GetString("telegram.bot_token"))
			if botToken == "" {
				return fmt.Errorf("telegram.bot_token is required (set %s_TELEGRAM_BOT_TOKEN or the config file)", envPrefix)
			}
			apiKey := strings.TrimSpace(viper.GetString("llm.api_key"))
			if apiKey == "" {
				return fmt.Errorf("llm.api_key is required (set %s_LLM_API_KEY or the config file)", envPrefix)
			}

			tg, err := tgbotapi.NewBotAPI(botToken)
			if err != nil {
				return fmt.Errorf("telegram auth: %w", err)
			}

			endpoint := strings.TrimSpace(viper.GetString("llm.endpoint"))
			model := strings.TrimSpace(viper.GetString("llm.model"))
			client := openai.New(endpoint, apiKey, model, viper.GetDuration("llm.request_timeout"))

			speechEndpoint := strings.TrimSpace(viper.GetString("speech.endpoint"))
			if speechEndpoint == "" {
				speechEndpoint = endpoint
			}
			speechKey := strings.TrimSpace(viper.GetString("speech.api_key"))
			if speechKey == "" {
				speechKey = apiKey
			}
			sp := speech.New(
				speechEndpoint,
				speechKey,
				viper.GetString("speech.stt_model"),
				viper.GetString("speech.tts_model"),
				viper.GetDuration("speech.request_timeout"),
			)

			b, err := bot.New(tg, client, sp, bot.Config{
				Model:           model,
				SpeechLanguage:  viper.GetString("speech.language"),
				TTSVoice:        viper.GetString("speech.tts_voice"),
				AssetsDir:       viper.GetString("assets.dir"),
				TempDir:         viper.GetString("bot.temp_dir"),
				PollTimeout:     viper.GetDuration("telegram.poll_timeout"),
				HandlerTimeout:  viper.GetDuration("telegram.handler_timeout"),
				MenuReturnDelay: viper.GetDuration("bot.menu_return_delay"),
				MaxConcurrency:  viper.GetInt("telegram.max_concurrency"),
			}, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info("bot_start", "username", tg.Self.UserName, "model", model)
			return b.Run(ctx)
		},
	}
}
