package notify

import (
	"fmt"

	"github.com/MEKXH/nudge/internal/config"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram delivers notifications to a single chat via a bot.
type Telegram struct {
	cfg config.TelegramConfig
	bot *tgbotapi.BotAPI
}

// NewTelegram connects the bot. Initialization talks to the Telegram API
// and fails when the token is invalid or the network is down.
func NewTelegram(cfg config.TelegramConfig) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram init failed: %w", err)
	}
	return &Telegram{cfg: cfg, bot: bot}, nil
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) Notify(question, agent, url string) error {
	if agent == "" {
		agent = "an agent"
	}
	text := fmt.Sprintf("🔔 nudge: %s needs input\n\n%s\n\nRespond at %s", agent, question, url)
	if _, err := t.bot.Send(tgbotapi.NewMessage(t.cfg.ChatID, text)); err != nil {
		return fmt.Errorf("telegram send failed: %w", err)
	}
	return nil
}
