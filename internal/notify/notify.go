// Package notify delivers best-effort notifications when an agent posts a
// new request. Channels never block the broker's request path and their
// failures are logged, not propagated.
package notify

import (
	"log/slog"

	"github.com/MEKXH/nudge/internal/config"
)

// Channel sends one notification that an agent needs human input. url
// points at the web UI where the human can respond.
type Channel interface {
	Name() string
	Notify(question, agent, url string) error
}

// Dispatcher fans a notification out to every configured channel.
type Dispatcher struct {
	channels []Channel
}

// NewDispatcher builds the channel set from config. Channels that fail to
// initialize are skipped with a warning; notification delivery is never a
// reason to refuse to serve.
func NewDispatcher(cfg config.NotifyConfig) *Dispatcher {
	d := &Dispatcher{}
	if cfg.Desktop.Enabled {
		d.channels = append(d.channels, NewDesktop())
	}
	if cfg.Telegram.Enabled {
		tg, err := NewTelegram(cfg.Telegram)
		if err != nil {
			slog.Warn("telegram channel disabled", "error", err)
		} else {
			d.channels = append(d.channels, tg)
		}
	}
	return d
}

// Notify implements the broker's Notifier collaborator.
func (d *Dispatcher) Notify(question, agent, url string) {
	for _, ch := range d.channels {
		if err := ch.Notify(question, agent, url); err != nil {
			slog.Warn("notification failed", "channel", ch.Name(), "error", err)
		}
	}
}
