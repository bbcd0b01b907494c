package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"contribot/internal/log"
)

const fileBaseURL = "https://api.telegram.org/file/bot%s/"

type Bot struct {
	api     *bot.Bot
	handler *Handler
	logger  *log.Logger
}

type Config struct {
	Token  string
	Debug  bool
	Client *http.Client // used for photo downloads
}

// New creates a long-polling bot that dispatches to conv and exporter.
func New(cfg Config, conv Conversation, exporter Exporter, logger *log.Logger) (*Bot, error) {
	if cfg.Token == "" {
		return nil, errors.New("telegram token is required")
	}

	h := NewHandler(nil, conv, exporter, cfg.Client, fmt.Sprintf(fileBaseURL, cfg.Token), logger)

	api, err := bot.New(cfg.Token, h.botOptions(cfg.Debug)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	h.api = api

	b := &Bot{
		api:     api,
		handler: h,
		logger:  logger,
	}
	b.registerHandlers()
	return b, nil
}

// Start polls for updates until ctx is done.
func (b *Bot) Start(ctx context.Context) error {
	me, err := b.api.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("failed to get bot info: %w", err)
	}

	b.logger.InfoContext(ctx, "Telegram bot started", "username", me.Username, "id", me.ID)
	b.api.Start(ctx)
	b.logger.InfoContext(ctx, "Telegram bot stopped")
	return nil
}

func (b *Bot) registerHandlers() {
	for _, cmd := range []string{"/start", "/cancel", "/help", "/export_excel"} {
		b.api.RegisterHandler(bot.HandlerTypeMessageText, cmd, bot.MatchTypeExact, b.handler.botHandler)
	}
	b.api.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, b.handler.botHandler)
}

// botOptions makes updates run one at a time in arrival order, so a
// user's inputs reach the conversation in the order they were sent.
func (h *Handler) botOptions(debug bool) []bot.Option {
	opts := []bot.Option{
		bot.WithDefaultHandler(h.botHandler),
		bot.WithNotAsyncHandlers(),
		bot.WithWorkers(1),
	}
	if debug {
		opts = append(opts, bot.WithDebug())
	}
	return opts
}

func (h *Handler) botHandler(ctx context.Context, _ *bot.Bot, update *models.Update) {
	h.HandleUpdate(ctx, update)
}
