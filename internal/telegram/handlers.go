package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"contribot/internal/conversation"
	"contribot/internal/core"
	"contribot/internal/log"
)

const (
	textHelp = "Available commands:\n" +
		"/start - record a new contribution\n" +
		"/cancel - abandon the contribution in progress\n" +
		"/help - show this message\n" +
		"/export_excel - receive all contributions as an Excel file (admins only)"
	textUnknownCommand = "Unknown command. Use /help to see the available commands."
	textNotAuthorized  = "❌ You are not authorized to access this data"
	textNothingExport  = "📭 There are no contributions to export yet."
	textExportFailed   = "❌ Sorry, the export failed. Please try again later."
	exportCaption      = "📊 Contributions export"
)

// API is the subset of the Bot API the handlers use. *bot.Bot satisfies it.
type API interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendDocument(ctx context.Context, params *bot.SendDocumentParams) (*models.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
	GetFile(ctx context.Context, params *bot.GetFileParams) (*models.File, error)
}

type Conversation interface {
	Handle(ctx context.Context, ev conversation.Event) conversation.Reply
}

type Exporter interface {
	Export(ctx context.Context, requester int64) (string, error)
}

// Handler maps Telegram updates onto the conversation and export job.
type Handler struct {
	api          API
	conversation Conversation
	exporter     Exporter
	client       *http.Client
	fileBaseURL  string
	logger       *log.Logger
}

func NewHandler(api API, conv Conversation, exporter Exporter, client *http.Client, fileBaseURL string, logger *log.Logger) *Handler {
	if client == nil {
		client = http.DefaultClient
	}
	return &Handler{
		api:          api,
		conversation: conv,
		exporter:     exporter,
		client:       client,
		fileBaseURL:  fileBaseURL,
		logger:       logger,
	}
}

func identity(u *models.User) core.Identity {
	name := strings.TrimSpace(u.FirstName)
	if name == "" {
		name = u.Username
	}
	return core.Identity{UserID: u.ID, DisplayName: name}
}

// command extracts "/name" from text, dropping any "@botname" suffix.
func command(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	cmd := strings.Fields(text)[0]
	if at := strings.IndexByte(cmd, '@'); at >= 0 {
		cmd = cmd[:at]
	}
	return cmd, true
}

// HandleUpdate routes any update. Commands registered on the bot arrive
// here too so a single path serves every entry point.
func (h *Handler) HandleUpdate(ctx context.Context, update *models.Update) {
	switch {
	case update.CallbackQuery != nil:
		h.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.From != nil:
		h.handleMessage(ctx, update.Message)
	}
}

func (h *Handler) handleMessage(ctx context.Context, msg *models.Message) {
	id := identity(msg.From)
	chatID := msg.Chat.ID

	if cmd, ok := command(msg.Text); ok {
		h.handleCommand(ctx, cmd, chatID, id)
		return
	}

	var ev conversation.Event
	switch {
	case len(msg.Photo) > 0:
		messagesProcessed.WithLabelValues("photo").Inc()
		// Sizes are ordered smallest first.
		largest := msg.Photo[len(msg.Photo)-1]
		ev = conversation.Photo(id, h.fetchFile(largest.FileID))
	case msg.Document != nil || msg.Video != nil || msg.Sticker != nil || msg.Voice != nil || msg.Audio != nil:
		messagesProcessed.WithLabelValues("attachment").Inc()
		ev = conversation.Attachment(id)
	case msg.Text != "":
		messagesProcessed.WithLabelValues("text").Inc()
		ev = conversation.Text(id, msg.Text)
	default:
		return
	}
	h.reply(ctx, chatID, id, ev, h.conversation.Handle(ctx, ev))
}

func (h *Handler) handleCommand(ctx context.Context, cmd string, chatID int64, id core.Identity) {
	switch cmd {
	case "/start":
		commandsProcessed.WithLabelValues("start").Inc()
		ev := conversation.Start(id)
		h.reply(ctx, chatID, id, ev, h.conversation.Handle(ctx, ev))
	case "/cancel":
		commandsProcessed.WithLabelValues("cancel").Inc()
		ev := conversation.Cancel(id)
		h.reply(ctx, chatID, id, ev, h.conversation.Handle(ctx, ev))
	case "/help":
		commandsProcessed.WithLabelValues("help").Inc()
		h.sendText(ctx, chatID, textHelp)
	case "/export_excel":
		commandsProcessed.WithLabelValues("export_excel").Inc()
		h.handleExport(ctx, chatID, id)
	default:
		commandsProcessed.WithLabelValues("unknown").Inc()
		h.sendText(ctx, chatID, textUnknownCommand)
	}
}

func (h *Handler) handleCallback(ctx context.Context, cq *models.CallbackQuery) {
	callbacksProcessed.Inc()
	if _, err := h.api.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cq.ID}); err != nil {
		h.logger.WarnContext(ctx, "Failed to answer callback query", log.FieldError, err.Error())
	}

	id := identity(&cq.From)
	ev := conversation.Select(id, cq.Data)
	h.reply(ctx, callbackChatID(cq), id, ev, h.conversation.Handle(ctx, ev))
}

func callbackChatID(cq *models.CallbackQuery) int64 {
	switch {
	case cq.Message.Message != nil:
		return cq.Message.Message.Chat.ID
	case cq.Message.InaccessibleMessage != nil:
		return cq.Message.InaccessibleMessage.Chat.ID
	default:
		// Private chats share the user's id.
		return cq.From.ID
	}
}

func (h *Handler) reply(ctx context.Context, chatID int64, id core.Identity, ev conversation.Event, reply conversation.Reply) {
	if reply.Err != nil {
		errorsTotal.WithLabelValues(errorType(reply.Err)).Inc()
		h.logger.DebugContext(ctx, "Conversation reported an error",
			log.FieldUserID, id.UserID,
			log.FieldEvent, ev.Kind.String(),
			log.FieldError, reply.Err.Error())
	}
	if reply.Stored > 0 {
		contributionsRecorded.Add(float64(reply.Stored))
	}

	for _, msg := range reply.Messages {
		params := &bot.SendMessageParams{ChatID: chatID, Text: msg.Text}
		if kb := inlineKeyboard(msg); kb != nil {
			params.ReplyMarkup = kb
		}
		if _, err := h.api.SendMessage(ctx, params); err != nil {
			errorsTotal.WithLabelValues("send_message").Inc()
			h.logger.ErrorContext(ctx, "Failed to send message",
				log.FieldUserID, id.UserID,
				log.FieldError, err.Error())
			return
		}
	}
}

func errorType(err error) string {
	switch {
	case core.IsValidation(err):
		return "validation"
	case errors.Is(err, core.ErrStorageFault):
		return "storage"
	case errors.Is(err, conversation.ErrDownload):
		return "download"
	default:
		return "other"
	}
}

func (h *Handler) sendText(ctx context.Context, chatID int64, text string) {
	if _, err := h.api.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		errorsTotal.WithLabelValues("send_message").Inc()
		h.logger.ErrorContext(ctx, "Failed to send message", log.FieldError, err.Error())
	}
}

func (h *Handler) handleExport(ctx context.Context, chatID int64, id core.Identity) {
	path, err := h.exporter.Export(ctx, id.UserID)
	switch {
	case errors.Is(err, core.ErrNotAuthorized):
		exportsTotal.WithLabelValues("denied").Inc()
		h.logger.WarnContext(ctx, "Unauthorized export attempt", log.FieldUserID, id.UserID)
		h.sendText(ctx, chatID, textNotAuthorized)
		return
	case errors.Is(err, core.ErrNothingToExport):
		exportsTotal.WithLabelValues("empty").Inc()
		h.sendText(ctx, chatID, textNothingExport)
		return
	case err != nil:
		exportsTotal.WithLabelValues("failed").Inc()
		h.logger.ErrorContext(ctx, "Export failed", log.FieldUserID, id.UserID, log.FieldError, err.Error())
		h.sendText(ctx, chatID, textExportFailed)
		return
	}

	if err := h.sendDocument(ctx, chatID, path); err != nil {
		exportsTotal.WithLabelValues("failed").Inc()
		errorsTotal.WithLabelValues("send_document").Inc()
		h.logger.ErrorContext(ctx, "Failed to send export", log.FieldExportPath, path, log.FieldError, err.Error())
		h.sendText(ctx, chatID, textExportFailed)
		return
	}
	exportsTotal.WithLabelValues("sent").Inc()
	h.logger.InfoContext(ctx, "Export sent", log.FieldUserID, id.UserID, log.FieldExportPath, path)
}

func (h *Handler) sendDocument(ctx context.Context, chatID int64, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open export: %w", err)
	}
	defer f.Close()

	_, err = h.api.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID:   chatID,
		Document: &models.InputFileUpload{Filename: filepath.Base(path), Data: f},
		Caption:  exportCaption,
	})
	if err != nil {
		return fmt.Errorf("send document: %w", err)
	}
	return nil
}
