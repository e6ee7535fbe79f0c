package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"ShutdownScanner/internal/domain"
	"ShutdownScanner/internal/metrics"
	"ShutdownScanner/internal/ports"
	"ShutdownScanner/internal/usecase"
)

const (
	startMessage = "Приветствую! Тут вы можете следить за плановыми отключениями " +
		"коммунальных услуг по вашим адресам. Это не официальный источник информации, " +
		"возможны ошибки. Начните с команды /add и далее адрес в формате " +
		"«улица, д.номер», например: /add ул. Садовая, д.25"
	unknownMessage = "Неизвестная команда. Доступные команды: /add, /list, /delete, /shutdowns"

	deleteCallbackPrefix = "d:"
)

// Bot is the chat front end: it manages watched addresses and answers on-demand
// shutdown checks. It also implements ports.Notifier so the pipeline pushes
// through the same API connection.
type Bot struct {
	api    *tgbotapi.BotAPI
	repo   ports.SubscriptionRepository
	source ports.ShutdownSource
	city   domain.City
	logger *slog.Logger
}

var _ ports.Notifier = (*Bot)(nil)

// NewBot authorizes against the Telegram API.
func NewBot(token string, repo ports.SubscriptionRepository, source ports.ShutdownSource, city domain.City, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{api: api, repo: repo, source: source, city: city, logger: logger}, nil
}

// Run registers the command menu and consumes updates until the context is
// canceled.
func (b *Bot) Run(ctx context.Context) error {
	commands := []tgbotapi.BotCommand{
		{Command: "add", Description: "Добавить адрес"},
		{Command: "list", Description: "Показать все адреса"},
		{Command: "delete", Description: "Удалить адрес"},
		{Command: "shutdowns", Description: "Проверить отключения"},
	}
	if _, err := b.api.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		return fmt.Errorf("set bot commands: %w", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message != nil {
				b.handleMessage(ctx, update.Message)
			} else if update.CallbackQuery != nil {
				b.handleCallback(ctx, update.CallbackQuery)
			}
		}
	}
}

// Notify sends one rendered report to a chat.
func (b *Bot) Notify(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if !message.IsCommand() {
		return
	}

	switch message.Command() {
	case "start":
		b.reply(message.Chat.ID, startMessage)
	case "add":
		b.handleAdd(ctx, message)
	case "list":
		b.handleList(ctx, message)
	case "delete":
		b.handleDelete(ctx, message)
	case "shutdowns":
		b.handleShutdowns(ctx, message)
	default:
		b.reply(message.Chat.ID, unknownMessage)
	}
}

func (b *Bot) handleAdd(ctx context.Context, message *tgbotapi.Message) {
	rawAddress := strings.TrimSpace(message.CommandArguments())
	if rawAddress == "" {
		b.reply(message.Chat.ID, "Передайте адрес вместе с командой: /add ул. Садовая, д.25")
		return
	}

	if err := b.repo.UpsertUser(ctx, message.Chat.ID, message.From.UserName); err != nil {
		b.logger.Error("upsert user failed", "chat_id", message.Chat.ID, "error", err)
		metrics.SubscriptionCounter.WithLabelValues("failure").Inc()
		b.reply(message.Chat.ID, "Не получилось сохранить адрес, попробуйте позже.")
		return
	}

	stored, err := b.repo.AddAddress(ctx, message.Chat.ID, b.city, rawAddress)
	if err != nil {
		b.logger.Error("add address failed", "chat_id", message.Chat.ID, "error", err)
		metrics.SubscriptionCounter.WithLabelValues("failure").Inc()
		b.reply(message.Chat.ID, "Не получилось сохранить адрес, попробуйте позже.")
		return
	}

	metrics.SubscriptionCounter.WithLabelValues("success").Inc()
	b.reply(message.Chat.ID, fmt.Sprintf("Адрес «%s» добавлен (%s).", stored.Raw, stored.City.DisplayName()))
}

func (b *Bot) handleList(ctx context.Context, message *tgbotapi.Message) {
	addresses, err := b.repo.Addresses(ctx, message.Chat.ID)
	if err != nil {
		b.logger.Error("list addresses failed", "chat_id", message.Chat.ID, "error", err)
		b.reply(message.Chat.ID, "Не получилось загрузить адреса, попробуйте позже.")
		return
	}

	if len(addresses) == 0 {
		b.reply(message.Chat.ID, "Пока нет ни одного адреса. Добавьте первый командой /add.")
		return
	}

	lines := make([]string, 0, len(addresses)+1)
	lines = append(lines, "Ваши адреса:")
	for _, addr := range addresses {
		lines = append(lines, "☑︎ "+addr.Raw)
	}
	b.reply(message.Chat.ID, strings.Join(lines, "\n"))
}

func (b *Bot) handleDelete(ctx context.Context, message *tgbotapi.Message) {
	addresses, err := b.repo.Addresses(ctx, message.Chat.ID)
	if err != nil {
		b.logger.Error("list addresses failed", "chat_id", message.Chat.ID, "error", err)
		b.reply(message.Chat.ID, "Не получилось загрузить адреса, попробуйте позже.")
		return
	}

	if len(addresses) == 0 {
		b.reply(message.Chat.ID, "Нет адресов для удаления.")
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, addr := range addresses {
		button := tgbotapi.NewInlineKeyboardButtonData(addr.Raw, deleteCallbackPrefix+addr.ID.String())
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(button))
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, "Выберите адрес для удаления:")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("send delete keyboard failed", "chat_id", message.Chat.ID, "error", err)
	}
}

func (b *Bot) handleShutdowns(ctx context.Context, message *tgbotapi.Message) {
	addresses, err := b.repo.Addresses(ctx, message.Chat.ID)
	if err != nil {
		b.logger.Error("list addresses failed", "chat_id", message.Chat.ID, "error", err)
		b.reply(message.Chat.ID, "Не получилось загрузить адреса, попробуйте позже.")
		return
	}

	if len(addresses) == 0 {
		b.reply(message.Chat.ID, "Пока нет ни одного адреса. Добавьте первый командой /add.")
		return
	}

	raws := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		raws = append(raws, addr.Raw)
	}

	byService := b.source.ForAddresses(ctx, b.city, raws)
	b.reply(message.Chat.ID, usecase.FormatReport(byService))
}

func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	data := callback.Data
	if !strings.HasPrefix(data, deleteCallbackPrefix) {
		b.logger.Warn("unknown callback data", "data", data)
		return
	}

	id, err := uuid.Parse(strings.TrimPrefix(data, deleteCallbackPrefix))
	if err != nil {
		b.logger.Warn("bad address id in callback", "data", data, "error", err)
		return
	}

	if err := b.repo.RemoveAddress(ctx, callback.Message.Chat.ID, id); err != nil {
		b.logger.Error("remove address failed", "chat_id", callback.Message.Chat.ID, "error", err)
		return
	}

	// Hide the keyboard once a choice is made.
	empty := tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
	edit := tgbotapi.NewEditMessageReplyMarkup(callback.Message.Chat.ID, callback.Message.MessageID, empty)
	if _, err := b.api.Request(edit); err != nil {
		b.logger.Warn("hide keyboard failed", "error", err)
	}

	b.reply(callback.Message.Chat.ID, "Адрес удалён.")
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "Готово")); err != nil {
		b.logger.Warn("answer callback failed", "error", err)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Error("send reply failed", "chat_id", chatID, "error", err)
	}
}
