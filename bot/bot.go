// Package bot is the Telegram front end. It forwards user actions to the
// session and renders what the session returns.
package bot

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/korjavin/catmoodbot/config"
	"github.com/korjavin/catmoodbot/session"
)

// Bot represents the Telegram bot
type Bot struct {
	api       *tgbotapi.BotAPI
	session   *session.Session
	ownerID   int64
	imagesDir string
	logger    *zap.Logger
}

const (
	cmdStart    = "start"
	cmdHelp     = "help"
	cmdQuiz     = "quiz"
	cmdTarot    = "tarot"
	cmdHistory  = "history"
	cmdReadings = "readings"
	cmdStats    = "stats"
	cmdTrends   = "trends"
	cmdWeekdays = "weekdays"

	historyLimit = 10
	readingLimit = 3
	trendDays    = 14
)

// New creates a new bot instance
func New(cfg *config.Config, sess *session.Session, logger *zap.Logger) (*Bot, error) {
	endpoint := cfg.TelegramAPI
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	botAPI, err := tgbotapi.NewBotAPIWithAPIEndpoint(cfg.BotToken, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}
	botAPI.Debug = cfg.Debug

	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("authorized on telegram", zap.String("account", botAPI.Self.UserName))

	return &Bot{
		api:       botAPI,
		session:   sess,
		ownerID:   cfg.OwnerChatID,
		imagesDir: cfg.ImagesDir,
		logger:    logger,
	}, nil
}

// Start polls for updates and handles them one at a time until ctx is done
func (b *Bot) Start(ctx context.Context) {
	b.logger.Info("starting bot polling")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("bot polling stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	var chatID int64
	switch {
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		chatID = update.CallbackQuery.Message.Chat.ID
	case update.Message != nil:
		chatID = update.Message.Chat.ID
	default:
		return
	}

	if chatID != b.ownerID {
		b.logger.Warn("ignoring update from unknown chat", zap.Int64("chat_id", chatID))
		return
	}

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("recovered from panic while handling update", zap.Any("panic", r))
			b.sendMessage(chatID, "Something went wrong. Please try again.")
		}
	}()

	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}
	b.handleMessage(ctx, update.Message)
}

// handleMessage processes incoming messages
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	b.logger.Debug("received message", zap.Int64("chat_id", chatID), zap.String("text", message.Text))

	switch message.Command() {
	case cmdStart, cmdHelp:
		b.sendMessage(chatID, welcomeText)
	case cmdQuiz:
		step := b.session.StartQuiz()
		b.sendQuestion(chatID, step)
	case cmdTarot:
		b.handleTarot(ctx, chatID)
	case cmdHistory:
		entries, err := b.session.ViewHistory(ctx, historyLimit)
		b.reply(chatID, "mood history", err, func() string { return renderHistory(entries) })
	case cmdReadings:
		readings, err := b.session.ViewTarotHistory(ctx, readingLimit)
		if err != nil {
			b.loadFailed(chatID, "tarot history", err)
			return
		}
		for _, msg := range renderTarotHistory(readings) {
			b.sendMessage(chatID, msg)
		}
	case cmdStats:
		stats, err := b.session.ViewStats(ctx)
		b.reply(chatID, "statistics", err, func() string { return renderStats(stats) })
	case cmdTrends:
		points, err := b.session.ViewTrends(ctx, trendDays)
		b.reply(chatID, "trend", err, func() string { return renderTrend(points, trendDays) })
	case cmdWeekdays:
		points, err := b.session.ViewWeekdays(ctx)
		b.reply(chatID, "weekdays", err, func() string { return renderWeekdays(points) })
	default:
		b.sendMessage(chatID, "Unknown command. Use /quiz, /tarot or /help.")
	}
}

// reply sends render() or a generic failure message when err is set
func (b *Bot) reply(chatID int64, what string, err error, render func() string) {
	if err != nil {
		b.loadFailed(chatID, what, err)
		return
	}
	b.sendMessage(chatID, render())
}

func (b *Bot) loadFailed(chatID int64, what string, err error) {
	b.logger.Error("could not load "+what, zap.Error(err))
	b.sendMessage(chatID, fmt.Sprintf("Sorry, I couldn't load your %s. Please try again later.", what))
}

func (b *Bot) handleTarot(ctx context.Context, chatID int64) {
	b.sendMessage(chatID, "🔮 Shuffling the deck and asking the cards...")

	startTime := time.Now()
	result, err := b.session.RequestReading(ctx)
	if err != nil {
		b.logger.Error("could not draw spread", zap.Error(err))
		b.sendMessage(chatID, "Sorry, the deck could not be dealt. Please check the card catalog.")
		return
	}
	b.logger.Info("reading ready", zap.Duration("elapsed", time.Since(startTime)))

	var media []interface{}
	var single string
	for _, c := range result.Cards {
		if fileExists(c.ImagePath) {
			photo := tgbotapi.NewInputMediaPhoto(tgbotapi.FilePath(c.ImagePath))
			photo.Caption = cardTitle(c.Name)
			media = append(media, photo)
			single = c.ImagePath
		}
	}
	// Telegram media groups need at least two items.
	switch {
	case len(media) > 1:
		if _, err := b.api.SendMediaGroup(tgbotapi.NewMediaGroup(chatID, media)); err != nil {
			b.logger.Warn("could not send card artwork", zap.Error(err))
		}
	case len(media) == 1:
		b.sendImage(chatID, single, "")
	}

	b.sendMessage(chatID, renderReading(result))
}

// handleCallback processes quiz answers from inline buttons
func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	chatID := callback.Message.Chat.ID

	questionNum, optionNum, err := parseAnswerCallback(callback.Data)
	if err != nil {
		b.logger.Warn("invalid callback", zap.String("data", callback.Data), zap.Error(err))
		b.sendCallbackResponse(callback.ID, "")
		return
	}

	current, inQuiz := b.session.QuestionIndex()
	if !inQuiz || current != questionNum {
		b.sendCallbackResponse(callback.ID, "This question has expired. Use /quiz to start again.")
		return
	}

	question, _ := b.session.Question(questionNum)
	if optionNum < 0 || optionNum >= len(question.Options) {
		b.sendCallbackResponse(callback.ID, "Unknown answer.")
		return
	}
	option := question.Options[optionNum]
	b.sendCallbackResponse(callback.ID, option.Text)

	step, err := b.session.SubmitAnswer(ctx, option.Score)
	if err != nil {
		b.logger.Error("could not submit answer", zap.Error(err))
		b.sendMessage(chatID, "Sorry, I couldn't record your answer. Use /quiz to start again.")
		return
	}

	if step.Result == nil {
		b.sendQuestion(chatID, step)
		return
	}

	if img, ok := randomImage(b.imagesDir, step.Result.Category.ImageFolder); ok {
		b.sendImage(chatID, img, step.Result.Category.Label)
	}
	b.sendMessage(chatID, renderQuizResult(step.Result))
}

func (b *Bot) sendQuestion(chatID int64, step session.QuizStep) {
	if step.Question == nil {
		return
	}

	var keyboard [][]tgbotapi.InlineKeyboardButton
	for i, o := range step.Question.Options {
		button := tgbotapi.NewInlineKeyboardButtonData(o.Text, answerCallback(step.Index, i))
		keyboard = append(keyboard, tgbotapi.NewInlineKeyboardRow(button))
	}

	msg := tgbotapi.NewMessage(chatID, renderQuestion(step.Index, b.session.QuestionCount(), *step.Question))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(keyboard...)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("could not send question", zap.Int("question", step.Index), zap.Error(err))
	}
}

// sendMessage sends a plain text message, split into several when it is
// over the Telegram limit
func (b *Bot) sendMessage(chatID int64, text string) {
	for _, chunk := range splitMessage(text, maxMessageLen) {
		msg := tgbotapi.NewMessage(chatID, chunk)
		if _, err := b.api.Send(msg); err != nil {
			b.logger.Error("could not send message", zap.Int64("chat_id", chatID), zap.Error(err))
			return
		}
	}
}

// sendImage sends an image with caption
func (b *Bot) sendImage(chatID int64, imagePath, caption string) {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(imagePath))
	photo.Caption = caption

	if _, err := b.api.Send(photo); err != nil {
		b.logger.Warn("could not send image", zap.String("path", imagePath), zap.Error(err))
	}
}

// sendCallbackResponse acknowledges a callback query
func (b *Bot) sendCallbackResponse(callbackID, text string) {
	callback := tgbotapi.NewCallback(callbackID, text)
	if _, err := b.api.Request(callback); err != nil {
		b.logger.Warn("could not answer callback", zap.Error(err))
	}
}
