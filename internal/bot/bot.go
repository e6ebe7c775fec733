// Package bot relays Telegram chats to the Chronex assistant.
package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/xaenox/chronex/internal/assistant"
	"github.com/xaenox/chronex/internal/images"
	"github.com/xaenox/chronex/internal/models"
	"github.com/xaenox/chronex/internal/responder"
	"go.uber.org/zap"
)

const (
	// maxMessageLength is Telegram's limit for a single text message.
	maxMessageLength = 4096
	// maxHistory is how many turns are kept per chat.
	maxHistory = 20
)

// Chatter is the part of the assistant the bot talks to.
type Chatter interface {
	Chat(ctx context.Context, message string, history []models.Turn) (assistant.ChatResult, error)
	Respond(ctx context.Context, family responder.Family, message string) string
}

// ImageAnalyzer stores and describes photos sent to the bot.
type ImageAnalyzer interface {
	Save(name string, r io.Reader) (images.Info, error)
	Analyze(ctx context.Context, path string, useAI bool) (images.Analysis, error)
}

// api is the subset of *tgbotapi.BotAPI the bot uses.
type api interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type Bot struct {
	api       api
	assistant Chatter
	images    ImageAnalyzer
	client    *http.Client
	logger    *zap.Logger

	mu      sync.Mutex
	history map[int64][]models.Turn
	chats   map[int64]*sync.Mutex
}

// New connects to Telegram. imgs may be nil, in which case photos are
// refused politely.
func New(token string, chatter Chatter, imgs ImageAnalyzer, logger *zap.Logger) (*Bot, error) {
	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	logger.Info("Telegram bot authorized", zap.String("username", botAPI.Self.UserName))
	return newBot(botAPI, chatter, imgs, logger), nil
}

func newBot(a api, chatter Chatter, imgs ImageAnalyzer, logger *zap.Logger) *Bot {
	return &Bot{
		api:       a,
		assistant: chatter,
		images:    imgs,
		client:    http.DefaultClient,
		logger:    logger,
		history:   make(map[int64][]models.Turn),
		chats:     make(map[int64]*sync.Mutex),
	}
}

// Start handles updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			go b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	if len(message.Photo) > 0 {
		b.handlePhoto(ctx, message)
		return
	}

	content := message.Text
	if message.Caption != "" {
		content = message.Caption
	}
	if strings.TrimSpace(content) == "" {
		b.sendMessage(message.Chat.ID, "Send me a text message or a photo.")
		return
	}

	chatID := message.Chat.ID
	// one exchange at a time per chat, so no reply is lost from history
	lock := b.chatLock(chatID)
	lock.Lock()
	defer lock.Unlock()

	result, err := b.assistant.Chat(ctx, content, b.historyFor(chatID))
	if err != nil {
		b.logger.Error("Failed to generate reply",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
		b.sendErrorMessage(chatID, "Sorry, I couldn't answer that. Please try again.")
		return
	}
	b.remember(chatID, result.History)

	b.reply(chatID, message.MessageID, result.Response)
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	switch message.Command() {
	case "start":
		b.handleStart(message)
	case "help":
		b.handleHelp(message)
	case "creator":
		b.sendMessage(chatID, b.assistant.Respond(ctx, responder.FamilyCreator, message.Text))
	case "status":
		b.sendMessage(chatID, b.assistant.Respond(ctx, responder.FamilyStatus, message.Text))
	case "reset":
		lock := b.chatLock(chatID)
		lock.Lock()
		b.forget(chatID)
		lock.Unlock()
		b.sendMessage(chatID, "Conversation history cleared.")
	default:
		b.sendMessage(chatID, "Unknown command. Use /help to see available commands.")
	}
}

func (b *Bot) handleStart(message *tgbotapi.Message) {
	welcome := `Welcome to Chronex AI! 🤖
I can help with code, math, data science and web development questions.

Just send me a message, or a photo to analyze.
Use /help to see all available commands.`

	b.sendMessage(message.Chat.ID, welcome)
}

func (b *Bot) handleHelp(message *tgbotapi.Message) {
	help := `Available commands:
/start - Start the bot
/help - Show this help message
/creator - About the creators
/status - System status
/reset - Forget this conversation

Anything else you send is answered by Chronex AI.`

	b.sendMessage(message.Chat.ID, help)
}

func (b *Bot) handlePhoto(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if b.images == nil {
		b.sendMessage(chatID, "Image analysis is not available right now.")
		return
	}

	// the last size is the largest
	photo := message.Photo[len(message.Photo)-1]
	url, err := b.api.GetFileDirectURL(photo.FileID)
	if err != nil {
		b.logger.Error("Failed to resolve photo", zap.Error(err), zap.String("file_id", photo.FileID))
		b.sendErrorMessage(chatID, "Sorry, I couldn't download your photo.")
		return
	}

	info, err := b.download(ctx, url, photo.FileUniqueID+".jpg")
	if err != nil {
		b.logger.Error("Failed to store photo", zap.Error(err), zap.String("file_id", photo.FileID))
		b.sendErrorMessage(chatID, photoError(err))
		return
	}

	analysis, err := b.images.Analyze(ctx, info.Filepath, true)
	if err != nil {
		b.logger.Error("Failed to analyze photo", zap.Error(err), zap.String("filepath", info.Filepath))
		b.sendErrorMessage(chatID, "Sorry, I couldn't analyze your photo.")
		return
	}

	b.reply(chatID, message.MessageID, analysis.Text)
}

func (b *Bot) download(ctx context.Context, url, name string) (images.Info, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return images.Info{}, err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return images.Info{}, fmt.Errorf("failed to download photo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return images.Info{}, fmt.Errorf("failed to download photo: status %d", resp.StatusCode)
	}
	return b.images.Save(name, resp.Body)
}

func photoError(err error) string {
	var verr *images.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	return "Sorry, I couldn't download your photo."
}

func (b *Bot) chatLock(chatID int64) *sync.Mutex {
	b.mu.Lock()
	defer b.mu.Unlock()
	lock, ok := b.chats[chatID]
	if !ok {
		lock = &sync.Mutex{}
		b.chats[chatID] = lock
	}
	return lock
}

func (b *Bot) historyFor(chatID int64) []models.Turn {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Turn(nil), b.history[chatID]...)
}

func (b *Bot) remember(chatID int64, turns []models.Turn) {
	if len(turns) > maxHistory {
		turns = turns[len(turns)-maxHistory:]
	}
	b.mu.Lock()
	b.history[chatID] = turns
	b.mu.Unlock()
}

func (b *Bot) forget(chatID int64) {
	b.mu.Lock()
	delete(b.history, chatID)
	b.mu.Unlock()
}

// splitMessage cuts text into chunks Telegram accepts, preferring line
// breaks.
func splitMessage(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var chunks []string
	runes := []rune(text)
	for len(runes) > limit {
		cut := limit
		for i := limit; i > limit/2; i-- {
			if runes[i-1] == '\n' {
				cut = i
				break
			}
		}
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}

func (b *Bot) reply(chatID int64, replyToID int, text string) {
	for i, chunk := range splitMessage(text, maxMessageLength) {
		msg := tgbotapi.NewMessage(chatID, chunk)
		if i == 0 {
			msg.ReplyToMessageID = replyToID
		}
		if _, err := b.api.Send(msg); err != nil {
			b.logger.Error("Failed to send reply",
				zap.Error(err),
				zap.Int64("chat_id", chatID))
			return
		}
	}
}

func (b *Bot) sendMessage(chatID int64, text string) {
	for _, chunk := range splitMessage(text, maxMessageLength) {
		msg := tgbotapi.NewMessage(chatID, chunk)
		if _, err := b.api.Send(msg); err != nil {
			b.logger.Error("Failed to send message",
				zap.Error(err),
				zap.Int64("chat_id", chatID))
			return
		}
	}
}

func (b *Bot) sendErrorMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, "⚠️ "+text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send error message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}
