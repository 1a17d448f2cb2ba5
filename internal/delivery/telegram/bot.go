package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/leonaffi-byte/amazon-photo-bot/internal/domain"
	"github.com/leonaffi-byte/amazon-photo-bot/internal/usecase"
)

// Telegram caps bot file downloads at 20 MB
const maxPhotoBytes = 20 << 20

// botAPI is the slice of the Telegram client the handlers need. Kept
// narrow so tests can substitute a fake.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Options carries the presentation settings the handlers need
type Options struct {
	FreeDeliveryThreshold float64
	Marketplace           string
	AssociateTag          string
}

// Bot wires Telegram updates to the vision and search services
type Bot struct {
	api        botAPI
	httpClient *http.Client
	analyzer   domain.ImageAnalyzer
	searcher   *usecase.SearchService
	sessions   *usecase.SessionStore
	links      domain.LinkShortener
	opts       Options
}

// NewBot creates the update handler
func NewBot(
	api botAPI,
	analyzer domain.ImageAnalyzer,
	searcher *usecase.SearchService,
	sessions *usecase.SessionStore,
	links domain.LinkShortener,
	opts Options,
) *Bot {
	return &Bot{
		api:        api,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		analyzer:   analyzer,
		searcher:   searcher,
		sessions:   sessions,
		links:      links,
		opts:       opts,
	}
}

// Run consumes updates until the context is cancelled. Each update is
// handled in its own goroutine so a slow vision call never blocks other
// conversations.
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			go b.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate dispatches a single Telegram update
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message == nil:
		// Edited messages, channel posts and the like are ignored
	case update.Message.IsCommand():
		b.handleCommand(update.Message)
	case len(update.Message.Photo) > 0:
		b.handlePhoto(ctx, update.Message)
	default:
		b.reply(update.Message.Chat.ID, notAPhotoText())
	}
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.reply(msg.Chat.ID, welcomeText())
	case "help":
		b.reply(msg.Chat.ID, helpText(b.opts.FreeDeliveryThreshold))
	default:
		b.reply(msg.Chat.ID, "Unknown command. Try /help.")
	}
}

// handlePhoto runs the vision analysis and shows the identification
// card with the filter choice. A new photo starts a new generation, so
// any analysis or search still in flight for this chat is discarded
// when it completes.
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	gen := b.sessions.NextGeneration(chatID)

	status, err := b.reply(chatID, analyzingText())
	if err != nil {
		log.Printf("[TELEGRAM] send failed for chat %d: %v", chatID, err)
		return
	}

	// Last entry is the highest resolution Telegram keeps
	photo := msg.Photo[len(msg.Photo)-1]
	image, err := b.downloadPhoto(ctx, photo.FileID)
	if err != nil {
		log.Printf("[TELEGRAM] photo download failed for chat %d: %v", chatID, err)
		b.editIfCurrent(chatID, status.MessageID, gen, analysisFailedText(), nil)
		return
	}

	info, err := b.analyzer.Analyze(ctx, image)
	if err != nil {
		log.Printf("[TELEGRAM] analysis failed for chat %d: %v", chatID, err)
		b.editIfCurrent(chatID, status.MessageID, gen, analysisFailedText(), nil)
		return
	}

	if _, ok := b.sessions.CreateIfCurrent(chatID, gen, info, nil, false); !ok {
		return
	}

	keyboard := filterKeyboard(b.opts.FreeDeliveryThreshold)
	b.editIfCurrent(chatID, status.MessageID, gen,
		identificationCard(info, b.opts.FreeDeliveryThreshold), &keyboard)
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	// Acknowledge immediately so the client stops its spinner
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		log.Printf("[TELEGRAM] callback ack failed: %v", err)
	}

	if query.Message == nil {
		return
	}
	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID

	switch query.Data {
	case cbFilterYes, cbFilterNo:
		b.handleFilterChoice(ctx, chatID, messageID, query.Data == cbFilterYes)
	case cbToggleFilter:
		sess, err := b.sessions.ToggleFilter(chatID)
		if err != nil {
			b.edit(chatID, messageID, sessionExpiredText(), nil)
			return
		}
		b.renderResults(chatID, messageID, sess)
	case cbPrev:
		b.handlePage(chatID, messageID, -1)
	case cbNext:
		b.handlePage(chatID, messageID, +1)
	case cbNoop:
		// Page indicator, nothing to do
	default:
		log.Printf("[TELEGRAM] unknown callback data %q from chat %d", query.Data, chatID)
	}
}

// handleFilterChoice runs the Amazon search once the user has picked a
// delivery filter, then renders the first results page.
func (b *Bot) handleFilterChoice(ctx context.Context, chatID int64, messageID int, filterEnabled bool) {
	// Snapshot the token before anything suspends. A new photo arriving at
	// any later point bumps the generation and this search becomes stale.
	gen := b.sessions.Generation(chatID)

	sess, err := b.sessions.Get(chatID)
	if err != nil || sess.Product == nil {
		b.edit(chatID, messageID, sessionExpiredText(), nil)
		return
	}

	filterLabel := "all items"
	if filterEnabled {
		filterLabel = "free delivery only"
	}
	b.edit(chatID, messageID, searchingText(sess.Product.Name, filterLabel), nil)

	listings, err := b.searcher.Search(ctx, sess.Product)
	if !b.sessions.IsCurrent(chatID, gen) {
		return
	}
	if err != nil {
		log.Printf("[TELEGRAM] search failed for chat %d: %v", chatID, err)
		switch {
		case errors.Is(err, domain.ErrNoResults):
			b.edit(chatID, messageID, noResultsText(), nil)
		case errors.Is(err, domain.ErrRateLimited):
			b.edit(chatID, messageID, rateLimitedText(), nil)
		default:
			b.edit(chatID, messageID, searchFailedText(), nil)
		}
		return
	}

	fresh, ok := b.sessions.CreateIfCurrent(chatID, gen, sess.Product, listings, filterEnabled)
	if !ok {
		return
	}
	b.renderResults(chatID, messageID, fresh)
}

func (b *Bot) handlePage(chatID int64, messageID int, delta int) {
	sess, err := b.sessions.AdvancePage(chatID, delta)
	if err != nil {
		b.edit(chatID, messageID, sessionExpiredText(), nil)
		return
	}
	b.renderResults(chatID, messageID, sess)
}

func (b *Bot) renderResults(chatID int64, messageID int, sess usecase.Session) {
	keyboard := resultsKeyboard(sess, b.links, b.opts.Marketplace, b.opts.AssociateTag)
	b.edit(chatID, messageID, resultsPage(sess), &keyboard)
}

// downloadPhoto fetches the image bytes for a Telegram file ID
func (b *Bot) downloadPhoto(ctx context.Context, fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("resolve file URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download photo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download photo: unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes))
}

func (b *Bot) reply(chatID int64, text string) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	return b.api.Send(msg)
}

func (b *Bot) edit(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	edit.DisableWebPagePreview = true
	edit.ReplyMarkup = keyboard
	if _, err := b.api.Send(edit); err != nil {
		log.Printf("[TELEGRAM] edit failed for chat %d: %v", chatID, err)
	}
}

// editIfCurrent drops the edit when a newer photo has superseded this
// request, so a slow response never overwrites the newer conversation.
func (b *Bot) editIfCurrent(chatID int64, messageID int, gen uint64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) {
	if !b.sessions.IsCurrent(chatID, gen) {
		return
	}
	b.edit(chatID, messageID, text, keyboard)
}
