// Package telegram sends messages through the Telegram Bot API.
package telegram

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	kit "gazettebot/internal/transport"
	logx "gazettebot/pkg/logx"

	tele "gopkg.in/telebot.v4"
)

// TextLimit is the per-message length the Bot API accepts, minus headroom.
const TextLimit = 4000

type Config struct {
	Token string
	// APIURL overrides https://api.telegram.org.
	APIURL  string
	Timeout time.Duration
}

// Adapter is a send-only bot: it never polls for updates.
type Adapter struct {
	cfg Config
	log logx.Logger
	bot *tele.Bot
}

func New(cfg Config, log logx.Logger) (*Adapter, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	b, err := tele.NewBot(tele.Settings{
		Token:   cfg.Token,
		URL:     strings.TrimRight(cfg.APIURL, "/"),
		Offline: true,
		Client:  &http.Client{Timeout: timeout},
	})
	if err != nil {
		return nil, err
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Adapter{cfg: cfg, log: log.With(logx.Comp("telegram")), bot: b}, nil
}

// recipient accepts both numeric chat ids and "@channel" usernames.
type recipient string

func (r recipient) Recipient() string { return string(r) }

func (a *Adapter) SendText(ctx context.Context, to kit.ChatTarget, text string, opt *kit.SendOptions) (kit.MessageRef, error) {
	if opt == nil {
		opt = &kit.SendOptions{}
	}
	if err := ctx.Err(); err != nil {
		return kit.MessageRef{}, err
	}
	chat := strings.TrimSpace(to.Chat)
	if chat == "" {
		return kit.MessageRef{}, errors.New("telegram chat id is empty")
	}

	sendOpt := &tele.SendOptions{
		ParseMode:             tele.ParseMode(opt.ParseMode),
		DisableWebPagePreview: opt.DisablePreview,
		ThreadID:              to.ThreadID,
	}
	msg, err := a.bot.Send(recipient(chat), text, sendOpt)
	if err != nil {
		return kit.MessageRef{}, err
	}
	ref := kit.MessageRef{Chat: chat, ThreadID: to.ThreadID}
	if msg != nil {
		ref.MessageID = msg.ID
	}
	a.log.Debug("message sent", logx.String("chat", chat), logx.Int("message_id", ref.MessageID), logx.Int("runes", len([]rune(text))))
	return ref, nil
}
