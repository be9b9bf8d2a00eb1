package botapp

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	tele "gopkg.in/telebot.v4"

	"github.com/tokenvestors/promobot/core/logger"
	"github.com/tokenvestors/promobot/promo"
)

// chatTarget addresses a chat by @username or numeric id string.
type chatTarget string

func (t chatTarget) Recipient() string { return string(t) }

// ChannelPoster delivers paid announcements to the configured channel, the
// optional secondary group, and the requester's DM. Each delivery is
// attempted independently; one failed destination never blocks the others.
type ChannelPoster struct {
	channel    string
	altGroupID int64
	bot        atomic.Pointer[tele.Bot]
}

// NewChannelPoster builds a poster for the given destinations. altGroupID
// of 0 disables the secondary group.
func NewChannelPoster(channel string, altGroupID int64) *ChannelPoster {
	return &ChannelPoster{channel: channel, altGroupID: altGroupID}
}

// Bind attaches the live bot once the Telegram runtime is up. Until then
// Announce fails fast.
func (p *ChannelPoster) Bind(bot *tele.Bot) {
	p.bot.Store(bot)
}

// Announce posts the rendered announcement to every destination and sends
// the requester a payment-received note. The returned error only reports
// that at least one delivery failed; details are in the logs.
func (p *ChannelPoster) Announce(_ context.Context, sub *promo.Submission) error {
	bot := p.bot.Load()
	if bot == nil {
		return fmt.Errorf("poster: bot not started")
	}

	ann := promo.RenderAnnouncement(sub, p.channel)
	opts := &tele.SendOptions{
		ParseMode:             tele.ModeHTML,
		ReplyMarkup:           announcementMarkup(ann),
		DisableWebPagePreview: true,
	}

	var failed int
	deliver := func(dest tele.Recipient, name string) {
		if _, err := bot.Send(dest, ann.Text, opts); err != nil {
			failed++
			logger.TG.Error("announcement delivery failed",
				slog.String("event", "announce.send"),
				slog.String("destination", name),
				slog.String("submission_id", sub.ID),
				slog.String("err", err.Error()),
			)
			return
		}
		logger.TG.Info("announcement delivered",
			slog.String("event", "announce.send"),
			slog.String("destination", name),
			slog.String("submission_id", sub.ID),
		)
	}

	deliver(chatTarget(p.channel), p.channel)
	if p.altGroupID != 0 {
		deliver(tele.ChatID(p.altGroupID), fmt.Sprintf("%d", p.altGroupID))
	}

	note := fmt.Sprintf(
		"✅ Payment received! Your promotion for <code>%s</code> is now live on %s.",
		promo.EscapeHTML(sub.ContractAddress), promo.EscapeHTML(p.channel),
	)
	if _, err := bot.Send(tele.ChatID(sub.UserID), note, &tele.SendOptions{ParseMode: tele.ModeHTML}); err != nil {
		logger.TG.Warn("requester notification failed",
			slog.String("event", "announce.notify"),
			slog.String("submission_id", sub.ID),
			slog.Int64("user_id", sub.UserID),
			slog.String("err", err.Error()),
		)
	}

	if failed > 0 {
		return fmt.Errorf("poster: %d of %d deliveries failed", failed, p.destinationCount())
	}
	return nil
}

func (p *ChannelPoster) destinationCount() int {
	if p.altGroupID != 0 {
		return 2
	}
	return 1
}

func announcementMarkup(ann promo.Announcement) *tele.ReplyMarkup {
	if len(ann.Buttons) == 0 {
		return nil
	}
	rows := make([][]tele.InlineButton, 0, len(ann.Buttons))
	for _, row := range ann.Buttons {
		r := make([]tele.InlineButton, 0, len(row))
		for _, b := range row {
			r = append(r, tele.InlineButton{Text: b.Label, URL: b.URL})
		}
		rows = append(rows, r)
	}
	return &tele.ReplyMarkup{InlineKeyboard: rows}
}
