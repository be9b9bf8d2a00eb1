package botapp

import (
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	coretelegram "github.com/tokenvestors/promobot/core/telegram"
	"github.com/tokenvestors/promobot/core/telegram/commands"
	tghelpers "github.com/tokenvestors/promobot/core/telegram/helpers"
	"github.com/tokenvestors/promobot/promo"
)

func (a *App) registerCommands(reg *coretelegram.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.handleStart,
		Description: "What this bot does",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     a.handleHelp,
		Description: "How promotion works",
	})
	reg.RegisterCommand("/price", commands.Command{
		Handler:     a.handlePrice,
		Description: "Current promotion price",
	})
	reg.RegisterCommand("/submit", commands.Command{
		Handler:     a.handleSubmit,
		Description: "Submit a token for promotion",
		Aliases:     []string{"promote"},
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Handler:     a.handleCancel,
		Description: "Cancel the current submission",
	})
	reg.RegisterCommand("/setprice", commands.Command{
		Handler:     a.handleSetPrice,
		Description: "Set the promotion price in USD",
		AdminOnly:   true,
	})
}

func (a *App) handleStart(c tele.Context) error {
	text := fmt.Sprintf(
		"👋 Welcome to the <b>%s</b> promotion bot!\n\n"+
			"Get your token featured on %s for <b>$%.2f</b>, paid in crypto.\n\n"+
			"Use /submit to start, /price to check the current rate, or /help for the full rundown.",
		promo.EscapeHTML(strings.TrimPrefix(a.cfg.Posting.Channel, "@")),
		promo.EscapeHTML(a.cfg.Posting.Channel),
		a.svc.Prices().Current(),
	)
	return tghelpers.SendHTML(c, text)
}

func (a *App) handleHelp(c tele.Context) error {
	text := "<b>How it works</b>\n\n" +
		"1. /submit — pick the network and answer a few questions about your token.\n" +
		"2. Review the preview and confirm.\n" +
		"3. Pay the invoice with crypto (Coinbase Commerce).\n" +
		"4. Your promo goes live on the channel automatically once the payment confirms.\n\n" +
		"Supported networks: Ethereum, BSC, Base, Polygon, Solana, TON.\n" +
		"Use /cancel at any point to abandon a submission."
	return tghelpers.SendHTML(c, text)
}

func (a *App) handlePrice(c tele.Context) error {
	return tghelpers.SendHTML(c, fmt.Sprintf(
		"💵 A promotion currently costs <b>$%.2f</b> (USD, paid in crypto).",
		a.svc.Prices().Current(),
	))
}

func (a *App) handleSubmit(c tele.Context) error {
	return a.applyEvent(c, promo.Event{Kind: promo.EventStart})
}

func (a *App) handleCancel(c tele.Context) error {
	uid := c.Sender().ID
	if !a.sessions.InProgress(uid) {
		return tghelpers.SendText(c, "Nothing to cancel.")
	}
	a.sessions.Clear(uid)
	return tghelpers.SendText(c, "Submission cancelled. Use /submit to start over.")
}

func (a *App) handleSetPrice(c tele.Context) error {
	args := c.Args()
	if len(args) != 1 {
		return tghelpers.SendHTML(c, "Usage: <code>/setprice 75</code>")
	}
	usd, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return tghelpers.SendHTML(c, fmt.Sprintf("Not a number: <code>%s</code>", promo.EscapeHTML(args[0])))
	}
	if err := a.svc.Prices().Set(usd); err != nil {
		return tghelpers.SendText(c, "The price must be greater than zero.")
	}
	return tghelpers.SendHTML(c, fmt.Sprintf("✅ Promotion price set to <b>$%.2f</b>.", usd))
}
