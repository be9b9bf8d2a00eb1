package botapp

import (
	"context"
	"errors"
	"fmt"
	"time"

	tele "gopkg.in/telebot.v4"

	coretelegram "github.com/tokenvestors/promobot/core/telegram"
	"github.com/tokenvestors/promobot/core/telegram/callbacks"
	tghelpers "github.com/tokenvestors/promobot/core/telegram/helpers"
	"github.com/tokenvestors/promobot/core/telegram/keyboard"
	"github.com/tokenvestors/promobot/core/telegram/state"
	"github.com/tokenvestors/promobot/promo"
)

const draftKey = "promo_draft"

const submitTimeout = 20 * time.Second

// Callback uniques used by the intake keyboards.
const (
	cbChain   = "promo_chain"
	cbConfirm = "promo_confirm"
	cbEdit    = "promo_edit"
)

func stateFor(step promo.Step) state.State {
	return state.State(step)
}

// registerFlowHandlers maps every intake step to the shared text handler so
// free-text answers get routed through the transition function.
func (a *App) registerFlowHandlers() {
	textHandler := func(c tele.Context) error {
		return a.applyEvent(c, promo.Event{Kind: promo.EventText, Text: c.Text()})
	}
	for _, st := range []promo.Step{
		promo.StepChain,
		promo.StepContract,
		promo.StepDescription,
		promo.StepSocials,
		promo.StepChart,
		promo.StepReview,
	} {
		state.RegisterHandler(stateFor(st), textHandler)
	}
}

func (a *App) registerCallbacks(reg *coretelegram.Registry) {
	_ = reg.RegisterCallback(cbChain, func(c tele.Context) error {
		ch, ok := promo.ParseChain(callbacks.CallbackPayload(c))
		if !ok {
			return a.applyEvent(c, promo.Event{Kind: promo.EventChainSelected})
		}
		return a.applyEvent(c, promo.Event{Kind: promo.EventChainSelected, Chain: ch})
	})
	// Stale confirm/edit buttons (pressed after /cancel or after a finished
	// submission) are acknowledged and ignored.
	_ = reg.RegisterCallback(cbConfirm, func(c tele.Context) error {
		if !a.sessions.InProgress(c.Sender().ID) {
			return nil
		}
		return a.applyEvent(c, promo.Event{Kind: promo.EventConfirm})
	})
	_ = reg.RegisterCallback(cbEdit, func(c tele.Context) error {
		if !a.sessions.InProgress(c.Sender().ID) {
			return nil
		}
		return a.applyEvent(c, promo.Event{Kind: promo.EventEdit})
	})
}

// draft returns the user's working draft, creating one if needed.
func (a *App) draft(userID int64) *promo.Draft {
	if v, ok := a.sessions.GetTemp(userID, draftKey); ok {
		if d, ok := v.(*promo.Draft); ok {
			return d
		}
	}
	d := &promo.Draft{}
	a.sessions.SetTemp(userID, draftKey, d)
	return d
}

// applyEvent runs one event through the transition function, stores the new
// step, and performs the resulting action.
func (a *App) applyEvent(c tele.Context, ev promo.Event) error {
	uid := c.Sender().ID

	step := promo.StepNone
	if a.sessions.HasState(uid) {
		step = promo.Step(a.sessions.GetState(uid))
	}

	d := a.draft(uid)
	next, action := promo.Advance(step, d, ev)
	if next == promo.StepNone {
		a.sessions.ClearState(uid)
	} else {
		a.sessions.SetState(uid, stateFor(next))
	}
	return a.perform(c, action, d)
}

func (a *App) perform(c tele.Context, action promo.Action, d *promo.Draft) error {
	switch action {
	case promo.ActionPromptChain:
		// EditOrSend keeps one keyboard message alive when the prompt was
		// reached via the review-screen edit button.
		return tghelpers.EditOrSendHTML(c, "Which network is your token on?", chainKeyboard())
	case promo.ActionRetryChain:
		return tghelpers.SendHTML(c, "Please pick a network using the buttons below.", chainKeyboard())
	case promo.ActionPromptContract:
		return tghelpers.EditOrSendHTML(c, fmt.Sprintf(
			"Send the <b>contract address</b> of your token on %s.", d.Chain.Label()))
	case promo.ActionRetryContract:
		return tghelpers.SendHTML(c, fmt.Sprintf(
			"That doesn't look like a valid %s contract address. Send it again.", d.Chain.Label()))
	case promo.ActionPromptDescription:
		return tghelpers.SendHTML(c,
			"Now send a short <b>description</b> of the project (up to 500 characters).")
	case promo.ActionPromptSocials:
		return tghelpers.SendHTML(c,
			"Send your <b>social links</b> (website, Telegram, X) in one message, separated by spaces. The first 6 are kept.")
	case promo.ActionRetrySocials:
		return tghelpers.SendHTML(c,
			"No usable links found. Links must start with <code>https://</code> (<code>t.me/...</code> works too).")
	case promo.ActionPromptChart:
		return tghelpers.SendHTML(c,
			"Almost done. Send a <b>chart link</b> (Dexscreener, DexTools, Birdeye, GeckoTerminal or PooCoin).")
	case promo.ActionRetryChart:
		return tghelpers.SendHTML(c,
			"That chart link isn't from a supported site. Send a Dexscreener, DexTools, Birdeye, GeckoTerminal or PooCoin URL.")
	case promo.ActionShowReview:
		return tghelpers.SendHTMLNoPreview(c, a.reviewText(d), reviewKeyboard())
	case promo.ActionSubmit:
		return a.finishSubmit(c, d)
	}
	return nil
}

func (a *App) reviewText(d *promo.Draft) string {
	preview := &promo.Submission{
		Chain:           d.Chain,
		ContractAddress: d.ContractAddress,
		Description:     d.Description,
		SocialLinks:     d.SocialLinks,
		ChartURL:        d.ChartURL,
	}
	ann := promo.RenderAnnouncement(preview, a.cfg.Posting.Channel)
	return fmt.Sprintf(
		"Here's how your promo will look:\n\n%s\n\n💵 Price: <b>$%.2f</b> (USD, paid in crypto)",
		ann.Text, a.svc.Prices().Current(),
	)
}

// finishSubmit persists the confirmed draft and replies with the payment
// link. The session is cleared either way; a failed charge leaves the
// submission pending and the user retries via /submit.
func (a *App) finishSubmit(c tele.Context, d *promo.Draft) error {
	uid := c.Sender().ID
	req := promo.Requester{UserID: uid, Username: c.Sender().Username}

	ctx, cancel := context.WithTimeout(tghelpers.BuildContext(c), submitTimeout)
	defer cancel()

	sub, payURL, err := a.svc.Submit(ctx, req, *d)
	a.sessions.Clear(uid)
	if err != nil {
		var perr *promo.ProviderError
		if errors.As(err, &perr) && sub != nil {
			return tghelpers.SendHTML(c,
				"⚠️ Your submission was saved, but the payment link could not be created. Please try /submit again in a few minutes.")
		}
		return tghelpers.SendHTML(c,
			"⚠️ Something went wrong saving your submission. Please try /submit again.")
	}

	text := fmt.Sprintf(
		"✅ Submission received!\n\nPay <b>$%.2f</b> via the button below to go live. "+
			"The post is published automatically once the payment confirms.",
		sub.PriceUSD,
	)
	markup := &tele.ReplyMarkup{
		InlineKeyboard: [][]tele.InlineButton{{{Text: "💳 Pay with crypto", URL: payURL}}},
	}
	return tghelpers.SendHTMLNoPreview(c, text, markup)
}

func chainKeyboard() *tele.ReplyMarkup {
	btns := make([]keyboard.InlineBtn, 0, len(promo.Chains))
	for _, ch := range promo.Chains {
		btns = append(btns, keyboard.InlineBtn{Text: ch.Label(), Unique: cbChain, Data: string(ch)})
	}
	return keyboard.InlineButtonsNPerRow(btns, 3)
}

func reviewKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "✅ Confirm & Pay", Unique: cbConfirm, Data: "go"}},
		[]keyboard.InlineBtn{{Text: "✏️ Edit", Unique: cbEdit, Data: "restart"}},
	)
}
