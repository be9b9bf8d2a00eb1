package promo

import "strings"

// Step names a position in the intake dialogue.
type Step string

const (
	StepNone        Step = "none"
	StepChain       Step = "awaiting_chain"
	StepContract    Step = "awaiting_contract"
	StepDescription Step = "awaiting_description"
	StepSocials     Step = "awaiting_socials"
	StepChart       Step = "awaiting_chart"
	StepReview      Step = "review"
)

// EventKind tags inbound intake events.
type EventKind int

const (
	// EventStart begins a fresh intake (the /submit command).
	EventStart EventKind = iota
	// EventChainSelected carries a chain keyboard selection.
	EventChainSelected
	// EventText carries a free-text answer for the current step.
	EventText
	// EventConfirm is the review-screen confirm button.
	EventConfirm
	// EventEdit is the review-screen edit button; it restarts at chain
	// selection with a cleared draft.
	EventEdit
)

// Event is one inbound user action routed through the intake flow.
type Event struct {
	Kind  EventKind
	Chain Chain
	Text  string
}

// Action tells the caller what to do after a transition. Prompt actions map
// to bot messages; ActionSubmit means the draft is complete and confirmed
// and must be persisted and charged.
type Action int

const (
	ActionNone Action = iota
	ActionPromptChain
	ActionRetryChain
	ActionPromptContract
	ActionRetryContract
	ActionPromptDescription
	ActionPromptSocials
	ActionRetrySocials
	ActionPromptChart
	ActionRetryChart
	ActionShowReview
	ActionSubmit
)

// Advance applies one event to the intake state machine. It mutates the
// draft in place and returns the next step plus the action the caller
// should perform. Invalid input keeps the current step and yields a retry
// action. Events arriving at StepNone (other than start) are ignored.
func Advance(step Step, draft *Draft, ev Event) (Step, Action) {
	if ev.Kind == EventStart {
		*draft = Draft{}
		return StepChain, ActionPromptChain
	}
	if draft == nil {
		return StepNone, ActionNone
	}

	switch step {
	case StepChain:
		if ev.Kind != EventChainSelected {
			return StepChain, ActionRetryChain
		}
		if _, ok := ParseChain(string(ev.Chain)); !ok {
			return StepChain, ActionRetryChain
		}
		draft.Chain = ev.Chain
		return StepContract, ActionPromptContract

	case StepContract:
		if ev.Kind != EventText {
			return StepContract, ActionRetryContract
		}
		addr := strings.TrimSpace(ev.Text)
		if !ValidContractAddress(draft.Chain, addr) {
			return StepContract, ActionRetryContract
		}
		draft.ContractAddress = addr
		return StepDescription, ActionPromptDescription

	case StepDescription:
		if ev.Kind != EventText {
			return StepDescription, ActionNone
		}
		draft.Description = Truncate(strings.TrimSpace(ev.Text), MaxDescriptionLen)
		return StepSocials, ActionPromptSocials

	case StepSocials:
		if ev.Kind != EventText {
			return StepSocials, ActionRetrySocials
		}
		links := ExtractSocialLinks(ev.Text)
		if len(links) == 0 {
			return StepSocials, ActionRetrySocials
		}
		draft.SocialLinks = links
		return StepChart, ActionPromptChart

	case StepChart:
		if ev.Kind != EventText {
			return StepChart, ActionRetryChart
		}
		url := strings.TrimSpace(ev.Text)
		if !AllowedChartURL(url) {
			return StepChart, ActionRetryChart
		}
		draft.ChartURL = url
		return StepReview, ActionShowReview

	case StepReview:
		switch ev.Kind {
		case EventConfirm:
			return StepNone, ActionSubmit
		case EventEdit:
			*draft = Draft{}
			return StepChain, ActionPromptChain
		}
		return StepReview, ActionNone
	}

	// StepNone outside an explicit start: not ours to handle.
	return StepNone, ActionNone
}

// Truncate limits s to max runes.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
