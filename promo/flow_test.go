package promo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEVMAddr = "0x1234567890abcdef1234567890abcdef12345678"

func TestAdvanceHappyPath(t *testing.T) {
	d := &Draft{}

	step, action := Advance(StepNone, d, Event{Kind: EventStart})
	assert.Equal(t, StepChain, step)
	assert.Equal(t, ActionPromptChain, action)

	step, action = Advance(step, d, Event{Kind: EventChainSelected, Chain: ChainETH})
	assert.Equal(t, StepContract, step)
	assert.Equal(t, ActionPromptContract, action)
	assert.Equal(t, ChainETH, d.Chain)

	step, action = Advance(step, d, Event{Kind: EventText, Text: " " + testEVMAddr + " "})
	assert.Equal(t, StepDescription, step)
	assert.Equal(t, ActionPromptDescription, action)
	assert.Equal(t, testEVMAddr, d.ContractAddress, "address is stored trimmed")

	step, action = Advance(step, d, Event{Kind: EventText, Text: "The next big thing."})
	assert.Equal(t, StepSocials, step)
	assert.Equal(t, ActionPromptSocials, action)
	assert.Equal(t, "The next big thing.", d.Description)

	step, action = Advance(step, d, Event{Kind: EventText, Text: "https://example.com t.me/example"})
	assert.Equal(t, StepChart, step)
	assert.Equal(t, ActionPromptChart, action)
	require.Len(t, d.SocialLinks, 2)

	step, action = Advance(step, d, Event{Kind: EventText, Text: "https://dexscreener.com/ethereum/0xpair"})
	assert.Equal(t, StepReview, step)
	assert.Equal(t, ActionShowReview, action)
	assert.True(t, d.Complete())

	step, action = Advance(step, d, Event{Kind: EventConfirm})
	assert.Equal(t, StepNone, step)
	assert.Equal(t, ActionSubmit, action)
}

func TestAdvanceInvalidInputKeepsStep(t *testing.T) {
	t.Run("bad contract", func(t *testing.T) {
		d := &Draft{Chain: ChainETH}
		step, action := Advance(StepContract, d, Event{Kind: EventText, Text: "not-an-address"})
		assert.Equal(t, StepContract, step)
		assert.Equal(t, ActionRetryContract, action)
		assert.Empty(t, d.ContractAddress)
	})

	t.Run("no social links", func(t *testing.T) {
		d := &Draft{Chain: ChainSOL, ContractAddress: "So11111111111111111111111111111111111111112"}
		step, action := Advance(StepSocials, d, Event{Kind: EventText, Text: "no links here"})
		assert.Equal(t, StepSocials, step)
		assert.Equal(t, ActionRetrySocials, action)
	})

	t.Run("unsupported chart host", func(t *testing.T) {
		d := &Draft{Chain: ChainETH}
		step, action := Advance(StepChart, d, Event{Kind: EventText, Text: "https://example.com/chart"})
		assert.Equal(t, StepChart, step)
		assert.Equal(t, ActionRetryChart, action)
		assert.Empty(t, d.ChartURL)
	})

	t.Run("text while awaiting chain", func(t *testing.T) {
		d := &Draft{}
		step, action := Advance(StepChain, d, Event{Kind: EventText, Text: "ethereum"})
		assert.Equal(t, StepChain, step)
		assert.Equal(t, ActionRetryChain, action)
	})

	t.Run("unknown chain key", func(t *testing.T) {
		d := &Draft{}
		step, action := Advance(StepChain, d, Event{Kind: EventChainSelected, Chain: Chain("DOGE")})
		assert.Equal(t, StepChain, step)
		assert.Equal(t, ActionRetryChain, action)
	})
}

func TestAdvanceDescriptionBoundary(t *testing.T) {
	t.Run("exactly at the cap stays unmodified", func(t *testing.T) {
		d := &Draft{Chain: ChainETH, ContractAddress: testEVMAddr}
		exact := strings.Repeat("x", MaxDescriptionLen)
		_, _ = Advance(StepDescription, d, Event{Kind: EventText, Text: exact})
		assert.Equal(t, exact, d.Description)
	})

	t.Run("one over the cap is truncated", func(t *testing.T) {
		d := &Draft{Chain: ChainETH, ContractAddress: testEVMAddr}
		over := strings.Repeat("x", MaxDescriptionLen+1)
		_, _ = Advance(StepDescription, d, Event{Kind: EventText, Text: over})
		assert.Len(t, []rune(d.Description), MaxDescriptionLen)
	})
}

func TestAdvanceEditResetsDraft(t *testing.T) {
	d := &Draft{
		Chain:           ChainETH,
		ContractAddress: testEVMAddr,
		Description:     "desc",
		SocialLinks:     LinkList{"https://a.com"},
		ChartURL:        "https://dexscreener.com/x",
	}
	step, action := Advance(StepReview, d, Event{Kind: EventEdit})
	assert.Equal(t, StepChain, step)
	assert.Equal(t, ActionPromptChain, action)
	assert.Equal(t, Draft{}, *d)
}

func TestAdvanceStartRestartsMidFlow(t *testing.T) {
	d := &Draft{Chain: ChainBSC, ContractAddress: testEVMAddr}
	step, action := Advance(StepSocials, d, Event{Kind: EventStart})
	assert.Equal(t, StepChain, step)
	assert.Equal(t, ActionPromptChain, action)
	assert.Equal(t, Draft{}, *d)
}

func TestAdvanceIgnoresEventsOutsideFlow(t *testing.T) {
	d := &Draft{}

	step, action := Advance(StepNone, d, Event{Kind: EventText, Text: "hello"})
	assert.Equal(t, StepNone, step)
	assert.Equal(t, ActionNone, action)

	step, action = Advance(StepNone, d, Event{Kind: EventConfirm})
	assert.Equal(t, StepNone, step)
	assert.Equal(t, ActionNone, action)
}

func TestAdvanceReviewIgnoresText(t *testing.T) {
	d := &Draft{Chain: ChainETH}
	step, action := Advance(StepReview, d, Event{Kind: EventText, Text: "looks good"})
	assert.Equal(t, StepReview, step)
	assert.Equal(t, ActionNone, action)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "abc", Truncate("abc", 3))
	assert.Equal(t, "ab", Truncate("abc", 2))
	assert.Equal(t, "", Truncate("abc", 0))
	// rune boundaries, not bytes
	assert.Equal(t, "héll", Truncate("héllo", 4))
}
