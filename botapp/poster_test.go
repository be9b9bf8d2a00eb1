package botapp

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenvestors/promobot/core/logger"
	"github.com/tokenvestors/promobot/promo"
)

func TestMain(m *testing.M) {
	if err := logger.InitLogger(nil); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestChatTargetRecipient(t *testing.T) {
	assert.Equal(t, "@tokenvestors", chatTarget("@tokenvestors").Recipient())
	assert.Equal(t, "-1001234", chatTarget("-1001234").Recipient())
}

func TestAnnounceBeforeBindFails(t *testing.T) {
	p := NewChannelPoster("@c", 0)
	err := p.Announce(context.Background(), &promo.Submission{ID: "s1"})
	assert.Error(t, err)
}

func TestAnnouncementMarkup(t *testing.T) {
	ann := promo.Announcement{
		Buttons: [][]promo.Button{
			{{Label: "📈 Chart", URL: "https://dexscreener.com/x"}},
			{{Label: "Social 1", URL: "https://a.com"}, {Label: "Social 2", URL: "https://b.com"}},
		},
	}
	markup := announcementMarkup(ann)
	require.NotNil(t, markup)
	require.Len(t, markup.InlineKeyboard, 2)
	assert.Equal(t, "https://dexscreener.com/x", markup.InlineKeyboard[0][0].URL)
	assert.Len(t, markup.InlineKeyboard[1], 2)
	assert.Equal(t, "Social 2", markup.InlineKeyboard[1][1].Text)

	assert.Nil(t, announcementMarkup(promo.Announcement{}))
}

func TestChainKeyboardLayout(t *testing.T) {
	markup := chainKeyboard()
	require.NotNil(t, markup)
	require.Len(t, markup.InlineKeyboard, 2, "six chains, three per row")
	assert.Len(t, markup.InlineKeyboard[0], 3)
	assert.Len(t, markup.InlineKeyboard[1], 3)
	assert.Equal(t, "Ethereum", markup.InlineKeyboard[0][0].Text)
	assert.Contains(t, markup.InlineKeyboard[0][0].Data, "ETH")
}

func TestReviewKeyboardLayout(t *testing.T) {
	markup := reviewKeyboard()
	require.Len(t, markup.InlineKeyboard, 2)
	assert.Len(t, markup.InlineKeyboard[0], 1)
	assert.Len(t, markup.InlineKeyboard[1], 1)
}
