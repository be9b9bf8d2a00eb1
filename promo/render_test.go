package promo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeHTML(t *testing.T) {
	assert.Equal(t, "a &amp;&amp; b", EscapeHTML("a && b"))
	assert.Equal(t, "&lt;b&gt;bold&lt;/b&gt;", EscapeHTML("<b>bold</b>"))
	assert.Equal(t, "plain", EscapeHTML("plain"))
	assert.Equal(t, "", EscapeHTML(""))
}

func TestRenderAnnouncement(t *testing.T) {
	sub := &Submission{
		Chain:           ChainETH,
		ContractAddress: testEVMAddr,
		Description:     "Fast <& furious> token",
		SocialLinks:     LinkList{"https://example.com", "https://t.me/example"},
		ChartURL:        "https://dexscreener.com/ethereum/0xpair",
	}
	ann := RenderAnnouncement(sub, "@tokenvestors")

	assert.Contains(t, ann.Text, "<i>Ethereum</i>")
	assert.Contains(t, ann.Text, "<code>"+testEVMAddr+"</code>")
	assert.Contains(t, ann.Text, "Fast &lt;&amp; furious&gt; token", "user text is escaped")
	assert.NotContains(t, ann.Text, "<& furious>")
	assert.Contains(t, ann.Text, "@tokenvestors", "disclaimer names the channel")
	assert.Contains(t, ann.Text, `<a href="https://dexscreener.com/ethereum/0xpair">`)

	require.Len(t, ann.Buttons, 2)
	require.Len(t, ann.Buttons[0], 1)
	assert.Equal(t, "https://dexscreener.com/ethereum/0xpair", ann.Buttons[0][0].URL)
	require.Len(t, ann.Buttons[1], 2)
	assert.Equal(t, "Social 1", ann.Buttons[1][0].Label)
	assert.Equal(t, "https://example.com", ann.Buttons[1][0].URL)
	assert.Equal(t, "Social 2", ann.Buttons[1][1].Label)
}

func TestRenderAnnouncementWithoutChart(t *testing.T) {
	sub := &Submission{
		Chain:           ChainTON,
		ContractAddress: "EQ" + strings.Repeat("A", 46),
		Description:     "d",
		SocialLinks:     LinkList{"https://only.one"},
	}
	ann := RenderAnnouncement(sub, "@c")

	assert.NotContains(t, ann.Text, "Open Chart")
	require.Len(t, ann.Buttons, 1, "only the socials row remains")
	assert.Len(t, ann.Buttons[0], 1)
}

func TestRenderAnnouncementRetruncatesDescription(t *testing.T) {
	sub := &Submission{
		Chain:           ChainBSC,
		ContractAddress: testEVMAddr,
		// An oversized stored value must not leak through the renderer.
		Description: strings.Repeat("a", MaxDescriptionLen) + "TAIL",
		SocialLinks: LinkList{"https://a.com"},
	}
	ann := RenderAnnouncement(sub, "@c")

	assert.NotContains(t, ann.Text, "TAIL")
	assert.Contains(t, ann.Text, strings.Repeat("a", MaxDescriptionLen))
}
