package promo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidContractAddress(t *testing.T) {
	evmOK := "0x" + strings.Repeat("aB3f", 10)
	solOK := "So11111111111111111111111111111111111111112"
	tonOK := "EQ" + strings.Repeat("A", 42) + "_-ab"

	cases := []struct {
		name  string
		chain Chain
		addr  string
		want  bool
	}{
		{"eth valid", ChainETH, evmOK, true},
		{"bsc valid", ChainBSC, evmOK, true},
		{"base valid", ChainBASE, evmOK, true},
		{"poly valid", ChainPOLY, evmOK, true},
		{"evm missing prefix", ChainETH, strings.Repeat("ab", 21), false},
		{"evm too short", ChainETH, "0x" + strings.Repeat("a", 39), false},
		{"evm too long", ChainETH, "0x" + strings.Repeat("a", 41), false},
		{"evm non-hex", ChainETH, "0x" + strings.Repeat("g", 40), false},
		{"evm trims whitespace", ChainETH, "  " + evmOK + "\n", true},
		{"sol valid", ChainSOL, solOK, true},
		{"sol excluded base58 char", ChainSOL, strings.Repeat("0", 40), false},
		{"sol too short", ChainSOL, "abc", false},
		{"ton valid", ChainTON, tonOK, true},
		{"ton too short", ChainTON, "EQabc", false},
		{"ton bad char", ChainTON, "EQ" + strings.Repeat("A", 45) + "+", false},
		{"unknown chain rejects", Chain("DOGE"), evmOK, false},
		{"empty chain rejects", Chain(""), evmOK, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ValidContractAddress(tc.chain, tc.addr))
		})
	}
}

func TestAllowedChartURL(t *testing.T) {
	assert.True(t, AllowedChartURL("https://dexscreener.com/ethereum/0xabc"))
	assert.True(t, AllowedChartURL("https://www.dextools.io/app/en/ether/pair-explorer/0xabc"))
	assert.True(t, AllowedChartURL("https://birdeye.so/token/xyz"))
	assert.True(t, AllowedChartURL("https://www.geckoterminal.com/eth/pools/0xabc"))
	assert.True(t, AllowedChartURL("https://poocoin.app/tokens/0xabc"))
	assert.True(t, AllowedChartURL("HTTPS://DEXSCREENER.COM/abc"), "matching is case-insensitive")
	assert.True(t, AllowedChartURL("  https://dexscreener.com/x  "), "surrounding whitespace is trimmed")

	assert.False(t, AllowedChartURL(""))
	assert.False(t, AllowedChartURL("https://example.com/chart"))
	assert.False(t, AllowedChartURL("https://google.com/?q=dex"))
}

func TestExtractSocialLinks(t *testing.T) {
	t.Run("mixed text", func(t *testing.T) {
		got := ExtractSocialLinks("check https://example.com and t.me/mychan plus noise")
		assert.Equal(t, LinkList{"https://example.com", "https://t.me/mychan"}, got)
	})

	t.Run("deduplicates keeping first-seen order", func(t *testing.T) {
		got := ExtractSocialLinks("https://a.com https://b.com https://a.com")
		assert.Equal(t, LinkList{"https://a.com", "https://b.com"}, got)
	})

	t.Run("normalized t.me duplicates collapse", func(t *testing.T) {
		got := ExtractSocialLinks("t.me/x https://t.me/x")
		assert.Equal(t, LinkList{"https://t.me/x"}, got)
	})

	t.Run("caps at six", func(t *testing.T) {
		var b strings.Builder
		for _, s := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
			b.WriteString("https://" + s + ".com ")
		}
		got := ExtractSocialLinks(b.String())
		assert.Len(t, got, MaxSocialLinks)
		assert.Equal(t, "https://a.com", got[0])
		assert.Equal(t, "https://f.com", got[5])
	})

	t.Run("idempotent over its own output", func(t *testing.T) {
		first := ExtractSocialLinks("t.me/a https://b.com t.me/a https://c.com extra words")
		again := ExtractSocialLinks(strings.Join(first, " "))
		assert.Equal(t, first, again)
	})

	t.Run("no links", func(t *testing.T) {
		assert.Empty(t, ExtractSocialLinks("just words, no urls here"))
		assert.Empty(t, ExtractSocialLinks("ftp://old.school.link"))
		assert.Empty(t, ExtractSocialLinks(""))
	})

	t.Run("http accepted as-is", func(t *testing.T) {
		got := ExtractSocialLinks("http://plain.example")
		assert.Equal(t, LinkList{"http://plain.example"}, got)
	})
}
