package promo

import (
	"regexp"
	"strings"
)

var (
	evmAddressRe = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	solAddressRe = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,48}$`)
	tonAddressRe = regexp.MustCompile(`^[A-Za-z0-9_-]{48,66}$`)

	httpLinkRe = regexp.MustCompile(`(?i)^https?://`)
	tmeLinkRe  = regexp.MustCompile(`(?i)^t\.me/`)
)

// chartHosts are fragments of chart-provider domains accepted for chart links.
var chartHosts = []string{
	"dexscreener.com",
	"dextools.io",
	"birdeye.so",
	"geckoterminal",
	"poocoin",
}

// ValidContractAddress reports whether addr matches the canonical address
// shape of the given chain. Unknown chains always reject. The input is
// trimmed; no other normalization is applied.
func ValidContractAddress(chain Chain, addr string) bool {
	addr = strings.TrimSpace(addr)
	switch chain {
	case ChainETH, ChainBSC, ChainBASE, ChainPOLY:
		return evmAddressRe.MatchString(addr)
	case ChainSOL:
		return solAddressRe.MatchString(addr)
	case ChainTON:
		return tonAddressRe.MatchString(addr)
	default:
		return false
	}
}

// AllowedChartURL reports whether the URL points at a known chart provider.
func AllowedChartURL(url string) bool {
	url = strings.ToLower(strings.TrimSpace(url))
	if url == "" {
		return false
	}
	for _, host := range chartHosts {
		if strings.Contains(url, host) {
			return true
		}
	}
	return false
}

// ExtractSocialLinks pulls HTTP(S) URLs and bare t.me/ links out of free
// text. Bare t.me links are normalized with an https:// prefix. The result
// preserves first-seen order, contains no duplicates, and is capped at
// MaxSocialLinks. An empty result means no valid links were found.
func ExtractSocialLinks(text string) LinkList {
	var out LinkList
	seen := make(map[string]struct{})
	for _, token := range strings.Fields(text) {
		var link string
		switch {
		case httpLinkRe.MatchString(token):
			link = token
		case tmeLinkRe.MatchString(token):
			link = "https://" + token
		default:
			continue
		}
		if _, dup := seen[link]; dup {
			continue
		}
		seen[link] = struct{}{}
		out = append(out, link)
		if len(out) == MaxSocialLinks {
			break
		}
	}
	return out
}
