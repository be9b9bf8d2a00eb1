package promo

import (
	"fmt"
	"strings"
)

// Button is one labeled link attached to an announcement.
type Button struct {
	Label string
	URL   string
}

// Announcement is a rendered submission, ready for delivery: HTML text plus
// rows of URL buttons.
type Announcement struct {
	Text    string
	Buttons [][]Button
}

// EscapeHTML escapes the characters that carry markup meaning in Telegram
// HTML messages. Free-text fields are user supplied and must pass through
// here before embedding.
func EscapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// RenderAnnouncement formats a submission as the public channel post.
// channel names the posting destination in the disclaimer line. The
// description is truncated to the intake cap again here so an oversized
// stored value can never leak through.
func RenderAnnouncement(sub *Submission, channel string) Announcement {
	var lines []string
	lines = append(lines,
		fmt.Sprintf("🔥 <b>Token Promotion</b> — <i>%s</i>", EscapeHTML(sub.Chain.Label())),
		fmt.Sprintf("📄 <b>Contract:</b> <code>%s</code>", EscapeHTML(sub.ContractAddress)),
		fmt.Sprintf("📝 <b>About:</b> %s", EscapeHTML(Truncate(sub.Description, MaxDescriptionLen))),
	)
	if sub.ChartURL != "" {
		lines = append(lines, fmt.Sprintf("📈 <a href=\"%s\">Open Chart</a>", EscapeHTML(sub.ChartURL)))
	}
	lines = append(lines, fmt.Sprintf("\n<b>Disclaimer:</b> DYOR. Not financial advice. The admins of %s are not responsible.", EscapeHTML(channel)))

	var rows [][]Button
	if sub.ChartURL != "" {
		rows = append(rows, []Button{{Label: "📈 Chart", URL: sub.ChartURL}})
	}
	var socials []Button
	for i, link := range sub.SocialLinks {
		socials = append(socials, Button{Label: fmt.Sprintf("Social %d", i+1), URL: link})
	}
	if len(socials) > 0 {
		rows = append(rows, socials)
	}

	return Announcement{
		Text:    strings.Join(lines, "\n"),
		Buttons: rows,
	}
}
