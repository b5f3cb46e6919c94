// internal/topic/render.go
package topic

import (
	"fmt"
	"strings"
)

// RollingLines is how many lines a rolling-log slot keeps.
const RollingLines = 15

// roll appends add to lines and keeps the newest RollingLines.
func roll(lines, add []string) []string {
	out := append(append([]string(nil), lines...), add...)
	if len(out) > RollingLines {
		out = out[len(out)-RollingLines:]
	}
	return out
}

func rollingLog(title string, lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("**")
	b.WriteString(title)
	b.WriteString("**\n")
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}

// stamp renders a chat-side timestamp; the client formats it locally.
// style: t (time), f (date+time), R (relative).
func stamp(unix int64, style string) string {
	return fmt.Sprintf("<t:%d:%s>", unix, style)
}

// stripTags removes markup the game embeds in news text.
func stripTags(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '<':
			depth++
		case r == '>' && depth > 0:
			depth--
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func profileLink(name string, id int64) string {
	return fmt.Sprintf("[%s [%d]](https://www.torn.com/profiles.php?XID=%d)", name, id, id)
}
