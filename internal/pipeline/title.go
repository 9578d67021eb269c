package pipeline

import "strings"

// Title returns the plain text of the first level 1 heading, or "" when
// there is none.
func Title(events []Event) string {
	var sb strings.Builder
	inside := false
	for _, ev := range events {
		if !inside {
			inside = ev.IsStart(KindHeading) && ev.Level == 1
			continue
		}
		switch {
		case ev.IsEnd(KindHeading):
			return strings.TrimSpace(sb.String())
		case ev.Kind == KindText, ev.Kind == KindCodeSpan:
			sb.WriteString(ev.Content)
		case ev.Kind == KindSoftBreak, ev.Kind == KindHardBreak:
			sb.WriteByte(' ')
		}
	}
	return strings.TrimSpace(sb.String())
}
