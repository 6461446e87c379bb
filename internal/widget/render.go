package widget

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fatih/color"

	"github.com/Mo-nish/Invensis-Requiter/internal/domain"
)

var (
	boldPattern   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicPattern = regexp.MustCompile(`\*([^*\n]+?)\*`)
)

// Renderer turns transcript entries into terminal text. It understands the
// markup subset replies use: **bold**, *italic*, line breaks and bullets.
type Renderer struct {
	bold    *color.Color
	italic  *color.Color
	faint   *color.Color
	user    *color.Color
	info    *color.Color
	good    *color.Color
	warn    *color.Color
	alert   *color.Color
	data    *color.Color
	welcome *color.Color
}

func NewRenderer(useColor bool) *Renderer {
	r := &Renderer{
		bold:    color.New(color.Bold),
		italic:  color.New(color.Italic),
		faint:   color.New(color.Faint),
		user:    color.New(color.FgHiWhite, color.Bold),
		info:    color.New(color.FgCyan),
		good:    color.New(color.FgGreen),
		warn:    color.New(color.FgYellow),
		alert:   color.New(color.FgRed, color.Bold),
		data:    color.New(color.FgBlue),
		welcome: color.New(color.FgMagenta),
	}
	for _, c := range []*color.Color{r.bold, r.italic, r.faint, r.user, r.info, r.good, r.warn, r.alert, r.data, r.welcome} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

// Entry renders the label line followed by the content.
func (r *Renderer) Entry(e Entry) string {
	var b strings.Builder
	b.WriteString(r.labelColor(e).Sprint(e.Label))
	if !e.Type.Known() {
		b.WriteString(r.faint.Sprintf(" [%s]", e.Type.Tag))
	}
	b.WriteByte('\n')
	b.WriteString(r.Markup(e.Content))

	for _, a := range e.Metadata.Actions {
		b.WriteByte('\n')
		b.WriteString(r.faint.Sprintf("  ▸ %s", actionText(a)))
	}
	return b.String()
}

func (r *Renderer) labelColor(e Entry) *color.Color {
	if e.Sender == domain.SenderUser {
		return r.user
	}
	switch e.Type.Kind {
	case domain.KindError, domain.KindUrgent:
		return r.alert
	case domain.KindSuccess:
		return r.good
	case domain.KindHelp, domain.KindContextualHelp:
		return r.info
	case domain.KindDataResponse:
		return r.data
	case domain.KindWelcome:
		return r.welcome
	case domain.KindQuickAction:
		return r.warn
	case domain.KindText, domain.KindUnknown:
		return r.bold
	default:
		return r.bold
	}
}

// Markup converts the reply markup to terminal text.
func (r *Renderer) Markup(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "• "):
			line = "  • " + strings.TrimSpace(strings.TrimPrefix(trimmed, "• "))
		case strings.HasPrefix(trimmed, "- "):
			line = "  • " + strings.TrimSpace(strings.TrimPrefix(trimmed, "- "))
		}
		line = boldPattern.ReplaceAllStringFunc(line, func(m string) string {
			return r.bold.Sprint(boldPattern.FindStringSubmatch(m)[1])
		})
		line = italicPattern.ReplaceAllStringFunc(line, func(m string) string {
			return r.italic.Sprint(italicPattern.FindStringSubmatch(m)[1])
		})
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) QuickActions(actions []domain.QuickAction) string {
	if len(actions) == 0 {
		return ""
	}
	parts := make([]string, 0, len(actions))
	for i, a := range actions {
		parts = append(parts, fmt.Sprintf("[%d] %s %s", i+1, a.Icon, a.Label))
	}
	return r.warn.Sprint(strings.Join(parts, "  "))
}

func (r *Renderer) Indicator(ind Indicator) string {
	if ind.Badge == 0 {
		return r.faint.Sprintf("%s · %s", ind.Title, ind.Subtitle)
	}
	return r.warn.Sprintf("(%d) %s · %s", ind.Badge, ind.Title, ind.Subtitle)
}

func (r *Renderer) Typing() string {
	return r.faint.Sprint("🤖 Invensis AI is typing…")
}

func actionText(a domain.Action) string {
	label := strings.TrimSpace(a.Icon + " " + a.Label)
	if a.URL != "" {
		return label + " → " + a.URL
	}
	return label
}
