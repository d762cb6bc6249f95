package view

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"nginxlog/internal/format"
	"nginxlog/internal/model"
)

const (
	ansiReset     = "\x1b[0m"
	ansiBoldWhite = "\x1b[1;97m"
	ansiDim       = "\x1b[38;5;245m"
	ansiSeparator = "\x1b[38;5;240m"
	ansiSuccess   = "\x1b[38;5;71m"
	ansiRedirect  = "\x1b[38;5;44m"
	ansiClient    = "\x1b[38;5;220m"
	ansiServer    = "\x1b[38;5;203m"
	ansiFailure   = "\x1b[1;38;5;196m"
)

// Renderer formats outcomes as single terminal lines.
type Renderer struct {
	// Width truncates lines when positive.
	Width int
	Color bool
}

// NewRenderer resolves color and width from opts and the output terminal.
func NewRenderer(opts Options) Renderer {
	if opts.Out == nil && opts.OutFile != nil {
		opts.Out = opts.OutFile
	}
	return Renderer{
		Width: determineWidth(opts.OutFile, opts.Wrap),
		Color: resolveColorChoice(opts),
	}
}

// Write writes the rendered outcome followed by a newline.
func (r Renderer) Write(w io.Writer, o model.Outcome) error {
	_, err := fmt.Fprintln(w, r.Line(o))
	return err
}

// Line renders one outcome.
func (r Renderer) Line(o model.Outcome) string {
	var line string
	if o.OK() {
		line = r.recordLine(o.Line, *o.Record)
	} else {
		line = r.failureLine(*o.Failure)
	}
	if r.Width > 0 {
		line = truncateToWidth(line, r.Width)
		if r.Color {
			line += ansiReset
		}
	}
	return line
}

func (r Renderer) recordLine(n int, rec model.LogRecord) string {
	parts := []string{
		colorize(r.Color, ansiSeparator, fmt.Sprintf("#%04d", n)),
		colorize(r.Color, ansiBoldWhite, rec.RemoteAddr),
		rec.RemoteUser.String(),
		colorize(r.Color, ansiDim, rec.Timestamp.Format(format.TimeLayout)),
		colorize(r.Color, statusColor(rec.Status), fmt.Sprintf("%d", rec.Status)),
		r.request(rec),
		fmt.Sprintf("%dB", rec.BodyBytes),
		colorize(r.Color, ansiDim, quote(rec.Referer)),
		colorize(r.Color, ansiDim, quote(rec.UserAgent)),
	}
	return strings.Join(parts, " ")
}

// request highlights request lines whose method is not a standard verb.
func (r Renderer) request(rec model.LogRecord) string {
	line := format.RequestLine(rec)
	if rec.EmptyRequest() || rec.Method.Known() {
		return line
	}
	return colorize(r.Color, ansiClient, line)
}

func (r Renderer) failureLine(f model.ParseFailure) string {
	sep := colorize(r.Color, ansiSeparator, "|")
	return strings.Join([]string{
		colorize(r.Color, ansiSeparator, fmt.Sprintf("#%04d", f.Line)),
		colorize(r.Color, ansiFailure, "✗ "+string(f.Reason)),
		f.Detail,
		sep,
		colorize(r.Color, ansiDim, sanitize(f.Raw)),
	}, " ")
}

func quote(t model.Text) string {
	if t.IsAbsent() {
		return model.AbsentToken
	}
	return `"` + sanitize(t.String()) + `"`
}

func statusColor(status int) string {
	switch {
	case status >= 500:
		return ansiServer
	case status >= 400:
		return ansiClient
	case status >= 300:
		return ansiRedirect
	default:
		return ansiSuccess
	}
}

func colorize(enabled bool, code string, text string) string {
	if !enabled {
		return text
	}
	return code + text + ansiReset
}

// sanitize keeps terminal control sequences in log data from reaching the
// terminal.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return '?'
		}
		return r
	}, s)
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func truncateToWidth(text string, width int) string {
	if visibleWidth(text) <= width {
		return text
	}
	var out strings.Builder
	current := 0
	limit := width - 1

	for i := 0; i < len(text); {
		if m := ansiPattern.FindStringIndex(text[i:]); m != nil && m[0] == 0 {
			out.WriteString(text[i : i+m[1]])
			i += m[1]
			continue
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		rw := runewidth.RuneWidth(r)
		if current+rw > limit {
			break
		}
		out.WriteRune(r)
		current += rw
		i += size
	}
	out.WriteString("…")
	return out.String()
}

func visibleWidth(text string) int {
	return runewidth.StringWidth(ansiPattern.ReplaceAllString(text, ""))
}
