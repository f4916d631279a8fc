package display

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/notesai/notesai/internal/reader"
)

// out receives all human-facing CLI output. Machine-readable results go to
// stdout from the commands themselves.
var out io.Writer = os.Stderr

// SetOutput redirects display output and returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	prev := out
	out = w
	return prev
}

// Tone colors the value of a Fact.
type Tone int

const (
	Plain Tone = iota
	Good
	Bad
	Caution
	Accent
	Muted
)

func (t Tone) color() string {
	switch t {
	case Good:
		return brightGreen
	case Bad:
		return red
	case Caution:
		return yellow
	case Accent:
		return brightMagenta
	case Muted:
		return dim + white
	default:
		return white
	}
}

// Progress reports a command that works through several inputs, one
// numbered line per input with indented results below it.
type Progress struct {
	total   int
	n       int
	started time.Time
}

// NewProgress starts a report over total inputs.
func NewProgress(total int) *Progress {
	return &Progress{total: total}
}

// Next announces the next input, like "  [2/3] Extracting week2.pdf".
func (p *Progress) Next(verb, subject string) {
	p.n++
	p.started = time.Now()
	fmt.Fprintf(out, "  %s%s[%d/%d]%s %s%s %s%s\n",
		bold, brightCyan, p.n, p.total, reset,
		white, verb, subject, reset,
	)
}

// Extracted reports a document's character count and winning scanner.
func (p *Progress) Extracted(doc reader.Document) {
	p.Result(doc.Name, fmt.Sprintf("%d chars via %s", doc.OriginalLength, doc.Strategy))
	if doc.Truncated {
		p.Detail("truncated to the configured maximum")
	}
}

// Result prints a highlighted value under the current input.
func (p *Progress) Result(label string, value any) {
	fmt.Fprintf(out, "        %s%s%s %s%v%s\n",
		dim, label, reset,
		bold+brightGreen, value, reset,
	)
}

// Detail prints a dim note under the current input.
func (p *Progress) Detail(msg string) {
	fmt.Fprintf(out, "        %s%s%s\n", dim+white, msg, reset)
}

// Skipped reports an input, or a file inside it, that could not be used.
func (p *Progress) Skipped(subject string, err error) {
	fmt.Fprintf(out, "        %s%s⚠ %s: %v%s\n", yellow, bold, subject, err, reset)
}

// Done prints how long the current input took.
func (p *Progress) Done() {
	p.Detail("took " + formatDuration(time.Since(p.started)))
}

// Info prints a general info message.
func Info(msg string) {
	fmt.Fprintf(out, "  %s%sℹ%s %s\n", brightBlue, bold, reset, msg)
}

// Success prints a green success message.
func Success(msg string) {
	fmt.Fprintf(out, "  %s%s✓%s %s\n", brightGreen, bold, reset, msg)
}

// Warn prints a yellow warning message.
func Warn(msg string) {
	fmt.Fprintf(out, "  %s%s⚠%s %s%s%s\n", brightYellow, bold, reset, yellow, msg, reset)
}

// ErrorMsg prints a red error message.
func ErrorMsg(msg string) {
	fmt.Fprintf(out, "  %s%s✗%s %s%s%s\n", brightRed, bold, reset, red, msg, reset)
}

// Header prints a section header line.
func Header(msg string) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s%s%s%s\n", bold, brightCyan, msg, reset)
	fmt.Fprintf(out, "  %s%s%s%s\n", dim, cyan, rule, reset)
}

// Fact prints an aligned "key  value" line of a report.
func Fact(key string, value any, tone Tone) {
	fmt.Fprintf(out, "    %s%s%s  %s%v%s\n", dim, padRight(key, 18), reset, tone.color(), value, reset)
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dμs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
}
