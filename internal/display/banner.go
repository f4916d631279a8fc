package display

import (
	"fmt"
	"io"
	"strings"
)

// ANSI color codes
const (
	reset = "\033[0m"
	bold  = "\033[1m"
	dim   = "\033[2m"

	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
	white  = "\033[37m"

	brightRed     = "\033[91m"
	brightGreen   = "\033[92m"
	brightYellow  = "\033[93m"
	brightBlue    = "\033[94m"
	brightMagenta = "\033[95m"
	brightCyan    = "\033[96m"
	brightWhite   = "\033[97m"
)

// ServerInfo holds all the information to display in the startup banner.
type ServerInfo struct {
	Version string

	// Extraction limits
	MaxTextLength  int
	Timeout        string
	MaxUploadBytes int64

	// Notes analysis (optional)
	LLMEnabled bool
	LLMModel   string
	LLMBaseURL string

	// Notes library
	Embedding string
	TopK      int

	// Server
	Port int
}

// PrintBanner prints the startup banner for the extraction service.
func PrintBanner(info ServerInfo) {
	printBanner(out, info)
}

func printBanner(w io.Writer, info ServerInfo) {
	host := fmt.Sprintf("http://localhost:%d", info.Port)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s%s📝 NotesAI Extraction Server%s %s%s%s\n", bold, brightCyan, reset, dim, info.Version, reset)
	fmt.Fprintf(w, "  %s%s%s%s\n", dim, cyan, rule, reset)
	fmt.Fprintln(w)

	printSectionHeader(w, "📄 Extraction")
	if info.MaxTextLength > 0 {
		printKVColored(w, "Max Text", formatCount(info.MaxTextLength)+" chars", brightGreen)
	} else {
		printKVColored(w, "Max Text", "unlimited", brightYellow)
	}
	printKV(w, "Timeout", info.Timeout, white)
	printKV(w, "Max Upload", formatBytes(info.MaxUploadBytes), white)
	fmt.Fprintln(w)

	printSectionHeader(w, "🧠 Notes Analysis")
	if info.LLMEnabled {
		printKVColored(w, "Analysis", "✓ enabled", brightGreen)
		printKV(w, "LLM Model", info.LLMModel, brightMagenta)
		printKV(w, "LLM Endpoint", maskURL(info.LLMBaseURL), dim+white)
	} else {
		printKVColored(w, "Analysis", "✗ disabled (set LLM_API_KEY to enable)", brightYellow)
	}
	fmt.Fprintln(w)

	printSectionHeader(w, "📚 Notes Library")
	printKV(w, "Embedding", info.Embedding, white)
	printKV(w, "Passages", fmt.Sprintf("top %d per question", info.TopK), white)
	fmt.Fprintln(w)

	printSectionHeader(w, "🌐 Endpoints")
	printEndpoint(w, "Extract", "POST", host+"/v1/extract", brightBlue)
	printEndpoint(w, "Analyze", "POST", host+"/v1/analyze", brightMagenta)
	printEndpoint(w, "Chat", "POST", host+"/v1/chat", brightMagenta)
	printEndpoint(w, "Docs", "GET ", host+"/v1/documents", brightBlue)
	printEndpoint(w, "Flow", "GET ", host+"/v1/flowchart", brightBlue)
	printEndpoint(w, "Health", "GET ", host+"/health", green)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  %s%s%s%s\n", dim, cyan, rule, reset)
	fmt.Fprintf(w, "  %s%s🚀 Server listening on %s%s%s%s\n", dim, white, reset, bold+brightGreen, host, reset)
	fmt.Fprintf(w, "  %s%s%s%s\n", dim, cyan, rule, reset)
	fmt.Fprintln(w)
}

const rule = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

func printSectionHeader(w io.Writer, title string) {
	fmt.Fprintf(w, "  %s%s%s%s\n", bold, brightYellow, title, reset)
}

func printKV(w io.Writer, key, value, valueColor string) {
	paddedKey := padRight(key, 18)
	fmt.Fprintf(w, "    %s%s%s  %s%s%s\n", dim, paddedKey, reset, valueColor, value, reset)
}

func printKVColored(w io.Writer, key, value, valueColor string) {
	paddedKey := padRight(key, 18)
	fmt.Fprintf(w, "    %s%s%s  %s%s%s%s\n", dim, paddedKey, reset, bold, valueColor, value, reset)
}

func printEndpoint(w io.Writer, label, method, url, color string) {
	paddedLabel := padRight(label, 8)
	fmt.Fprintf(w, "    %s%s%s %s%s%-5s%s %s%s%s\n",
		dim, paddedLabel, reset,
		bold, brightWhite, method, reset,
		color, url, reset,
	)
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}

func formatCount(n int) string {
	if n >= 1_000_000 {
		return fmt.Sprintf("%d (%0.1fM)", n, float64(n)/1_000_000)
	}
	if n >= 1_000 {
		return fmt.Sprintf("%d (%0.1fK)", n, float64(n)/1_000)
	}
	return fmt.Sprintf("%d", n)
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// maskURL trims the trailing slash for compact display.
func maskURL(rawURL string) string {
	if rawURL == "" {
		return "(not set)"
	}
	return strings.TrimRight(rawURL, "/")
}
