package annotations

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
)

// OutputFormatter formats events for human-readable display.
type OutputFormatter struct {
	useColor bool
	writer   io.Writer
}

// NewOutputFormatter creates a formatter writing to w (stdout when nil),
// with color enabled when w is the file with descriptor 1 or 2. Whether
// that file is a terminal is not checked.
func NewOutputFormatter(w io.Writer) *OutputFormatter {
	if w == nil {
		w = os.Stdout
	}
	useColor := false
	if f, ok := w.(*os.File); ok {
		useColor = isTerminal(f.Fd())
	}
	return &OutputFormatter{useColor: useColor, writer: w}
}

// Handle prints events as they occur.
func (f *OutputFormatter) Handle(event Event) {
	output := f.Format(event)
	if output != "" {
		fmt.Fprintln(f.writer, output)
	}
}

// Format converts an event to a human-readable string.
func (f *OutputFormatter) Format(event Event) string {
	latency := f.formatLatency(event.Latency)

	switch event.Name {
	case QueryBegin:
		return fmt.Sprintf("%s %s query %v", latency, f.colorize("-->", color.FgYellow), event.Data["span"])

	case QueryCompleted:
		return fmt.Sprintf("%s %s query %v returned %s",
			latency,
			f.colorize("===", color.FgGreen),
			event.Data["span"],
			f.colorizeCount("haps", intData(event, "haps.count")))

	case NotationParsed:
		return fmt.Sprintf("%s parsed %q", latency, event.Data["source"])

	case NotationFailed:
		return fmt.Sprintf("%s %s parse failed: %v", latency, f.colorize("✗", color.FgRed), event.Data["error"])

	case TransportExpanded:
		return fmt.Sprintf("%s expanded %s over %s",
			latency,
			f.colorizeCount("cycles", intData(event, "cycles.count")),
			f.colorizeCount("haps", intData(event, "haps.count")))

	case PeriodDetected:
		if found, _ := event.Data["found"].(bool); !found {
			return fmt.Sprintf("%s no period within %v cycles", latency, event.Data["max"])
		}
		return fmt.Sprintf("%s period detected: %v cycles", latency, event.Data["period"])
	}
	return ""
}

func intData(event Event, key string) int {
	if n, ok := event.Data[key].(int); ok {
		return n
	}
	return 0
}

// formatLatency renders the event duration, colored by magnitude.
func (f *OutputFormatter) formatLatency(d time.Duration) string {
	if d < time.Millisecond {
		s := fmt.Sprintf("[%dµs]", d.Microseconds())
		if !f.useColor {
			return s
		}
		return color.GreenString(s)
	}

	ms := float64(d.Microseconds()) / 1000.0
	s := fmt.Sprintf("[%.1fms]", ms)
	if !f.useColor {
		return s
	}
	switch {
	case ms < 50:
		return color.GreenString(s)
	case ms < 500:
		return color.YellowString(s)
	default:
		return color.RedString(s)
	}
}

func (f *OutputFormatter) colorizeCount(label string, count int) string {
	text := fmt.Sprintf("%d %s", count, label)
	if !f.useColor {
		return text
	}
	switch label {
	case "haps":
		return color.MagentaString(text)
	case "cycles":
		return color.CyanString(text)
	default:
		return text
	}
}

// colorize applies color if enabled.
func (f *OutputFormatter) colorize(text string, attrs ...color.Attribute) string {
	if !f.useColor {
		return text
	}
	return color.New(attrs...).Sprint(text)
}

// ConsoleHandler creates a handler that prints formatted events to
// stdout.
func ConsoleHandler() Handler {
	formatter := NewOutputFormatter(os.Stdout)
	return formatter.Handle
}

func isTerminal(fd uintptr) bool {
	return fd == uintptr(1) || fd == uintptr(2) // stdout or stderr
}
