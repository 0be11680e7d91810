package annotations

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/wbrown/uzu-pattern/uzu"
)

// HapFormatter renders hap lists as markdown tables for debugging and
// examples.
type HapFormatter struct {
	// MaxWidth is the maximum width for the value column
	MaxWidth int
	// TruncateString is the string to append when truncating
	TruncateString string
}

// NewHapFormatter creates a formatter with default settings.
func NewHapFormatter() *HapFormatter {
	return &HapFormatter{
		MaxWidth:       50,
		TruncateString: "...",
	}
}

// FormatHaps formats a hap list as a markdown table, one row per hap.
func (hf *HapFormatter) FormatHaps(haps []uzu.Hap) string {
	if len(haps) == 0 {
		return "_No haps_"
	}

	tableString := &strings.Builder{}

	headers := []string{"part", "whole", "value", "tags"}
	alignment := make([]tw.Align, len(headers))
	for i := range alignment {
		alignment[i] = tw.AlignNone
	}

	table := tablewriter.NewTable(tableString,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithAlignment(alignment),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
	table.Header(headers)

	for _, h := range haps {
		whole := "~"
		if h.Whole != nil {
			whole = h.Whole.String()
		}
		table.Append([]string{
			h.Part.String(),
			whole,
			hf.truncate(h.Value.String()),
			strings.Join(h.Context.Tags, " "),
		})
	}

	table.Render()
	tableString.WriteString(fmt.Sprintf("\n_%d haps_\n", len(haps)))
	return tableString.String()
}

func (hf *HapFormatter) truncate(s string) string {
	if hf.MaxWidth <= 0 || len(s) <= hf.MaxWidth {
		return s
	}
	cut := hf.MaxWidth - len(hf.TruncateString)
	if cut < 0 {
		cut = 0
	}
	return s[:cut] + hf.TruncateString
}
