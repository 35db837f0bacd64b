package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/harrison/codescout/internal/models"
)

// Warning represents a user-facing warning message
type Warning struct {
	Title      string   // Main warning title
	Message    string   // Detailed explanation (optional)
	Items      []string // Affected directories (optional)
	Suggestion string   // Action to take (optional)
	Color      bool     // Wrap the block in yellow ANSI codes
}

// Display writes the formatted warning to out.
func (w Warning) Display(out io.Writer) {
	var b strings.Builder

	if w.Color {
		b.WriteString("\x1b[33m")
	}
	b.WriteString("⚠️  Warning: ")
	b.WriteString(w.Title)
	b.WriteString("\n")

	if w.Message != "" {
		b.WriteString("    ")
		b.WriteString(w.Message)
		b.WriteString("\n")
	}

	if len(w.Items) > 0 {
		if len(w.Items) == 1 {
			b.WriteString("    Affected directory:\n")
		} else {
			b.WriteString("    Affected directories:\n")
		}
		for i, item := range w.Items {
			fmt.Fprintf(&b, "      %d. %s\n", i+1, item)
		}
	}

	if w.Suggestion != "" {
		b.WriteString("    Suggestion:\n")
		b.WriteString("    ")
		b.WriteString(w.Suggestion)
		b.WriteString("\n")
	}

	if w.Color {
		b.WriteString("\x1b[0m")
	}

	fmt.Fprint(out, b.String())
}

// WarnMissingDirectories builds the warning for --dirs entries that could not be researched.
func WarnMissingDirectories(missing []*models.ResearchError) Warning {
	items := make([]string, 0, len(missing))
	for _, m := range missing {
		if m == nil {
			continue
		}
		items = append(items, fmt.Sprintf("%s (%s)", m.Target, m.Message))
	}
	return Warning{
		Title:      "Requested directories not found",
		Message:    "These entries are reported as not_found in the summary and were not researched.",
		Items:      items,
		Suggestion: "Check the --dirs paths; they are resolved relative to the project root.",
	}
}

// WarnDuplicateDirectories builds the warning for --dirs entries listed more than once.
func WarnDuplicateDirectories(duplicates []string) Warning {
	return Warning{
		Title:   "Duplicate directories ignored",
		Message: "Each directory is researched once; later repeats were dropped.",
		Items:   duplicates,
	}
}
