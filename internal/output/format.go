// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"todolist/internal/todo"
)

const (
	// BannerMessage is shown while the error flag is raised.
	BannerMessage = "Storage quota exceeded, the new task will not be saved"

	boxOpen = "[ ]"
	boxDone = "[x]"

	// detailsIndent lines details up under the title.
	detailsIndent = "          "
)

// FormatItem formats one item in display position num.
// Format: "{N:>4}  [ ] {TITLE}\n", then "          {DETAILS}\n" when the item
// has details.
func FormatItem(w io.Writer, num int, item todo.Item) {
	box := boxOpen
	if item.Done {
		box = boxDone
	}
	fmt.Fprintf(w, "%4d  %s %s\n", num, box, normalizeTitle(item.Title))
	if details := normalizeDetails(item.Details); details != "" {
		fmt.Fprintf(w, "%s%s\n", detailsIndent, details)
	}
}

// FormatList formats entries numbered from 1 in the order given.
func FormatList(w io.Writer, entries []todo.Entry) {
	for i, e := range entries {
		FormatItem(w, i+1, e.Item)
	}
}

// FormatErrorBanner formats the storage error banner.
func FormatErrorBanner(w io.Writer, reason string) {
	if reason == "" {
		fmt.Fprintf(w, "! %s\n", BannerMessage)
		return
	}
	fmt.Fprintf(w, "! %s (%s)\n", BannerMessage, reason)
}

// normalizeTitle normalizes a title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = flatten(title)
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

// normalizeDetails flattens details onto one line. Blank details print nothing.
func normalizeDetails(details string) string {
	return strings.TrimSpace(flatten(details))
}

func flatten(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
