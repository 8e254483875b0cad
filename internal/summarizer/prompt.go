package summarizer

import (
	"fmt"
	"strings"

	"gazettebot/internal/gazette"
	"gazettebot/pkg/tgui"
)

const (
	promptSingle = "Summarize the key notices from this Victorian %s Gazette into a concise bulleted list. " +
		"Name affected places, acts and agencies where given. Reply with the list only.\n\n%s"
	promptBatch = "Below are extracts from %d Victorian %s Gazettes, each introduced by a line starting with \"=== \". " +
		"Summarize the key notices across all of them into one concise bulleted list, " +
		"prefixing each bullet with the gazette it comes from. Reply with the list only.\n\n%s"
)

func buildPrompt(text string, cat gazette.Category) string {
	return fmt.Sprintf(promptSingle, cat.Label(), text)
}

func buildBatchPrompt(items []Item, budget int) string {
	var b strings.Builder
	label := items[0].Category.Label()
	for i, it := range items {
		if it.Category != items[0].Category {
			label = "Government"
		}
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("=== ")
		b.WriteString(it.Name)
		b.WriteString(" ===\n")
		b.WriteString(tgui.HeadRunes(strings.TrimSpace(it.Text), budget))
	}
	return fmt.Sprintf(promptBatch, len(items), label, b.String())
}
