package notifier

import (
	"fmt"
	"strings"

	"gazettebot/internal/gazette"
	kit "gazettebot/internal/transport"
	"gazettebot/pkg/tgui"
)

// Message is one logical notification; Deliver may split it.
type Message struct {
	Text    string
	Options kit.SendOptions
}

func htmlMessage(h tgui.H) Message {
	return Message{
		Text:    h.String(),
		Options: kit.SendOptions{ParseMode: tgui.ParseModeHTML, DisablePreview: true},
	}
}

const dateLayout = "2 Jan 2006"

// FormatItem renders a single gazette notice.
func FormatItem(doc gazette.Document) Message {
	parts := []tgui.H{
		tgui.Raw("🗞 ") + tgui.B("New Gazette Found!"),
		tgui.Esc(doc.Name),
		tgui.I(fmt.Sprintf("%s · %s", doc.Published.Format(dateLayout), doc.Category.Label())),
	}
	body := tgui.JoinH("\n", parts...)
	if s := strings.TrimSpace(doc.Summary); s != "" {
		body = tgui.JoinH("\n\n", body, tgui.B("Key Highlights:")+"\n"+tgui.Esc(s))
	}
	body = tgui.JoinH("\n\n", body, tgui.Raw("🔗 ")+tgui.Link("View Full Gazette", doc.ID))
	return htmlMessage(body)
}

// FormatDigest renders every document of a run in one message, grouped by
// category (Special first). A summary shared by several documents is printed
// once, under the first group that carries it.
func FormatDigest(docs []gazette.Document) Message {
	title := "New Gazette Found!"
	if len(docs) > 1 {
		title = fmt.Sprintf("%d New Gazettes Found!", len(docs))
	}
	sections := []tgui.H{tgui.Raw("🗞 ") + tgui.B(title)}

	dup := map[string]bool{}
	for _, cat := range []gazette.Category{gazette.Special, gazette.General} {
		var links []tgui.H
		var summaries []string
		for _, d := range docs {
			if d.Category != cat {
				continue
			}
			links = append(links, tgui.Link(d.Name, d.ID)+tgui.Raw(" ")+tgui.I("("+d.Published.Format(dateLayout)+")"))
			if s := strings.TrimSpace(d.Summary); s != "" && !dup[s] {
				dup[s] = true
				summaries = append(summaries, s)
			}
		}
		if len(links) == 0 {
			continue
		}
		section := tgui.B(cat.Label()) + "\n" + tgui.Bullets(links...)
		if len(summaries) > 0 {
			hs := make([]tgui.H, len(summaries))
			for i, s := range summaries {
				hs[i] = tgui.Esc(s)
			}
			section = tgui.JoinH("\n\n", section, tgui.B("Key Highlights:")+"\n"+tgui.JoinH("\n\n", hs...))
		}
		sections = append(sections, section)
	}
	return htmlMessage(tgui.JoinH("\n\n", sections...))
}
