// Package markdown renders the restricted markdown dialect returned by the
// generation service into display nodes. Text content is always carried as
// literal data: no HTML, links, or script can pass through to the client.
package markdown

import (
	"regexp"
	"strings"
)

// Kind classifies a rendered line.
type Kind string

const (
	KindSpacer       Kind = "spacer"
	KindHeading      Kind = "heading"
	KindSubHeading   Kind = "subheading"
	KindBullet       Kind = "bullet"
	KindNumberedItem Kind = "numbered"
	KindParagraph    Kind = "paragraph"
)

// Span is a run of literal text, optionally emphasized.
type Span struct {
	Text string `json:"text"`
	Bold bool   `json:"bold,omitempty"`
}

// Node is one rendered line.
type Node struct {
	Kind  Kind   `json:"kind"`
	Spans []Span `json:"spans,omitempty"`
}

// Text returns the node's concatenated literal text.
func (n Node) Text() string {
	var sb strings.Builder
	for _, s := range n.Spans {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

var numberedRe = regexp.MustCompile(`^\d+\.`)

// Render transforms text line by line. Line forms are tested in priority
// order; anything unrecognized is a paragraph.
func Render(text string) []Node {
	lines := strings.Split(text, "\n")
	nodes := make([]Node, 0, len(lines))

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			nodes = append(nodes, Node{Kind: KindSpacer})
		case strings.HasPrefix(trimmed, "####"):
			body := strings.TrimSpace(strings.TrimPrefix(trimmed, "####"))
			nodes = append(nodes, Node{Kind: KindSubHeading, Spans: parseInline(body)})
		case strings.HasPrefix(trimmed, "###"):
			body := strings.TrimSpace(strings.TrimPrefix(trimmed, "###"))
			nodes = append(nodes, Node{Kind: KindHeading, Spans: parseInline(body)})
		case strings.HasPrefix(trimmed, "-") || strings.HasPrefix(trimmed, "•"):
			body := strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(trimmed, "-"), "•"))
			nodes = append(nodes, Node{Kind: KindBullet, Spans: parseInline(body)})
		case numberedRe.MatchString(trimmed):
			// Indented as-is; the number is display content, not re-parsed.
			nodes = append(nodes, Node{Kind: KindNumberedItem, Spans: parseInline(trimmed)})
		default:
			nodes = append(nodes, Node{Kind: KindParagraph, Spans: parseInline(trimmed)})
		}
	}
	return nodes
}

// parseInline splits on **bold** delimiters. Odd segments between complete
// delimiter pairs are emphasized; everything else stays literal, including
// an unpaired trailing delimiter.
func parseInline(text string) []Span {
	parts := strings.Split(text, "**")
	if len(parts) == 1 {
		return []Span{{Text: text}}
	}

	// With an even part count the final delimiter is unpaired; glue the
	// last part back as literal text.
	unpaired := len(parts)%2 == 0

	spans := make([]Span, 0, len(parts))
	for i, part := range parts {
		bold := i%2 == 1
		if unpaired && i == len(parts)-1 {
			// Re-glue before the empty check: a trailing "**" with
			// nothing after it is still literal text.
			bold = false
			part = "**" + part
		}
		if part == "" {
			continue
		}
		spans = append(spans, Span{Text: part, Bold: bold})
	}
	if len(spans) == 0 {
		spans = append(spans, Span{Text: ""})
	}
	return spans
}
