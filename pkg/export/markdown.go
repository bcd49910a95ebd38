// Package export renders a flattree document to other formats. Currently
// markdown: a nested bullet outline mirroring the tree's hierarchy.
package export

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mz2/flattree/pkg/delegate"
)

// Markdown renders the items as a markdown outline under a title header.
// Every level of the hierarchy becomes one level of list nesting.
func Markdown(roots []*delegate.Item, title string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", time.Now().Format(time.RFC1123)))
	writeItems(&sb, roots, 0)
	return sb.String()
}

func writeItems(sb *strings.Builder, items []*delegate.Item, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, it := range items {
		label := it.Label
		if label == "" {
			label = it.ID
		}
		sb.WriteString(fmt.Sprintf("%s- %s\n", indent, escapeLabel(label)))
		writeItems(sb, it.Children, depth+1)
	}
}

// escapeLabel keeps labels from being read as markdown structure.
func escapeLabel(label string) string {
	label = strings.ReplaceAll(label, "\n", " ")
	if strings.HasPrefix(label, "#") || strings.HasPrefix(label, "-") {
		label = "\\" + label
	}
	return label
}

// SaveMarkdown writes the outline to a file.
func SaveMarkdown(roots []*delegate.Item, title, filename string) error {
	if err := os.WriteFile(filename, []byte(Markdown(roots, title)), 0o644); err != nil {
		return fmt.Errorf("write markdown export: %w", err)
	}
	return nil
}
