// Package ingestion implements the FAQ ingestion pipeline. It loads the
// nested clinic FAQ JSON, flattens it into titled text chunks, embeds each
// chunk, and upserts the results into the vector store. The pipeline is
// invoked by the `faqrag ingest` CLI command.
package ingestion

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// FAQChunk is one flattened FAQ entry ready for embedding.
type FAQChunk struct {
	// Text is the titled, human-readable chunk text.
	Text string

	// Category is the top-level FAQ section (e.g. "clinic_info").
	Category string

	// Subcategory is the full dotted key path (e.g. "clinic_info.hours.monday").
	Subcategory string
}

// LoadFAQ reads and parses the nested FAQ JSON file.
func LoadFAQ(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ingestion: read FAQ file: %w", err)
	}

	var faq map[string]any
	if err := json.Unmarshal(data, &faq); err != nil {
		return nil, fmt.Errorf("ingestion: parse FAQ file %s: %w", path, err)
	}
	return faq, nil
}

// Flatten walks the nested FAQ structure and produces one chunk per leaf.
// Nested objects recurse with dotted key paths; arrays become bulleted
// lists; scalars become "Key: value" lines. Keys are title-cased with
// underscores replaced by spaces. Keys are visited in sorted order so the
// chunk sequence (and the derived point IDs) is deterministic.
func Flatten(faq map[string]any) []FAQChunk {
	return flatten(faq, "")
}

func flatten(node map[string]any, parent string) []FAQChunk {
	keys := make([]string, 0, len(node))
	for k := range node {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var chunks []FAQChunk
	for _, key := range keys {
		path := key
		if parent != "" {
			path = parent + "." + key
		}

		switch value := node[key].(type) {
		case map[string]any:
			chunks = append(chunks, flatten(value, path)...)
		case []any:
			var b strings.Builder
			b.WriteString(titleKey(path))
			b.WriteString(":\n")
			for i, item := range value {
				if i > 0 {
					b.WriteString("\n")
				}
				fmt.Fprintf(&b, "- %v", item)
			}
			chunks = append(chunks, FAQChunk{
				Text:        b.String(),
				Category:    categoryOf(path),
				Subcategory: path,
			})
		default:
			chunks = append(chunks, FAQChunk{
				Text:        fmt.Sprintf("%s: %v", titleKey(path), value),
				Category:    categoryOf(path),
				Subcategory: path,
			})
		}
	}
	return chunks
}

// categoryOf returns the first segment of a dotted key path.
func categoryOf(path string) string {
	if i := strings.IndexByte(path, '.'); i >= 0 {
		return path[:i]
	}
	return path
}

// titleKey converts a dotted snake_case key path into a readable title:
// "clinic_info.office_hours" → "Clinic Info.Office Hours".
func titleKey(path string) string {
	s := strings.ReplaceAll(path, "_", " ")
	var b strings.Builder
	upper := true
	for _, r := range s {
		switch {
		case r == ' ' || r == '.':
			upper = true
			b.WriteRune(r)
		case upper:
			b.WriteRune(toUpper(r))
			upper = false
		default:
			b.WriteRune(toLower(r))
		}
	}
	return b.String()
}

func toUpper(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - 32
	}
	return r
}

func toLower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + 32
	}
	return r
}
