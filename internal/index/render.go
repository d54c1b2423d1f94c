// Package index builds the index document of active records and keeps the
// keyword line of the skill document in step with it.
package index

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/starford/recall/internal/models"
	"github.com/starford/recall/internal/parser"
)

const (
	// KeywordCellWidth is the rune width at which table keyword cells are cut.
	KeywordCellWidth = 30
	// DescriptionKeywordLimit caps the keywords spliced into the skill document.
	DescriptionKeywordLimit = 15

	ellipsis           = "..."
	emptyRow           = "| - | No active memories | - | - |"
	noKeywords         = "(none)"
	noDescriptionValue = "(none yet)"
)

const header = `# Memory Index

> Generated from the active records. Manual edits are overwritten on the next rebuild.

## Active Memories

| ID | Topic | Keywords | Date |
|----|-------|----------|------|
`

// AggregateKeywords unions the keyword fields of records into a set ordered
// by first sighting. Placeholders and empty tokens are dropped.
func AggregateKeywords(records []models.Metadata) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range records {
		for _, kw := range parser.SplitKeywords(r.Keywords) {
			if _, dup := seen[kw]; dup {
				continue
			}
			seen[kw] = struct{}{}
			out = append(out, kw)
		}
	}
	return out
}

// Truncate cuts s to width runes and appends an ellipsis when it is longer.
func Truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	r := []rune(s)
	return string(r[:width]) + ellipsis
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// RenderIndex renders the full index document.
func RenderIndex(records []models.Metadata, keywords []string) []byte {
	var b strings.Builder
	b.WriteString(header)
	if len(records) == 0 {
		b.WriteString(emptyRow + "\n")
	}
	for _, r := range records {
		b.WriteString("| " + cell(r.ID) +
			" | " + cell(r.Topic) +
			" | " + cell(Truncate(r.Keywords, KeywordCellWidth)) +
			" | " + cell(r.Date) + " |\n")
	}
	b.WriteString("\n## Keywords\n\n")
	if len(keywords) == 0 {
		b.WriteString(noKeywords + "\n")
	} else {
		b.WriteString(strings.Join(keywords, ", ") + "\n")
	}
	return []byte(b.String())
}

// Seed is the index document of an empty workspace.
func Seed() []byte {
	return RenderIndex(nil, nil)
}

// RenderDescriptionKeywords returns the first DescriptionKeywordLimit
// keywords joined by commas, or a placeholder when there are none.
func RenderDescriptionKeywords(keywords []string) string {
	if len(keywords) == 0 {
		return noDescriptionValue
	}
	if len(keywords) > DescriptionKeywordLimit {
		keywords = keywords[:DescriptionKeywordLimit]
	}
	return strings.Join(keywords, ", ")
}

// The first group keeps the label. The value runs to the end of the line or
// up to a double quote, so a quoted YAML description stays closed.
var descriptionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^([^\r\n]*Current memory keywords:[ \t]*)[^\r\n"]*`),
	regexp.MustCompile(`(?m)^([^\r\n]*当前记忆关键词[:：][ \t]*)[^\r\n"]*`),
}

// SpliceDescription rewrites the keyword line of doc with value. Patterns are
// tried in order and only the first match is rewritten. When no pattern
// matches doc is returned unchanged and ok is false.
func SpliceDescription(doc []byte, value string) (out []byte, ok bool) {
	for _, re := range descriptionPatterns {
		loc := re.FindSubmatchIndex(doc)
		if loc == nil {
			continue
		}
		var b []byte
		b = append(b, doc[:loc[3]]...)
		b = append(b, value...)
		b = append(b, doc[loc[1]:]...)
		return b, true
	}
	return doc, false
}
