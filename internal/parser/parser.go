// Package parser extracts labeled metadata fields from free-text summary
// documents.
package parser

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/starford/recall/internal/apperr"
	"github.com/starford/recall/internal/models"
)

// DefaultTopic is returned when no title line is found.
const DefaultTopic = "Unknown Topic"

// rule extracts one field. The first capture group is the value.
type rule struct {
	name string
	re   *regexp.Regexp
}

// Rules per field, tried in order; the first match wins. New label
// variants are added here.
var (
	titleRules = []rule{
		{"topic-en", regexp.MustCompile(`(?mi)^##[ \t]*Topic[ \t]*\r?\n([^\r\n]*\S[^\r\n]*)`)},
		{"topic-zh", regexp.MustCompile(`(?m)^##[ \t]*主题[ \t]*\r?\n([^\r\n]*\S[^\r\n]*)`)},
	}
	keywordRules = []rule{
		{"keywords-en", regexp.MustCompile(`(?mi)^\*\*Keywords\*\*[ \t]*[:：][ \t]*([^\r\n]*)`)},
		{"keywords-zh", regexp.MustCompile(`(?m)^\*\*关键词\*\*[ \t]*[:：][ \t]*([^\r\n]*)`)},
	}
	dateRules = []rule{
		{"time-en", regexp.MustCompile(`(?mi)^\*\*Time\*\*[ \t]*[:：][ \t]*([^\r\n]*)`)},
		{"time-zh", regexp.MustCompile(`(?m)^\*\*时间\*\*[ \t]*[:：][ \t]*([^\r\n]*)`)},
	}
)

func firstMatch(rules []rule, text string) (string, bool) {
	for _, r := range rules {
		if m := r.re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1]), true
		}
	}
	return "", false
}

// Extract pulls topic, keyword field and date out of a summary document.
// Missing fields fall back to defaults; Extract never fails.
func Extract(summary []byte) models.Metadata {
	text := string(summary)
	md := models.Metadata{Topic: DefaultTopic}
	if v, ok := firstMatch(titleRules, text); ok {
		md.Topic = v
	}
	md.Keywords, _ = firstMatch(keywordRules, text)
	md.Date, _ = firstMatch(dateRules, text)
	return md
}

// ExtractFile reads and extracts the summary at path.
func ExtractFile(path string) (models.Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.Metadata{}, fmt.Errorf("parser: %s: %w", path, apperr.ErrNotFound)
		}
		return models.Metadata{}, apperr.WrapIO("read", path, err)
	}
	return Extract(data), nil
}

// Placeholders are the unfilled template markers dropped from keyword lists.
var Placeholders = []string{
	"[keyword1]", "[keyword2]", "[keyword3]", "[keywords]",
	"[关键词1]", "[关键词2]", "[关键词3]", "[关键词]",
}

var placeholderSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Placeholders))
	for _, p := range Placeholders {
		m[p] = struct{}{}
	}
	return m
}()

// IsPlaceholder reports whether token is an unfilled template marker.
func IsPlaceholder(token string) bool {
	_, ok := placeholderSet[token]
	return ok
}

var separatorRe = regexp.MustCompile(`[,，]`)

// SplitKeywords splits a raw keyword field on ASCII and full-width commas,
// dropping empty tokens and placeholders. Order and duplicates are kept.
func SplitKeywords(raw string) []string {
	var out []string
	for _, tok := range separatorRe.Split(raw, -1) {
		tok = strings.TrimSpace(tok)
		if tok == "" || IsPlaceholder(tok) {
			continue
		}
		out = append(out, tok)
	}
	return out
}
