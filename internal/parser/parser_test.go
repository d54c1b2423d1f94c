package parser

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/starford/recall/internal/apperr"
)

func TestExtract_EnglishLabels(t *testing.T) {
	input := []byte("# Memory Summary\n\n## Topic\nAPI Design\n\n**Keywords**: rest, grpc\n**Time**: 2026-01-11 14:30:00\n")
	md := Extract(input)
	if md.Topic != "API Design" {
		t.Errorf("topic = %q", md.Topic)
	}
	if md.Keywords != "rest, grpc" {
		t.Errorf("keywords = %q", md.Keywords)
	}
	if md.Date != "2026-01-11 14:30:00" {
		t.Errorf("date = %q", md.Date)
	}
}

func TestExtract_ChineseLabels(t *testing.T) {
	input := []byte("## 主题\n接口设计\n\n**关键词**：接口，设计\n**时间**: 2026-01-11\n")
	md := Extract(input)
	if md.Topic != "接口设计" || md.Keywords != "接口，设计" || md.Date != "2026-01-11" {
		t.Errorf("metadata = %+v", md)
	}
}

func TestExtract_FirstRuleWins(t *testing.T) {
	input := []byte("## 主题\n中文\n\n## Topic\nEnglish\n")
	if md := Extract(input); md.Topic != "English" {
		t.Errorf("topic = %q, want English", md.Topic)
	}
}

func TestExtract_Defaults(t *testing.T) {
	md := Extract([]byte("just some text\nwith no labels\n"))
	if md.Topic != DefaultTopic {
		t.Errorf("topic = %q, want %q", md.Topic, DefaultTopic)
	}
	if md.Keywords != "" || md.Date != "" {
		t.Errorf("expected empty keywords/date, got %+v", md)
	}
}

func TestExtract_TopicHeadingWithoutLine(t *testing.T) {
	md := Extract([]byte("## Topic\n\n**Keywords**: a\n"))
	if md.Topic != DefaultTopic {
		t.Errorf("topic = %q, want default", md.Topic)
	}
	if md.Keywords != "a" {
		t.Errorf("keywords = %q", md.Keywords)
	}
}

func TestExtract_CRLF(t *testing.T) {
	md := Extract([]byte("## Topic\r\nWindows\r\n**Keywords**: x, y\r\n"))
	if md.Topic != "Windows" || md.Keywords != "x, y" {
		t.Errorf("metadata = %+v", md)
	}
}

func TestExtractFile_Missing(t *testing.T) {
	_, err := ExtractFile(filepath.Join(t.TempDir(), "summary.md"))
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestExtractFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.md")
	if err := os.WriteFile(path, []byte("## Topic\nX\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	md, err := ExtractFile(path)
	if err != nil || md.Topic != "X" {
		t.Errorf("ExtractFile = %+v, %v", md, err)
	}
}

func TestSplitKeywords(t *testing.T) {
	cases := []struct {
		raw  string
		want []string
	}{
		{"a, b, c", []string{"a", "b", "c"}},
		{"a，b, ,c", []string{"a", "b", "c"}},
		{"[keyword1], [keyword2], [keyword3]", nil},
		{"[关键词1]，real", []string{"real"}},
		{"Go, go", []string{"Go", "go"}},
		{"", nil},
	}
	for _, tc := range cases {
		if got := SplitKeywords(tc.raw); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("SplitKeywords(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}
