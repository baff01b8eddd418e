package bot

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitMessage_ShortPassesThrough(t *testing.T) {
	chunks := splitMessage("привет", messageLimit)
	if len(chunks) != 1 || chunks[0] != "привет" {
		t.Fatalf("unexpected chunks %q", chunks)
	}
}

func TestSplitMessage_PrefersNewline(t *testing.T) {
	content := strings.Repeat("a", 90) + "\n" + strings.Repeat("b", 50)
	chunks := splitMessage(content, 100)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %q", len(chunks), chunks)
	}
	if chunks[0] != strings.Repeat("a", 90) {
		t.Fatalf("expected cut at newline, got %q", chunks[0])
	}
	if chunks[1] != strings.Repeat("b", 50) {
		t.Fatalf("boundary newline must be dropped, got %q", chunks[1])
	}
}

func TestSplitMessage_NeverCutsRune(t *testing.T) {
	content := strings.Repeat("ы", 300) // 2 bytes each
	chunks := splitMessage(content, 101)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks")
	}
	var rebuilt strings.Builder
	for _, chunk := range chunks {
		if !utf8.ValidString(chunk) {
			t.Fatalf("chunk is not valid UTF-8: %q", chunk)
		}
		rebuilt.WriteString(chunk)
	}
	if rebuilt.String() != content {
		t.Fatalf("chunks must reassemble into the original content")
	}
}

func TestSplitMessage_RespectsLimit(t *testing.T) {
	content := strings.Repeat("слово и ещё ", 1000)
	for _, chunk := range splitMessage(content, messageLimit) {
		if len(chunk) > messageLimit {
			t.Fatalf("chunk of %d bytes exceeds limit %d", len(chunk), messageLimit)
		}
	}
}
