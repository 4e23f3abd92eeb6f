package tui

import (
	"os/exec"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
)

// readClipboard is swapped out in tests.
var readClipboard = readClipboardText

func readClipboardText() (string, error) {
	if runtime.GOOS == "darwin" {
		if output, err := exec.Command("pbpaste", "-Prefer", "txt").Output(); err == nil {
			return string(output), nil
		}
	}
	return clipboard.ReadAll()
}

// pasteText turns clipboard content into something a one-line field can
// take: rich text is stripped and line breaks become spaces.
func pasteText(raw string) string {
	text := cleanClipboardText(raw)
	if isHTML(text) {
		text = extractTextFromHTML(text)
	}
	return strings.Join(strings.Fields(text), " ")
}

func isHTML(text string) bool {
	t := strings.TrimSpace(text)
	return strings.HasPrefix(t, "<") &&
		(strings.Contains(t, "<html") || strings.Contains(t, "<body") || strings.Contains(t, "<div") || strings.Contains(t, "<p"))
}

var htmlEntities = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&amp;", "&",
	"&quot;", "\"",
	"&#39;", "'",
	"&nbsp;", " ",
)

func extractTextFromHTML(html string) string {
	var result strings.Builder
	result.Grow(len(html))
	inTag := false
	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			result.WriteRune(' ')
		case !inTag:
			result.WriteRune(r)
		}
	}
	return htmlEntities.Replace(result.String())
}

// cleanClipboardText strips RTF markup and control characters and
// normalizes line endings.
func cleanClipboardText(text string) string {
	if text == "" {
		return text
	}
	text = stripRTF(text)
	var result strings.Builder
	result.Grow(len(text))
	for _, r := range text {
		if r == '\n' || r == '\r' || r == '\t' || r >= 32 {
			result.WriteRune(r)
		}
	}
	normalized := strings.ReplaceAll(result.String(), "\r\n", "\n")
	return strings.ReplaceAll(normalized, "\r", "\n")
}

func stripRTF(text string) string {
	if !strings.HasPrefix(text, "{\\rtf") && !strings.Contains(text, "\\rtf") {
		return text
	}
	var result strings.Builder
	result.Grow(len(text))
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '{' || r == '}' {
			continue
		}
		if r != '\\' {
			result.WriteRune(r)
			continue
		}
		if i+1 >= len(runes) {
			continue
		}
		next := runes[i+1]
		switch {
		case isLetter(next):
			// Control word, with an optional numeric argument and one
			// delimiting space.
			start := i + 1
			i++
			for i < len(runes) && isLetter(runes[i]) {
				i++
			}
			word := string(runes[start:i])
			for i < len(runes) && (runes[i] == '-' || (runes[i] >= '0' && runes[i] <= '9')) {
				i++
			}
			if word == "par" || word == "line" {
				result.WriteRune('\n')
			} else if word == "tab" {
				result.WriteRune('\t')
			}
			if i >= len(runes) || runes[i] != ' ' {
				i--
			}
		case next == '\\' || next == '{' || next == '}':
			result.WriteRune(next)
			i++
		case next == '\n' || next == '\r' || next == '\t':
			result.WriteRune(next)
			i++
		}
	}
	return result.String()
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
