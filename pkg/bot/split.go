package bot

import "unicode/utf8"

// Telegram caps one message at 4096 characters; split a bit earlier so
// cuts can land on natural boundaries.
const messageLimit = 3500

// splitMessage cuts content into chunks of at most limit bytes,
// preferring a newline near the cut, then a space, then a hard cut.
func splitMessage(content string, limit int) []string {
	var messages []string

	for len(content) > 0 {
		if len(content) <= limit {
			messages = append(messages, content)
			break
		}

		msgEnd := findLastNewline(content[:limit], 200)
		if msgEnd <= 0 {
			msgEnd = findLastSpace(content[:limit], 100)
		}
		if msgEnd <= 0 {
			msgEnd = limit
		}
		// never cut a multi-byte rune in half
		for msgEnd > 0 && !utf8.RuneStart(content[msgEnd]) {
			msgEnd--
		}
		if msgEnd == 0 {
			msgEnd = limit
		}

		messages = append(messages, content[:msgEnd])
		content = content[msgEnd:]
		// drop the boundary character itself
		for len(content) > 0 && (content[0] == '\n' || content[0] == ' ') {
			content = content[1:]
		}
	}

	return messages
}

// findLastNewline returns the position of the last newline within the
// trailing searchWindow bytes of s, or -1.
func findLastNewline(s string, searchWindow int) int {
	searchStart := len(s) - searchWindow
	if searchStart < 0 {
		searchStart = 0
	}
	for i := len(s) - 1; i >= searchStart; i-- {
		if s[i] == '\n' {
			return i
		}
	}
	return -1
}

func findLastSpace(s string, searchWindow int) int {
	searchStart := len(s) - searchWindow
	if searchStart < 0 {
		searchStart = 0
	}
	for i := len(s) - 1; i >= searchStart; i-- {
		if s[i] == ' ' || s[i] == '\t' {
			return i
		}
	}
	return -1
}
