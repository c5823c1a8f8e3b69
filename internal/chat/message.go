package chat

import "strings"

// messageKind discriminates the parsed shape of one chat line (spec.md
// §4.3). A line's first byte decides which kind it parses as.
type messageKind int

const (
	kindPublic messageKind = iota
	kindPrivate
	kindCommand
	kindAction
)

type parsedMessage struct {
	kind       messageKind
	body       string   // public/private body, or the command name, or the action argument
	recipients []string // valid only for kindPrivate, in original order
}

// parseMessage classifies line per spec.md §4.3:
//
//	'+' -> private: leading whitespace-tokens starting with '+' are
//	       recipients (prefix stripped; a bare '+' names no recipient);
//	       the body is the remainder of the
//	       original line starting at the first non-'+' token's offset, so
//	       internal whitespace in the body is preserved verbatim.
//	'!' -> command, or action if the next byte is also '!'.
//	else -> public, the entire line is the body.
func parseMessage(line string) parsedMessage {
	if line == "" {
		return parsedMessage{kind: kindPublic, body: line}
	}
	switch line[0] {
	case '+':
		return parsePrivate(line)
	case '!':
		return parseBang(line)
	default:
		return parsedMessage{kind: kindPublic, body: line}
	}
}

func parsePrivate(line string) parsedMessage {
	var recipients []string
	start := 0
	for start < len(line) {
		// Skip leading whitespace to find the next token's offset.
		for start < len(line) && isSpace(line[start]) {
			start++
		}
		if start >= len(line) {
			break
		}
		end := start
		for end < len(line) && !isSpace(line[end]) {
			end++
		}
		word := line[start:end]
		if word[0] == '+' {
			if len(word) > 1 {
				recipients = append(recipients, word[1:])
			}
			start = end
			continue
		}
		return parsedMessage{kind: kindPrivate, body: line[start:], recipients: recipients}
	}
	return parsedMessage{kind: kindPrivate, body: "", recipients: recipients}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n' || b == '\v' || b == '\f'
}

func parseBang(line string) parsedMessage {
	rest := line[1:]
	if strings.HasPrefix(rest, "!") {
		return parsedMessage{kind: kindAction, body: rest[1:]}
	}
	return parsedMessage{kind: kindCommand, body: rest}
}
