package parser

import (
	"strings"

	"nginxlog/internal/model"
)

// Token is one positional field of a log line. Text excludes the enclosing
// quotes or brackets; Delim records which one was used (0 for a bare token).
type Token struct {
	Text  string
	Delim byte
}

// Tokenize splits line into exactly want fields. Quoted and bracketed
// fields may contain spaces. A negative want accepts any count.
func Tokenize(line string, want int) ([]Token, error) {
	capacity := want
	if capacity < 0 {
		capacity = 8
	}
	tokens, err := appendTokens(make([]Token, 0, capacity), line)
	if err != nil {
		return nil, err
	}
	if want >= 0 && len(tokens) != want {
		return nil, &TokenizeError{
			Reason: model.ReasonFieldCountMismatch,
			Count:  len(tokens),
			Want:   want,
		}
	}
	return tokens, nil
}

func appendTokens(dst []Token, line string) ([]Token, error) {
	line = strings.TrimRight(line, " \t\r\n")

	i := 0
	for i < len(line) {
		switch c := line[i]; c {
		case ' ', '\t':
			i++
		case '"':
			end := closingQuote(line, i+1)
			if end < 0 {
				return nil, unterminated(c, i)
			}
			dst = append(dst, Token{Text: line[i+1 : end], Delim: c})
			i = end + 1
		case '[':
			end := strings.IndexByte(line[i+1:], ']')
			if end < 0 {
				return nil, unterminated(c, i)
			}
			end += i + 1
			dst = append(dst, Token{Text: line[i+1 : end], Delim: c})
			i = end + 1
		default:
			end := i
			for end < len(line) && line[end] != ' ' && line[end] != '\t' {
				end++
			}
			dst = append(dst, Token{Text: line[i:end]})
			i = end
		}
	}
	return dst, nil
}

// closingQuote returns the index of the quote closing a field that starts at
// from, skipping backslash escapes, or -1.
func closingQuote(s string, from int) int {
	for j := from; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case '"':
			return j
		}
	}
	return -1
}

func unterminated(delim byte, offset int) error {
	return &TokenizeError{
		Reason: model.ReasonUnterminatedDelimiter,
		Delim:  delim,
		Offset: offset,
	}
}
