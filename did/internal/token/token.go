package token

import (
	"strings"
	"unicode"
)

type Type int

const (
	LParen Type = iota
	RParen
	LBrace
	RBrace
	Semi
	Colon
	Comma
	Equals
	Arrow
	Ident
	String
	Number
	Invalid
)

func (t Type) String() string {
	switch t {
	case LParen:
		return "'('"
	case RParen:
		return "')'"
	case LBrace:
		return "'{'"
	case RBrace:
		return "'}'"
	case Semi:
		return "';'"
	case Colon:
		return "':'"
	case Comma:
		return "','"
	case Equals:
		return "'='"
	case Arrow:
		return "'->'"
	case Ident:
		return "identifier"
	case String:
		return "string"
	case Number:
		return "number"
	case Invalid:
		return "invalid token"
	}
	return "unknown"
}

type Token struct {
	Value string
	Type  Type
	Line  int
}

var punct = map[rune]Type{
	'(': LParen,
	')': RParen,
	'{': LBrace,
	'}': RBrace,
	';': Semi,
	':': Colon,
	',': Comma,
	'=': Equals,
}

// Tokenize splits candid interface text into tokens. String values keep
// their escapes; the parser decodes them. Stray characters and
// unterminated strings, with their opening quote, come out as Invalid.
func Tokenize(input string) []Token {
	var tokens []Token
	line := 1
	runes := []rune(input)

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if r == '\n' {
			line++
			continue
		}
		if unicode.IsSpace(r) {
			continue
		}

		// Line comment
		if r == '/' && i+1 < len(runes) && runes[i+1] == '/' {
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
			if i < len(runes) {
				line++
			}
			continue
		}

		// Block comment, nestable
		if r == '/' && i+1 < len(runes) && runes[i+1] == '*' {
			depth := 1
			i += 2
			for i < len(runes) && depth > 0 {
				switch {
				case runes[i] == '\n':
					line++
				case runes[i] == '/' && i+1 < len(runes) && runes[i+1] == '*':
					depth++
					i++
				case runes[i] == '*' && i+1 < len(runes) && runes[i+1] == '/':
					depth--
					i++
				}
				i++
			}
			i--
			continue
		}

		if r == '-' && i+1 < len(runes) && runes[i+1] == '>' {
			tokens = append(tokens, Token{Type: Arrow, Value: "->", Line: line})
			i++
			continue
		}

		if t, ok := punct[r]; ok {
			tokens = append(tokens, Token{Type: t, Value: string(r), Line: line})
			continue
		}

		if r == '"' {
			start := line
			var sb strings.Builder
			i++
			closed := false
			for i < len(runes) {
				if runes[i] == '"' {
					closed = true
					break
				}
				if runes[i] == '\n' {
					line++
				}
				if runes[i] == '\\' && i+1 < len(runes) {
					sb.WriteRune(runes[i])
					i++
				}
				sb.WriteRune(runes[i])
				i++
			}
			if !closed {
				tokens = append(tokens, Token{Type: Invalid, Value: "\"" + sb.String(), Line: start})
				continue
			}
			tokens = append(tokens, Token{Type: String, Value: sb.String(), Line: start})
			continue
		}

		if unicode.IsDigit(r) {
			start := i
			for i < len(runes) && (isHexDigit(runes[i]) || runes[i] == 'x' || runes[i] == '_') {
				i++
			}
			tokens = append(tokens, Token{Type: Number, Value: string(runes[start:i]), Line: line})
			i--
			continue
		}

		if isIdentStart(r) {
			start := i
			for i < len(runes) && isIdentChar(runes[i]) {
				i++
			}
			tokens = append(tokens, Token{Type: Ident, Value: string(runes[start:i]), Line: line})
			i--
			continue
		}

		tokens = append(tokens, Token{Type: Invalid, Value: string(r), Line: line})
	}

	return tokens
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentChar(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
