package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// decodeString resolves the escapes of a candid text literal:
// \n \r \t \\ \" \', \u{X..} code points and \HH raw bytes.
func decodeString(s string) (string, error) {
	if !strings.Contains(s, "\\") {
		return s, nil
	}

	var out []byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			out = append(out, c)
			continue
		}
		i++
		if i >= len(s) {
			return "", fmt.Errorf("dangling escape in %q", s)
		}
		switch s[i] {
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		case '\\', '"', '\'':
			out = append(out, s[i])
		case 'u':
			end := strings.IndexByte(s[i:], '}')
			if i+1 >= len(s) || s[i+1] != '{' || end < 0 {
				return "", fmt.Errorf("malformed unicode escape in %q", s)
			}
			digits := strings.ReplaceAll(s[i+2:i+end], "_", "")
			cp, err := strconv.ParseUint(digits, 16, 32)
			if err != nil || !utf8.ValidRune(rune(cp)) {
				return "", fmt.Errorf("invalid code point %q", digits)
			}
			out = utf8.AppendRune(out, rune(cp))
			i += end
		default:
			if i+1 >= len(s) {
				return "", fmt.Errorf("invalid escape in %q", s)
			}
			b, err := strconv.ParseUint(s[i:i+2], 16, 8)
			if err != nil {
				return "", fmt.Errorf("invalid escape \\%s", s[i:i+2])
			}
			out = append(out, byte(b))
			i++
		}
	}

	if !utf8.Valid(out) {
		return "", fmt.Errorf("text %q is not valid UTF-8", s)
	}
	return string(out), nil
}
