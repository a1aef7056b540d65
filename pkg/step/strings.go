package step

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

// Decoders are stateful, so each string gets fresh ones.
func latin1(b []byte) (string, error) {
	return charmap.ISO8859_1.NewDecoder().String(string(b))
}

// decodeString resolves the control directives of an encoded string body
// (quotes already stripped): doubled quotes, \\ escapes, \S\ page-shifted
// characters, \X\ single bytes, and \X2\ / \X4\ runs terminated by \X0\.
// \P?\ page selections are accepted and ignored.
func decodeString(body string) (string, error) {
	if !strings.ContainsAny(body, `\'`) {
		return body, nil
	}
	var b strings.Builder
	for i := 0; i < len(body); {
		c := body[i]
		if c == '\'' && i+1 < len(body) && body[i+1] == '\'' {
			b.WriteByte('\'')
			i += 2
			continue
		}
		if c != '\\' {
			b.WriteByte(c)
			i++
			continue
		}
		rest := body[i:]
		switch {
		case strings.HasPrefix(rest, `\\`):
			b.WriteByte('\\')
			i += 2
		case strings.HasPrefix(rest, `\S\`) && len(rest) >= 4:
			s, err := latin1([]byte{rest[3] + 0x80})
			if err != nil {
				return "", err
			}
			b.WriteString(s)
			i += 4
		case strings.HasPrefix(rest, `\X\`) && len(rest) >= 5:
			raw, err := hex.DecodeString(rest[3:5])
			if err != nil {
				return "", fmt.Errorf("invalid \\X\\ escape %q", rest[:5])
			}
			s, err := latin1(raw)
			if err != nil {
				return "", err
			}
			b.WriteString(s)
			i += 5
		case strings.HasPrefix(rest, `\X2\`), strings.HasPrefix(rest, `\X4\`):
			end := strings.Index(rest[4:], `\X0\`)
			if end < 0 {
				return "", fmt.Errorf("unterminated %s run", rest[:4])
			}
			raw, err := hex.DecodeString(rest[4 : 4+end])
			if err != nil {
				return "", fmt.Errorf("invalid %s run: %w", rest[:4], err)
			}
			dec := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
			if rest[2] == '4' {
				dec = utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM).NewDecoder()
			}
			s, err := dec.String(string(raw))
			if err != nil {
				return "", err
			}
			b.WriteString(s)
			i += 4 + end + 4
		case strings.HasPrefix(rest, `\P`) && len(rest) >= 4 && rest[3] == '\\':
			i += 4
		default:
			b.WriteByte('\\')
			i++
		}
	}
	return b.String(), nil
}
