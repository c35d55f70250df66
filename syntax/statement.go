package syntax

import (
	"io"
	"strings"
	"unicode"
)

// ReadStatement reads the text of the next statement from rr: everything up to a semicolon
// which is not inside a string, a quoted identifier, or a comment. The semicolon is not
// included. Statements containing only whitespace and comments are skipped. At the end of
// the input, io.EOF is returned if there is no more statement text.
func ReadStatement(rr io.RuneReader) (string, error) {
	var buf strings.Builder
	var hasText bool
	var quote rune
	var prev rune
	var lineComment, blockComment bool

	for {
		r, _, err := rr.ReadRune()
		if err == io.EOF {
			if hasText {
				return buf.String(), nil
			}
			return "", io.EOF
		} else if err != nil {
			return "", err
		}

		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case lineComment:
			if r == '\n' || r == '\r' {
				lineComment = false
			}
		case blockComment:
			if prev == '*' && r == '/' {
				blockComment = false
				buf.WriteRune(r)
				prev = 0
				continue
			}
		case r == ';':
			if hasText {
				return buf.String(), nil
			}
			buf.Reset()
			prev = 0
			continue
		case prev == '-' && r == '-':
			lineComment = true
		case prev == '/' && r == '*':
			blockComment = true
			buf.WriteRune(r)
			prev = 0
			continue
		case r == '\'' || r == '"' || r == '`':
			quote = r
			hasText = true
		case r == '[':
			quote = ']'
			hasText = true
		case r == '-' || r == '/':
			// Might start a comment.
		case !unicode.IsSpace(r):
			hasText = true
		}

		buf.WriteRune(r)
		prev = r
	}
}
