package syntax

import (
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/leftmike/nquery/sql"
)

const eof = -1

// Scanner breaks text into tokens. Every character of the text ends up in exactly one
// token or trivia, so the tokens reproduce the text exactly.
type Scanner struct {
	text        string
	pos         int
	diagnostics []Diagnostic
}

func NewScanner(text string) *Scanner {
	return &Scanner{text: text}
}

func (s *Scanner) Diagnostics() []Diagnostic {
	return s.diagnostics
}

func (s *Scanner) report(id DiagnosticID, span Span, args ...interface{}) {
	s.diagnostics = append(s.diagnostics, NewDiagnostic(id, span, args...))
}

func (s *Scanner) peekRune(n int) rune {
	pos := s.pos
	for {
		if pos >= len(s.text) {
			return eof
		}
		r, sz := utf8.DecodeRuneInString(s.text[pos:])
		if n == 0 {
			return r
		}
		pos += sz
		n -= 1
	}
}

func (s *Scanner) readRune() rune {
	if s.pos >= len(s.text) {
		return eof
	}
	r, sz := utf8.DecodeRuneInString(s.text[s.pos:])
	s.pos += sz
	return r
}

// Scan returns the next token; at the end of the text it returns an EndOfFileToken
// carrying any remaining trivia.
func (s *Scanner) Scan() *Token {
	leading := s.scanTrivia(true)

	start := s.pos
	kind, value := s.scanToken()
	tok := &Token{
		kind:    kind,
		text:    s.text[start:s.pos],
		value:   value,
		span:    SpanFromBounds(start, s.pos),
		leading: leading,
	}
	if kind != EndOfFileToken {
		tok.trailing = s.scanTrivia(false)
	}
	return tok
}

func isSpace(r rune) bool {
	return r != '\r' && r != '\n' && unicode.IsSpace(r)
}

func (s *Scanner) scanTrivia(leading bool) []Trivia {
	var trivia []Trivia
	for {
		start := s.pos
		r := s.peekRune(0)

		var kind Kind
		if isSpace(r) {
			for isSpace(s.peekRune(0)) {
				s.readRune()
			}
			kind = WhitespaceTrivia
		} else if r == '\r' || r == '\n' {
			s.readRune()
			if r == '\r' && s.peekRune(0) == '\n' {
				s.readRune()
			}
			kind = EndOfLineTrivia
		} else if r == '-' && s.peekRune(1) == '-' {
			for {
				r = s.peekRune(0)
				if r == eof || r == '\r' || r == '\n' {
					break
				}
				s.readRune()
			}
			kind = SingleLineCommentTrivia
		} else if r == '/' && s.peekRune(1) == '*' {
			s.readRune()
			s.readRune()
			for {
				r = s.readRune()
				if r == eof {
					s.report(UnterminatedComment, SpanFromBounds(start, s.pos))
					break
				}
				if r == '*' && s.peekRune(0) == '/' {
					s.readRune()
					break
				}
			}
			kind = MultiLineCommentTrivia
		} else {
			return trivia
		}

		trivia = append(trivia, Trivia{
			Kind: kind,
			Text: s.text[start:s.pos],
			Span: SpanFromBounds(start, s.pos),
		})
		if kind == EndOfLineTrivia && !leading {
			return trivia
		}
	}
}

func (s *Scanner) scanToken() (Kind, sql.Value) {
	start := s.pos
	r := s.readRune()

	switch {
	case r == eof:
		return EndOfFileToken, nil
	case unicode.IsLetter(r) || r == '_':
		return s.scanIdentifier(start)
	case unicode.IsDigit(r) || (r == '.' && unicode.IsDigit(s.peekRune(0))):
		return s.scanNumber(start)
	case r == '\'':
		return s.scanString(start)
	case r == '"' || r == '`':
		return s.scanQuotedIdentifier(start, r)
	case r == '[':
		return s.scanQuotedIdentifier(start, ']')
	}

	next := s.peekRune(0)
	switch r {
	case '~':
		return BitwiseNotToken, nil
	case '&':
		return AmpersandToken, nil
	case '|':
		return BarToken, nil
	case '^':
		return CaretToken, nil
	case '(':
		return LeftParenthesisToken, nil
	case ')':
		return RightParenthesisToken, nil
	case '+':
		return PlusToken, nil
	case '-':
		return MinusToken, nil
	case '*':
		if next == '*' {
			s.readRune()
			return AsteriskAsteriskToken, nil
		}
		return AsteriskToken, nil
	case '/':
		return SlashToken, nil
	case '%':
		return PercentToken, nil
	case '=':
		return EqualsToken, nil
	case '!':
		if next == '=' {
			s.readRune()
			return ExclamationEqualsToken, nil
		}
	case '<':
		switch next {
		case '>':
			s.readRune()
			return LessGreaterToken, nil
		case '=':
			s.readRune()
			return LessEqualToken, nil
		case '<':
			s.readRune()
			return LessLessToken, nil
		}
		return LessToken, nil
	case '>':
		switch next {
		case '=':
			s.readRune()
			return GreaterEqualToken, nil
		case '>':
			s.readRune()
			return GreaterGreaterToken, nil
		}
		return GreaterToken, nil
	case '.':
		return DotToken, nil
	case ',':
		return CommaToken, nil
	case '@':
		return AtToken, nil
	}

	s.report(IllegalInputCharacter, SpanFromBounds(start, s.pos), strconv.QuoteRune(r))
	return BadToken, nil
}

func (s *Scanner) scanIdentifier(start int) (Kind, sql.Value) {
	for {
		r := s.peekRune(0)
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '$' {
			break
		}
		s.readRune()
	}

	text := s.text[start:s.pos]
	if kind, ok := LookupKeyword(text); ok {
		return kind, nil
	}
	return IdentifierToken, text
}

func (s *Scanner) scanDigits() {
	for unicode.IsDigit(s.peekRune(0)) {
		s.readRune()
	}
}

func (s *Scanner) scanNumber(start int) (Kind, sql.Value) {
	s.pos = start
	s.scanDigits()

	isReal := false
	if s.peekRune(0) == '.' && (s.pos > start || unicode.IsDigit(s.peekRune(1))) {
		isReal = true
		s.readRune()
		s.scanDigits()
	}
	if r := s.peekRune(0); r == 'e' || r == 'E' {
		r1 := s.peekRune(1)
		if unicode.IsDigit(r1) ||
			((r1 == '+' || r1 == '-') && unicode.IsDigit(s.peekRune(2))) {

			isReal = true
			s.readRune()
			s.readRune()
			s.scanDigits()
		}
	}

	text := s.text[start:s.pos]
	if isReal {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			s.report(InvalidReal, SpanFromBounds(start, s.pos), text)
			return NumericLiteralToken, 0.0
		}
		return NumericLiteralToken, f
	}

	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		if i <= math.MaxInt32 {
			return NumericLiteralToken, int32(i)
		}
		return NumericLiteralToken, i
	}
	if u, err := strconv.ParseUint(text, 10, 64); err == nil {
		return NumericLiteralToken, u
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		s.report(InvalidReal, SpanFromBounds(start, s.pos), text)
		return NumericLiteralToken, 0.0
	}
	return NumericLiteralToken, f
}

func (s *Scanner) scanString(start int) (Kind, sql.Value) {
	var buf strings.Builder
	for {
		r := s.readRune()
		if r == eof {
			s.report(UnterminatedString, SpanFromBounds(start, s.pos))
			break
		}
		if r == '\'' {
			if s.peekRune(0) != '\'' {
				break
			}
			s.readRune()
		}
		buf.WriteRune(r)
	}
	return StringLiteralToken, buf.String()
}

func (s *Scanner) scanQuotedIdentifier(start int, delim rune) (Kind, sql.Value) {
	var buf strings.Builder
	for {
		r := s.readRune()
		if r == eof {
			s.report(UnterminatedQuotedIdentifier, SpanFromBounds(start, s.pos),
				strconv.QuoteRune(delim))
			break
		}
		if r == delim {
			if s.peekRune(0) != delim {
				break
			}
			s.readRune()
		}
		buf.WriteRune(r)
	}
	return IdentifierToken, buf.String()
}
