// Package parser groups a stream of hex-digit characters into fixed-size
// XRF chunks. It is the "lexical parser" spec.md §1 calls a trivial
// external collaborator, specified fully in spec.md §4.1/§6.
package parser

import (
	"unicode"

	"xrfc/pkg/diag"
	"xrfc/pkg/ir"
)

// scanner mirrors the teacher's Lexer: a rune cursor with explicit
// line/column bookkeeping (see pkg/compiler/lexer.go in the teacher repo).
type scanner struct {
	src  []rune
	pos  int
	line int
	col  int
}

func newScanner(src string) *scanner {
	return &scanner{src: []rune(src), pos: 0, line: 1, col: 1}
}

func (s *scanner) peek() rune {
	if s.pos >= len(s.src) {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanner) advance() rune {
	r := s.src[s.pos]
	s.pos++
	if r == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return r
}

func (s *scanner) atEnd() bool { return s.pos >= len(s.src) }

// token is one whitespace-delimited run of non-whitespace characters,
// together with the position of its first character.
type token struct {
	text string
	line int
	col  int
}

func scanTokens(src string) []token {
	s := newScanner(src)
	var toks []token
	for !s.atEnd() {
		for !s.atEnd() && unicode.IsSpace(s.peek()) {
			s.advance()
		}
		if s.atEnd() {
			break
		}
		startLine, startCol := s.line, s.col
		start := s.pos
		for !s.atEnd() && !unicode.IsSpace(s.peek()) {
			s.advance()
		}
		toks = append(toks, token{
			text: string(s.src[start:s.pos]),
			line: startLine,
			col:  startCol,
		})
	}
	return toks
}

// Parse scans src and returns the ordered chunk list on success. On any
// error the full error list is returned and chunks is nil — the caller
// sees every error the scan could find, not just the first, matching
// spec.md §4.1's "parser still exhausts the file ... returns the full
// error list".
func Parse(src string) ([]*ir.Chunk, []diag.Error) {
	toks := scanTokens(src)

	var errs []diag.Error
	var chunks []*ir.Chunk

	capped := false
	addErr := func(line, col int, msg string) bool {
		if capped {
			return false
		}
		errs = append(errs, diag.Error{Line: line, Col: col, Msg: msg})
		if len(errs) == diag.MaxErrors {
			errs = append(errs, diag.Error{Msg: diag.TooManyErrorsMsg, Unpositioned: true})
			capped = true
			return false
		}
		return true
	}

tokLoop:
	for _, tok := range toks {
		runes := []rune(tok.text)

		// Classify every character first, gathering the valid commands and
		// reporting each invalid one as it's found. Only the count of
		// valid commands — not the raw token length — decides whether the
		// chunk is too long or too short: an invalid character does not
		// itself count toward either.
		var cmds []ir.Command
		col := tok.col
		for _, r := range runes {
			var op ir.Op
			var valid bool
			if r <= 0x7F {
				op, valid = ir.OpFromHex(byte(r))
			}
			if !valid {
				if !addErr(tok.line, col, invalidCharMsg(r)) {
					break tokLoop
				}
				col++
				continue
			}
			cmds = append(cmds, ir.Prim(op))
			col++
		}

		switch {
		case len(cmds) > ir.K:
			if !addErr(tok.line, tok.col, "too many commands in chunk") {
				break tokLoop
			}
		case len(cmds) < ir.K:
			if !addErr(tok.line, tok.col, "doesn't have enough commands") {
				break tokLoop
			}
		default:
			chunks = append(chunks, &ir.Chunk{
				Commands: cmds,
				Pos:      ir.Pos{Line: tok.line, Col: tok.col},
			})
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return chunks, nil
}

func invalidCharMsg(r rune) string {
	return "Invalid command character: " + string(r)
}
