package parser

import (
	"fmt"
	"strings"
	"unicode"

	"cairogen/internal/model"
)

// ParseType parses a Cairo type string such as
// "core::array::Array::<(core::felt252, pkg::Foo)>" into a type expression.
func ParseType(s string) (model.TypeExpr, error) {
	ts := &typeScanner{src: s}
	t, err := ts.parseType()
	if err != nil {
		return model.TypeExpr{}, err
	}
	ts.skipSpace()
	if !ts.eof() {
		return model.TypeExpr{}, fmt.Errorf("unexpected %q at offset %d in %q", ts.src[ts.pos], ts.pos, s)
	}
	return t, nil
}

// typeScanner is a recursive-descent scanner over one type string.
type typeScanner struct {
	src string
	pos int
}

func (s *typeScanner) eof() bool {
	return s.pos >= len(s.src)
}

func (s *typeScanner) skipSpace() {
	for !s.eof() && unicode.IsSpace(rune(s.src[s.pos])) {
		s.pos++
	}
}

func (s *typeScanner) peek() byte {
	if s.eof() {
		return 0
	}
	return s.src[s.pos]
}

func (s *typeScanner) consume(tok string) bool {
	s.skipSpace()
	if strings.HasPrefix(s.src[s.pos:], tok) {
		s.pos += len(tok)
		return true
	}
	return false
}

func (s *typeScanner) parseType() (model.TypeExpr, error) {
	s.skipSpace()
	if s.eof() {
		return model.TypeExpr{}, fmt.Errorf("empty type in %q", s.src)
	}
	if s.peek() == '(' {
		return s.parseTuple()
	}
	return s.parsePath()
}

func (s *typeScanner) parseTuple() (model.TypeExpr, error) {
	s.pos++ // (
	var elems []model.TypeExpr
	for {
		if s.consume(")") {
			break
		}
		elem, err := s.parseType()
		if err != nil {
			return model.TypeExpr{}, err
		}
		elems = append(elems, elem)
		if s.consume(",") {
			continue
		}
		if !s.consume(")") {
			return model.TypeExpr{}, fmt.Errorf("unterminated tuple in %q", s.src)
		}
		break
	}
	if len(elems) == 0 {
		return model.PrimitiveType(model.PrimUnit), nil
	}
	return model.TupleType(elems...), nil
}

func (s *typeScanner) parsePath() (model.TypeExpr, error) {
	var segments []string
	for {
		seg := s.ident()
		if seg == "" {
			return model.TypeExpr{}, fmt.Errorf("empty path segment at offset %d in %q", s.pos, s.src)
		}
		segments = append(segments, seg)

		if !strings.HasPrefix(s.src[s.pos:], "::") {
			break
		}
		s.pos += 2
		if s.peek() == '<' {
			s.pos++
			args, err := s.parseArgs()
			if err != nil {
				return model.TypeExpr{}, err
			}
			return model.GenericType(strings.Join(segments, "::"), args...), nil
		}
	}

	path := strings.Join(segments, "::")
	if prim, ok := model.Primitives[path]; ok {
		return model.PrimitiveType(prim), nil
	}
	return model.NamedType(path), nil
}

func (s *typeScanner) parseArgs() ([]model.TypeExpr, error) {
	var args []model.TypeExpr
	for {
		arg, err := s.parseType()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if s.consume(",") {
			continue
		}
		if !s.consume(">") {
			return nil, fmt.Errorf("unterminated generic argument list in %q", s.src)
		}
		return args, nil
	}
}

func (s *typeScanner) ident() string {
	s.skipSpace()
	start := s.pos
	for !s.eof() {
		c := rune(s.src[s.pos])
		if c != '_' && !unicode.IsLetter(c) && !unicode.IsDigit(c) {
			break
		}
		s.pos++
	}
	return s.src[start:s.pos]
}
