package generator

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"cairogen/internal/model"
)

const uint256Import = "github.com/holiman/uint256"

// Import is one entry of the import block of the generated file.
type Import struct {
	Alias string
	Path  string
}

// importSet records the packages referenced by generated code.
type importSet struct {
	runtime string
	paths   map[string]bool
}

func newImportSet(runtime string) *importSet {
	return &importSet{runtime: runtime, paths: make(map[string]bool)}
}

func (s *importSet) add(path string) {
	s.paths[path] = true
}

// split returns the standard library imports and the others, each sorted.
func (s *importSet) split() (std, other []Import) {
	paths := make([]string, 0, len(s.paths))
	for p := range s.paths {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		imp := Import{Path: p}
		if p == s.runtime && path.Base(p) != "cairo" {
			imp.Alias = "cairo"
		}
		first, _, _ := strings.Cut(p, "/")
		if strings.Contains(first, ".") || p == s.runtime {
			other = append(other, imp)
		} else {
			std = append(std, imp)
		}
	}
	return std, other
}

// primitiveTypes maps Cairo core types onto their Go representation.
var primitiveTypes = map[model.Primitive]string{
	model.PrimFelt252:         "cairo.Felt",
	model.PrimContractAddress: "cairo.Felt",
	model.PrimClassHash:       "cairo.Felt",
	model.PrimStorageAddress:  "cairo.Felt",
	model.PrimEthAddress:      "cairo.Felt",
	model.PrimBytes31:         "cairo.Felt",
	model.PrimBool:            "bool",
	model.PrimU8:              "uint8",
	model.PrimU16:             "uint16",
	model.PrimU32:             "uint32",
	model.PrimU64:             "uint64",
	model.PrimU128:            "uint256.Int",
	model.PrimU256:            "uint256.Int",
	model.PrimI8:              "int8",
	model.PrimI16:             "int16",
	model.PrimI32:             "int32",
	model.PrimI64:             "int64",
	model.PrimI128:            "cairo.I128",
	model.PrimByteArray:       "string",
	model.PrimUnit:            "struct{}",
}

// goType returns the Go spelling of t and records the imports it needs.
func (s *importSet) goType(t *model.TypeExpr) (string, error) {
	switch t.Kind {
	case model.KindPrimitive:
		gt, ok := primitiveTypes[t.Primitive]
		if !ok {
			return "", fmt.Errorf("no Go type for primitive %q", t.Primitive)
		}
		if strings.HasPrefix(gt, "uint256.") {
			s.add(uint256Import)
		}
		return gt, nil

	case model.KindNamed:
		return declIdent(t)

	case model.KindArray:
		elem, err := s.goType(t.Elem)
		if err != nil {
			return "", err
		}
		return "[]" + elem, nil

	case model.KindTuple:
		if len(t.Args) == 0 {
			return "struct{}", nil
		}
		fields := make([]string, len(t.Args))
		for i := range t.Args {
			elem, err := s.goType(&t.Args[i])
			if err != nil {
				return "", err
			}
			fields[i] = fmt.Sprintf("F%d %s", i, elem)
		}
		return "struct{ " + strings.Join(fields, "; ") + " }", nil

	case model.KindGeneric:
		switch t.Name {
		case model.GenericOption:
			inner, err := s.goType(&t.Args[0])
			if err != nil {
				return "", err
			}
			return "*" + inner, nil
		case model.GenericResult:
			ok, err := s.goType(&t.Args[0])
			if err != nil {
				return "", err
			}
			fail, err := s.goType(&t.Args[1])
			if err != nil {
				return "", err
			}
			return "cairo.Result[" + ok + ", " + fail + "]", nil
		case model.GenericNonZero:
			return s.goType(&t.Args[0])
		}
		return declIdent(t)
	}
	return "", fmt.Errorf("unknown type kind %q", t.Kind)
}

func declIdent(t *model.TypeExpr) (string, error) {
	if t.Decl == nil || t.Decl.Ident == "" {
		return "", fmt.Errorf("type %s has no emitted declaration", t.String())
	}
	return t.Decl.Ident, nil
}
