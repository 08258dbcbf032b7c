// Package resolver builds the symbol table of an ABI document and resolves
// every type reference against it.
package resolver

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"cairogen/errors"
	"cairogen/internal/model"
	"cairogen/internal/parser"
)

// Resolver turns a parsed document into a resolved program.
type Resolver struct {
	logger *zap.Logger
}

// New creates a new Resolver.
func New(logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{logger: logger}
}

// resolution is the per-document state of one Resolve call.
type resolution struct {
	symbols *model.SymbolTable
	arity   map[string]int    // user generic base -> arity seen first
	origin  map[string]string // fully-qualified name -> declaring item path
}

// Resolve builds the symbol table and resolves all type expressions.
// Composite names are registered before any field is resolved, so items may
// reference declarations that appear later in the document.
func (r *Resolver) Resolve(doc *model.Document) (*model.Program, error) {
	res := &resolution{
		symbols: model.NewSymbolTable(),
		arity:   make(map[string]int),
		origin:  make(map[string]string),
	}
	prog := &model.Program{Symbols: res.symbols}

	// Pass 1: register composite names.
	for i := range doc.Items {
		item := &doc.Items[i]
		if !item.IsComposite() {
			continue
		}
		if isCoreDecl(item.Name) {
			r.logger.Debug("skipping core type declaration", zap.String("name", item.Name))
			continue
		}
		itemPath := fmt.Sprintf("items[%d]", item.Index)
		name, err := res.canonicalName(item.Name, []string{itemPath, "name"})
		if err != nil {
			return nil, err
		}
		decl := &model.Decl{
			Name:     name,
			Kind:     item.DeclKind(),
			Event:    item.IsEvent(),
			Index:    item.Index,
			Fields:   cloneFields(item.Members),
			Variants: cloneVariants(item.Variants),
		}
		if _, ok := res.symbols.Add(decl); !ok {
			return nil, errors.NameCollision(errors.PhaseResolve, name, res.origin[name], itemPath)
		}
		res.origin[name] = itemPath
		prog.Decls = append(prog.Decls, decl)
	}

	// Pass 2: resolve field, variant and parameter types.
	for _, decl := range prog.Decls {
		base := fmt.Sprintf("items[%d]", decl.Index)
		for i := range decl.Fields {
			if err := res.resolve(&decl.Fields[i].Type, []string{base, decl.Fields[i].Name}); err != nil {
				return nil, err
			}
		}
		for i := range decl.Variants {
			if decl.Variants[i].Type == nil {
				continue
			}
			if err := res.resolve(decl.Variants[i].Type, []string{base, decl.Variants[i].Name}); err != nil {
				return nil, err
			}
		}
	}

	for i := range doc.Items {
		item := &doc.Items[i]
		base := fmt.Sprintf("items[%d]", item.Index)
		switch {
		case item.IsCallable():
			fn, err := res.resolveFunction(item, "", base)
			if err != nil {
				return nil, err
			}
			prog.Functions = append(prog.Functions, fn)
		case item.Kind == model.ItemInterface:
			for j := range item.Items {
				sub := &item.Items[j]
				fn, err := res.resolveFunction(sub, item.Name, fmt.Sprintf("%s.items[%d]", base, j))
				if err != nil {
					return nil, err
				}
				prog.Functions = append(prog.Functions, fn)
			}
		case item.Kind == model.ItemImpl:
			prog.Impls = append(prog.Impls, *item)
		}
	}

	// Pass 3: reject types that contain themselves by value.
	if err := checkRecursion(prog.Decls); err != nil {
		return nil, err
	}

	r.logger.Debug("resolved abi",
		zap.Int("decls", len(prog.Decls)),
		zap.Int("functions", len(prog.Functions)),
		zap.Int("impls", len(prog.Impls)))
	return prog, nil
}

// canonicalName normalizes the spelling of a declared generic instance so it
// matches the canonical form of references to it, and records its arity.
func (res *resolution) canonicalName(name string, path []string) (string, error) {
	if !strings.Contains(name, "::<") {
		return name, nil
	}
	t, err := parser.ParseType(name)
	if err != nil {
		return "", errors.New(errors.PhaseResolve, errors.KindMalformedAbi).
			Path(path...).
			Item(name).
			Detail("invalid generic declaration name").
			Cause(err).
			Build()
	}
	if t.Kind != model.KindGeneric {
		return name, nil
	}
	if want, ok := res.arity[t.Name]; ok && want != len(t.Args) {
		return "", errors.GenericArityMismatch(t.Name, want, len(t.Args), path)
	}
	res.arity[t.Name] = len(t.Args)
	return t.String(), nil
}

func (res *resolution) resolveFunction(item *model.Item, iface, base string) (*model.Function, error) {
	fn := &model.Function{
		Name:       item.Name,
		Kind:       item.Kind,
		Interface:  iface,
		Mutability: item.Mutability,
		Inputs:     cloneFields(item.Inputs),
		Outputs:    make([]model.TypeExpr, len(item.Outputs)),
	}
	for i := range fn.Inputs {
		if err := res.resolve(&fn.Inputs[i].Type, []string{base, fn.Name, fn.Inputs[i].Name}); err != nil {
			return nil, err
		}
	}
	for i := range item.Outputs {
		fn.Outputs[i] = cloneType(item.Outputs[i])
		if err := res.resolve(&fn.Outputs[i], []string{base, fn.Name, fmt.Sprintf("outputs[%d]", i)}); err != nil {
			return nil, err
		}
	}
	return fn, nil
}

// resolve annotates t in place.
func (res *resolution) resolve(t *model.TypeExpr, path []string) error {
	switch t.Kind {
	case model.KindPrimitive:
		return nil

	case model.KindNamed:
		decl, ok := res.symbols.Lookup(t.Name)
		if !ok {
			return errors.UnresolvedTypeReference(t.Name, path)
		}
		t.Decl = decl
		return nil

	case model.KindArray:
		return res.resolve(t.Elem, path)

	case model.KindTuple:
		for i := range t.Args {
			if err := res.resolve(&t.Args[i], path); err != nil {
				return err
			}
		}
		return nil

	case model.KindGeneric:
		for i := range t.Args {
			if err := res.resolve(&t.Args[i], path); err != nil {
				return err
			}
		}
		if want, ok := model.GenericArity[t.Name]; ok {
			if len(t.Args) != want {
				return errors.GenericArityMismatch(t.Name, want, len(t.Args), path)
			}
			if t.Name == model.GenericArray || t.Name == model.GenericSpan {
				elem := t.Args[0]
				*t = model.TypeExpr{Kind: model.KindArray, Elem: &elem, Span: t.Name == model.GenericSpan}
			}
			return nil
		}
		if want, ok := res.arity[t.Name]; ok && want != len(t.Args) {
			return errors.GenericArityMismatch(t.Name, want, len(t.Args), path)
		}
		res.arity[t.Name] = len(t.Args)

		name := t.String()
		decl, ok := res.symbols.Lookup(name)
		if !ok {
			return errors.UnresolvedTypeReference(name, path)
		}
		t.Decl = decl
		return nil
	}
	return fmt.Errorf("resolving %s: unknown type kind %q", strings.Join(path, "."), t.Kind)
}

// isCoreDecl reports whether a declared name re-declares a Cairo core type
// that has a built-in mapping (e.g. core::integer::u256 or
// core::option::Option::<core::felt252>).
func isCoreDecl(name string) bool {
	if _, ok := model.Primitives[name]; ok {
		return true
	}
	if i := strings.Index(name, "::<"); i >= 0 {
		_, ok := model.GenericArity[name[:i]]
		return ok
	}
	return false
}

func cloneFields(fields []model.Field) []model.Field {
	if fields == nil {
		return nil
	}
	out := make([]model.Field, len(fields))
	for i, f := range fields {
		out[i] = model.Field{Name: f.Name, Type: cloneType(f.Type), Kind: f.Kind}
	}
	return out
}

func cloneVariants(variants []model.Variant) []model.Variant {
	if variants == nil {
		return nil
	}
	out := make([]model.Variant, len(variants))
	for i, v := range variants {
		out[i] = model.Variant{Name: v.Name, Kind: v.Kind}
		if v.Type != nil {
			t := cloneType(*v.Type)
			out[i].Type = &t
		}
	}
	return out
}

func cloneType(t model.TypeExpr) model.TypeExpr {
	out := t
	if t.Elem != nil {
		elem := cloneType(*t.Elem)
		out.Elem = &elem
	}
	if t.Args != nil {
		out.Args = make([]model.TypeExpr, len(t.Args))
		for i := range t.Args {
			out.Args[i] = cloneType(t.Args[i])
		}
	}
	return out
}
