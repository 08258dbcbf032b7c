// Package policy assigns Go identifiers to resolved declarations and attaches
// the configured derive annotations.
//
// Every identifier the emitter places at package level, and every method
// name on the contract binding, is registered in a namespace first. Two
// sources claiming one identifier is a NameCollision: the policy never
// disambiguates silently.
package policy

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"go.uber.org/zap"

	"cairogen/errors"
	"cairogen/internal/config"
	"cairogen/internal/model"
	"cairogen/internal/parser"
)

// AliasMap maps fully-qualified Cairo type names to Go identifiers.
type AliasMap map[string]string

// DeriveSet is the ordered list of derive annotations applied to every
// generated struct and enum.
type DeriveSet []string

// Policy applies aliases, default naming and derives to a resolved program.
type Policy struct {
	aliases  AliasMap
	derives  DeriveSet
	contract string
	logger   *zap.Logger
}

// New creates a policy for one compilation. contract is the binding name
// (e.g. "escrow"); it may be empty when the ABI declares no functions.
func New(aliases AliasMap, derives DeriveSet, contract string, logger *zap.Logger) *Policy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Policy{
		aliases:  aliases,
		derives:  derives,
		contract: contract,
		logger:   logger,
	}
}

// namespace tracks which source claimed each identifier.
type namespace struct {
	phase  errors.Phase
	owners map[string]string
}

func newNamespace() *namespace {
	return &namespace{phase: errors.PhasePolicy, owners: make(map[string]string)}
}

func (ns *namespace) claim(ident, source string) error {
	if prev, ok := ns.owners[ident]; ok {
		return errors.NameCollision(ns.phase, ident, prev, source)
	}
	ns.owners[ident] = source
	return nil
}

// reserved identifiers of the generated code per scope.
var (
	reservedTypeMembers  = []string{"EncodeCairo", "DecodeCairo"}
	reservedEventMembers = []string{"DecodeEvent", "DecodeEventFrom"}
	reservedEnumMembers  = []string{"Variant"}
	reservedMethods      = []string{"Address"}
)

// reservedMembers returns the methods and fields generated on decl.
func reservedMembers(decl *model.Decl) []string {
	reserved := slices.Clone(reservedTypeMembers)
	if decl.Event {
		reserved = append(reserved, reservedEventMembers...)
	}
	if slices.Contains(decl.Derives, config.DeriveStringer) {
		reserved = append(reserved, "String")
	}
	if decl.Kind == model.DeclEnum {
		reserved = append(reserved, reservedEnumMembers...)
	}
	return reserved
}

// Apply annotates prog in place.
func (p *Policy) Apply(prog *model.Program) error {
	aliases, err := p.canonicalAliases()
	if err != nil {
		return err
	}

	types := newNamespace()
	for _, decl := range prog.Decls {
		ident, err := p.declIdent(decl, aliases)
		if err != nil {
			return err
		}
		decl.Ident = ident
		decl.Derives = append([]string(nil), p.derives...)

		if err := types.claim(ident, decl.Name); err != nil {
			return err
		}
		switch decl.Kind {
		case model.DeclStruct:
			if err := assignFieldIdents(decl); err != nil {
				return err
			}
		case model.DeclEnum:
			if err := types.claim(ident+"Variant", decl.Name+" (variant type)"); err != nil {
				return err
			}
			if err := assignVariantIdents(decl, types); err != nil {
				return err
			}
		}
	}

	if len(prog.Functions) > 0 {
		if err := p.assignFunctionIdents(prog, types); err != nil {
			return err
		}
	}

	for _, name := range sortedKeys(aliases) {
		if _, ok := prog.Symbols.Lookup(name); !ok {
			p.logger.Warn("alias does not match any declared type", zap.String("name", name))
		}
	}

	p.logger.Debug("applied naming policy",
		zap.Int("decls", len(prog.Decls)),
		zap.Int("aliases", len(aliases)),
		zap.Strings("derives", p.derives))
	return nil
}

// canonicalAliases validates the alias map and keys it by canonical name.
func (p *Policy) canonicalAliases() (map[string]string, error) {
	out := make(map[string]string, len(p.aliases))
	for _, name := range sortedKeys(p.aliases) {
		alias := p.aliases[name]
		if !validIdent(alias) {
			return nil, errors.InvalidAlias(name, alias)
		}
		key := name
		if strings.Contains(name, "::<") {
			if t, err := parser.ParseType(name); err == nil {
				key = t.String()
			}
		}
		out[key] = alias
	}
	return out, nil
}

// declIdent returns the alias of decl or its default identifier.
func (p *Policy) declIdent(decl *model.Decl, aliases map[string]string) (string, error) {
	if alias, ok := aliases[decl.Name]; ok {
		return alias, nil
	}
	ident := DefaultIdent(decl.Name)
	if !validIdent(ident) {
		return "", errors.New(errors.PhasePolicy, errors.KindInvalidAlias).
			Item(decl.Name).
			Detail("default identifier %q is not valid; supply an alias", ident).
			Build()
	}
	return ident, nil
}

// DefaultIdent derives a Go identifier from a fully-qualified name: the last
// path segment, followed by the short names of any generic arguments
// ("pkg::Pair::<core::felt252, core::integer::u8>" becomes "PairFelt252U8").
func DefaultIdent(fqn string) string {
	if !strings.Contains(fqn, "::<") {
		return exportIdent(model.BaseName(fqn))
	}
	t, err := parser.ParseType(fqn)
	if err != nil || t.Kind != model.KindGeneric {
		return exportIdent(model.BaseName(fqn))
	}
	return shortName(t)
}

func shortName(t model.TypeExpr) string {
	switch t.Kind {
	case model.KindPrimitive:
		if t.Primitive == model.PrimUnit {
			return "Unit"
		}
		return exportIdent(string(t.Primitive))
	case model.KindNamed:
		return exportIdent(model.BaseName(t.Name))
	case model.KindArray:
		if t.Span {
			return "Span" + shortName(*t.Elem)
		}
		return "Array" + shortName(*t.Elem)
	case model.KindTuple:
		var b strings.Builder
		b.WriteString("Tuple")
		for _, a := range t.Args {
			b.WriteString(shortName(a))
		}
		return b.String()
	case model.KindGeneric:
		var b strings.Builder
		b.WriteString(exportIdent(model.BaseName(t.Name)))
		for _, a := range t.Args {
			b.WriteString(shortName(a))
		}
		return b.String()
	}
	return ""
}

func assignFieldIdents(decl *model.Decl) error {
	members := newNamespace()
	for _, r := range reservedMembers(decl) {
		_ = members.claim(r, "generated method "+r)
	}
	for i := range decl.Fields {
		f := &decl.Fields[i]
		f.Ident = fieldIdent(f.Name, i)
		if err := members.claim(f.Ident, decl.Name+"."+f.Name); err != nil {
			return err
		}
	}
	return nil
}

func assignVariantIdents(decl *model.Decl, types *namespace) error {
	members := newNamespace()
	for _, r := range reservedMembers(decl) {
		_ = members.claim(r, "generated member "+r)
	}
	for i := range decl.Variants {
		v := &decl.Variants[i]
		name := fieldIdent(v.Name, i)
		v.Ident = decl.Ident + name
		if err := types.claim(v.Ident, decl.Name+"::"+v.Name); err != nil {
			return err
		}
		if v.IsUnit() {
			continue
		}
		v.Field = name
		if err := members.claim(v.Field, decl.Name+"::"+v.Name); err != nil {
			return err
		}
	}
	return nil
}

func fieldIdent(name string, index int) string {
	ident := PascalCase(name)
	if ident != "" && ident[0] >= '0' && ident[0] <= '9' {
		ident = "F" + ident
	}
	if !validIdent(ident) {
		return fmt.Sprintf("F%d", index)
	}
	return ident
}

func (p *Policy) assignFunctionIdents(prog *model.Program, types *namespace) error {
	contract := exportIdent(PascalCase(p.contract))
	if contract == "" {
		contract = "Contract"
	}
	prog.Contract = contract

	const source = "contract binding"
	for _, ident := range []string{contract, "New" + contract} {
		if err := types.claim(ident, source); err != nil {
			return err
		}
	}
	if prog.Constructor() != nil {
		if err := types.claim(contract+"ConstructorCalldata", "constructor"); err != nil {
			return err
		}
	}

	methods := newNamespace()
	for _, r := range reservedMethods {
		_ = methods.claim(r, "binding field "+r)
	}
	for _, fn := range prog.Functions {
		if fn.Kind == model.ItemConstructor {
			continue
		}
		fn.Ident = fieldIdent(fn.Name, 0)
		source := fn.Name
		if fn.Interface != "" {
			source = fn.Interface + "::" + fn.Name
		}
		if fn.Kind != model.ItemL1Handler {
			if err := methods.claim(fn.Ident, source); err != nil {
				return err
			}
		}
		if !fn.IsView() {
			if err := methods.claim(fn.Ident+"Call", source); err != nil {
				return err
			}
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
