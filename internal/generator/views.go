package generator

import (
	"fmt"
	"go/token"
	"go/types"
	"strconv"
	"strings"

	"cairogen/errors"
	"cairogen/internal/config"
	"cairogen/internal/model"
	"cairogen/internal/policy"
)

// DeclData is the template view of one struct, enum or event.
type DeclData struct {
	Ident       string
	Name        string // Fully-qualified Cairo name
	Kind        string // "struct", "enum" or "event"
	IsEnum      bool
	IsEvent     bool
	VariantType string
	Derive      string // Space-separated derive list of the directive
	JSON        bool
	Stringer    bool
	Fields      []FieldData
	Variants    []VariantData
}

// FieldData is the template view of a struct member.
type FieldData struct {
	Ident       string
	GoType      string
	Tag         string
	Encode      string
	Decode      string
	EventDecode string
}

// VariantData is the template view of an enum variant.
type VariantData struct {
	Ident       string
	Name        string
	Index       int
	Field       string
	GoType      string
	Tag         string
	Unit        bool
	Flat        bool
	Encode      string
	Decode      string
	EventDecode string
}

// ContractData is the template view of the contract binding.
type ContractData struct {
	Ident       string
	Impls       []ImplData
	Constructor *MethodData
	Methods     []MethodData
}

// ImplData names one impl item and the interface it exposes.
type ImplData struct {
	Name      string
	Interface string
}

// MethodData is a rendered function of the contract binding.
type MethodData struct {
	Doc       string
	Signature string
	Body      string
}

func (g *Generator) declData(decl *model.Decl, imports *importSet) (*DeclData, error) {
	d := &DeclData{
		Ident:    decl.Ident,
		Name:     decl.Name,
		Kind:     string(decl.Kind),
		IsEnum:   decl.Kind == model.DeclEnum,
		IsEvent:  decl.Event,
		Derive:   strings.Join(decl.Derives, " "),
		JSON:     hasDerive(decl.Derives, config.DeriveJSON, config.DeriveSerialize, config.DeriveDeserialize),
		Stringer: hasDerive(decl.Derives, config.DeriveStringer),
	}
	if decl.Event {
		d.Kind = "event"
	}
	if d.Stringer {
		imports.add("fmt")
	}

	var err error
	if d.IsEnum {
		err = g.enumData(d, decl, imports)
	} else {
		err = g.structData(d, decl, imports)
	}
	if err != nil {
		return nil, errors.Emit(fmt.Sprintf("rendering %s", decl.Name), err)
	}
	return d, nil
}

func (g *Generator) structData(d *DeclData, decl *model.Decl, imports *importSet) error {
	enc := imports.codec("return ")
	dec := imports.codec("return ")
	ev := imports.codec("return ")
	for i := range decl.Fields {
		f := &decl.Fields[i]
		x := "v." + f.Ident
		fd := FieldData{Ident: f.Ident}
		var err error
		if fd.GoType, err = imports.goType(&f.Type); err != nil {
			return err
		}
		if d.JSON {
			fd.Tag = fmt.Sprintf(`json:%q`, f.Name)
		}
		if fd.Encode, err = enc.encode(&f.Type, x); err != nil {
			return err
		}
		if fd.Decode, err = dec.decode(&f.Type, x, "dec"); err != nil {
			return err
		}
		if decl.Event {
			switch f.Kind {
			case model.EventKey:
				fd.EventDecode, err = ev.decode(&f.Type, x, "keys")
			case model.EventFlat:
				if !isEventType(&f.Type) {
					return fmt.Errorf("flat member %s is not an event", f.Name)
				}
				fd.EventDecode = ev.check(x + ".DecodeEventFrom(keys, data)")
			default:
				fd.EventDecode, err = ev.decode(&f.Type, x, "data")
			}
			if err != nil {
				return err
			}
		}
		d.Fields = append(d.Fields, fd)
	}
	return nil
}

func (g *Generator) enumData(d *DeclData, decl *model.Decl, imports *importSet) error {
	d.VariantType = decl.Ident + "Variant"
	imports.add("fmt")

	// Variant cases are separate scopes, so one codec per method suffices.
	enc := imports.codec("return ")
	dec := imports.codec("return ")
	ev := imports.codec("return ")
	for i := range decl.Variants {
		v := &decl.Variants[i]
		vd := VariantData{
			Ident: v.Ident,
			Name:  v.Name,
			Index: i,
			Field: v.Field,
			Unit:  v.IsUnit(),
			Flat:  v.Kind == model.EventFlat,
		}
		if vd.Unit {
			if decl.Event && vd.Flat {
				return fmt.Errorf("flat variant %s has no payload", v.Name)
			}
			d.Variants = append(d.Variants, vd)
			continue
		}

		x := "v." + v.Field
		var err error
		if vd.GoType, err = imports.goType(v.Type); err != nil {
			return err
		}
		if d.JSON {
			vd.Tag = fmt.Sprintf(`json:"%s,omitempty"`, v.Name)
		}
		if vd.Encode, err = enc.encode(v.Type, x); err != nil {
			return err
		}
		if vd.Decode, err = dec.decode(v.Type, x, "dec"); err != nil {
			return err
		}
		if decl.Event {
			switch {
			case vd.Flat && !isEventType(v.Type):
				return fmt.Errorf("flat variant %s is not an event", v.Name)
			case vd.Flat:
			case isEventType(v.Type):
				vd.EventDecode = ev.check(x + ".DecodeEventFrom(keys, data)")
			default:
				if vd.EventDecode, err = ev.decode(v.Type, x, "data"); err != nil {
					return err
				}
			}
		}
		d.Variants = append(d.Variants, vd)
	}
	return nil
}

func isEventType(t *model.TypeExpr) bool {
	return t.Decl != nil && t.Decl.Event
}

func hasDerive(derives []string, names ...string) bool {
	for _, d := range derives {
		for _, n := range names {
			if d == n {
				return true
			}
		}
	}
	return false
}

func (g *Generator) contractData(prog *model.Program, imports *importSet) (*ContractData, error) {
	c := &ContractData{Ident: prog.Contract}
	for _, impl := range prog.Impls {
		c.Impls = append(c.Impls, ImplData{
			Name:      impl.Name,
			Interface: model.BaseName(impl.InterfaceName),
		})
	}
	for _, fn := range prog.Functions {
		var err error
		switch {
		case fn.Kind == model.ItemConstructor:
			var m MethodData
			m, err = constructorMethod(c.Ident, fn, imports)
			c.Constructor = &m
		case fn.IsView():
			var m MethodData
			m, err = viewMethod(fn, imports)
			c.Methods = append(c.Methods, m)
		default:
			var ms []MethodData
			ms, err = invokeMethods(fn, imports)
			c.Methods = append(c.Methods, ms...)
		}
		if err != nil {
			return nil, errors.Emit(fmt.Sprintf("rendering function %s", fn.Name), err)
		}
	}
	return c, nil
}

// param is one Go parameter of a generated function.
type param struct {
	name  string
	typ   string
	input *model.Field
}

// reservedLocals are identifiers generated function bodies rely on.
var reservedLocals = map[string]bool{
	"c": true, "ctx": true, "enc": true, "dec": true, "err": true,
	"call": true, "out": true, "res": true, "keys": true, "data": true,
	"v": true, "tag": true, "cairo": true, "uint256": true, "context": true, "fmt": true,
}

// isTemporary reports whether s has the shape of a numbered temporary
// (i1, n2, tag3, out0).
func isTemporary(s string) bool {
	for _, prefix := range []string{"tag", "out", "i", "n"} {
		rest, ok := strings.CutPrefix(s, prefix)
		if !ok || rest == "" {
			continue
		}
		if _, err := strconv.Atoi(rest); err == nil {
			return true
		}
	}
	return false
}

// paramName turns a Cairo parameter name into a local Go identifier that
// cannot shadow anything the body refers to.
func paramName(name string, index int) string {
	ident := policy.CamelCase(name)
	switch {
	case ident == "" || !token.IsIdentifier(ident) || ident == "_":
		return fmt.Sprintf("arg%d", index)
	case reservedLocals[ident] || isTemporary(ident) || types.Universe.Lookup(ident) != nil:
		return ident + "Arg"
	}
	return ident
}

func params(fn *model.Function, imports *importSet) ([]param, error) {
	out := make([]param, len(fn.Inputs))
	seen := make(map[string]bool, len(fn.Inputs))
	for i := range fn.Inputs {
		in := &fn.Inputs[i]
		name := paramName(in.Name, i)
		for seen[name] {
			name = fmt.Sprintf("%s%d", name, i)
		}
		seen[name] = true
		typ, err := imports.goType(&in.Type)
		if err != nil {
			return nil, err
		}
		out[i] = param{name: name, typ: typ, input: in}
	}
	return out, nil
}

func paramList(ps []param, withCtx bool) string {
	parts := make([]string, 0, len(ps)+1)
	if withCtx {
		parts = append(parts, "ctx context.Context")
	}
	for _, p := range ps {
		parts = append(parts, p.name+" "+p.typ)
	}
	return strings.Join(parts, ", ")
}

func argList(ps []param) string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.name
	}
	return strings.Join(names, ", ")
}

func encodeParams(c *codec, ps []param) (string, error) {
	var b strings.Builder
	b.WriteString("enc := cairo.NewEncoder()\n")
	for _, p := range ps {
		s, err := c.encode(&p.input.Type, p.name)
		if err != nil {
			return "", err
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

func describe(fn *model.Function) string {
	if fn.Interface == "" {
		return fn.Name
	}
	return fn.Name + " of " + model.BaseName(fn.Interface)
}

func constructorMethod(contract string, fn *model.Function, imports *importSet) (MethodData, error) {
	ps, err := params(fn, imports)
	if err != nil {
		return MethodData{}, err
	}
	body, err := encodeParams(imports.codec("return nil, "), ps)
	if err != nil {
		return MethodData{}, err
	}
	return MethodData{
		Doc:       fmt.Sprintf("%sConstructorCalldata serializes the constructor arguments for a deployment.", contract),
		Signature: fmt.Sprintf("%sConstructorCalldata(%s) ([]cairo.Felt, error)", contract, paramList(ps, false)),
		Body:      body + "return enc.Felts(), nil\n",
	}, nil
}

func viewMethod(fn *model.Function, imports *importSet) (MethodData, error) {
	imports.add("context")
	ps, err := params(fn, imports)
	if err != nil {
		return MethodData{}, err
	}

	outs := make([]string, len(fn.Outputs))
	outTypes := make([]string, len(fn.Outputs))
	for i := range fn.Outputs {
		outs[i] = "out"
		if len(fn.Outputs) > 1 {
			outs[i] = fmt.Sprintf("out%d", i)
		}
		if outTypes[i], err = imports.goType(&fn.Outputs[i]); err != nil {
			return MethodData{}, err
		}
	}
	ret := "return "
	if len(outs) > 0 {
		ret += strings.Join(outs, ", ") + ", "
	}
	c := imports.codec(ret)

	var b strings.Builder
	for i := range outs {
		fmt.Fprintf(&b, "var %s %s\n", outs[i], outTypes[i])
	}
	enc, err := encodeParams(c, ps)
	if err != nil {
		return MethodData{}, err
	}
	b.WriteString(enc)
	fmt.Fprintf(&b, "res, err := c.transport.Call(ctx, cairo.NewCall(c.Address, %q, enc.Felts()))\n", fn.Name)
	b.WriteString("if err != nil {\n" + ret + "err\n}\n")
	b.WriteString("dec := cairo.NewDecoder(res)\n")
	for i := range outs {
		s, err := c.decode(&fn.Outputs[i], outs[i], "dec")
		if err != nil {
			return MethodData{}, err
		}
		b.WriteString(s)
	}
	b.WriteString(ret + "dec.Finish()\n")

	results := "error"
	if len(outTypes) > 0 {
		results = "(" + strings.Join(outTypes, ", ") + ", error)"
	}
	return MethodData{
		Doc:       fmt.Sprintf("%s calls the view function %s.", fn.Ident, describe(fn)),
		Signature: fmt.Sprintf("%s(%s) %s", fn.Ident, paramList(ps, true), results),
		Body:      b.String(),
	}, nil
}

func invokeMethods(fn *model.Function, imports *importSet) ([]MethodData, error) {
	ps, err := params(fn, imports)
	if err != nil {
		return nil, err
	}
	enc, err := encodeParams(imports.codec("return cairo.FunctionCall{}, "), ps)
	if err != nil {
		return nil, err
	}

	build := MethodData{
		Signature: fmt.Sprintf("%sCall(%s) (cairo.FunctionCall, error)", fn.Ident, paramList(ps, false)),
		Body:      enc + fmt.Sprintf("return cairo.NewCall(c.Address, %q, enc.Felts()), nil\n", fn.Name),
	}
	if fn.Kind == model.ItemL1Handler {
		build.Doc = fmt.Sprintf("%sCall builds the message payload for the L1 handler %s.", fn.Ident, describe(fn))
		return []MethodData{build}, nil
	}
	build.Doc = fmt.Sprintf("%sCall builds the invocation of %s without submitting it.", fn.Ident, describe(fn))

	imports.add("context")
	invoke := MethodData{
		Doc:       fmt.Sprintf("%s invokes %s and returns the transaction hash.", fn.Ident, describe(fn)),
		Signature: fmt.Sprintf("%s(%s) (cairo.Felt, error)", fn.Ident, paramList(ps, true)),
		Body: fmt.Sprintf("call, err := c.%sCall(%s)\n", fn.Ident, argList(ps)) +
			"if err != nil {\nreturn cairo.Felt{}, err\n}\n" +
			"return c.transport.Invoke(ctx, call)\n",
	}
	return []MethodData{build, invoke}, nil
}
