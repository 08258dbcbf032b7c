package generator

import (
	"fmt"
	"strconv"
	"strings"

	"cairogen/internal/model"
)

// codec renders the statements that serialize one value. A codec is scoped
// to a single generated function: it numbers the temporaries it declares so
// nested arrays and options never shadow each other, and ret is the prefix
// of the statement returning an error from that function.
type codec struct {
	imports *importSet
	ret     string
	n       int
}

func (s *importSet) codec(ret string) *codec {
	return &codec{imports: s, ret: ret}
}

func (c *codec) next() int {
	c.n++
	return c.n
}

// check wraps a call returning an error.
func (c *codec) check(call string) string {
	return "if err := " + call + "; err != nil {\n" + c.ret + "err\n}\n"
}

// addr returns the address of the addressable expression x.
func addr(x string) string {
	if strings.HasPrefix(x, "(*") && strings.HasSuffix(x, ")") && strings.Count(x, "(") == 1 {
		return x[2 : len(x)-1]
	}
	return "&" + x
}

// val returns the value of x, dropping the parentheses of a dereference.
func val(x string) string {
	if strings.HasPrefix(x, "(*") && strings.HasSuffix(x, ")") && strings.Count(x, "(") == 1 {
		return x[1 : len(x)-1]
	}
	return x
}

var feltLike = map[model.Primitive]bool{
	model.PrimFelt252:         true,
	model.PrimContractAddress: true,
	model.PrimClassHash:       true,
	model.PrimStorageAddress:  true,
	model.PrimEthAddress:      true,
	model.PrimBytes31:         true,
}

// encode appends the statements writing x, of type t, to enc.
func (c *codec) encode(t *model.TypeExpr, x string) (string, error) {
	switch t.Kind {
	case model.KindPrimitive:
		return c.encodePrimitive(t.Primitive, x)

	case model.KindNamed:
		return c.check(x + ".EncodeCairo(enc)"), nil

	case model.KindArray:
		i := "i" + strconv.Itoa(c.next())
		body, err := c.encode(t.Elem, x+"["+i+"]")
		if err != nil {
			return "", err
		}
		return "enc.PutLen(len(" + val(x) + "))\nfor " + i + " := range " + val(x) + " {\n" + body + "}\n", nil

	case model.KindTuple:
		var b strings.Builder
		for i := range t.Args {
			s, err := c.encode(&t.Args[i], fmt.Sprintf("%s.F%d", x, i))
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		}
		return b.String(), nil

	case model.KindGeneric:
		switch t.Name {
		case model.GenericOption:
			some, err := c.encode(&t.Args[0], "(*"+x+")")
			if err != nil {
				return "", err
			}
			return "if " + x + " != nil {\nenc.PutUint64(0)\n" + some + "} else {\nenc.PutUint64(1)\n}\n", nil
		case model.GenericResult:
			ok, err := c.encode(&t.Args[0], x+".Ok")
			if err != nil {
				return "", err
			}
			fail, err := c.encode(&t.Args[1], x+".Err")
			if err != nil {
				return "", err
			}
			return "if " + x + ".IsErr {\nenc.PutUint64(1)\n" + fail + "} else {\nenc.PutUint64(0)\n" + ok + "}\n", nil
		case model.GenericNonZero:
			return c.encode(&t.Args[0], x)
		}
		return c.check(x + ".EncodeCairo(enc)"), nil
	}
	return "", fmt.Errorf("cannot encode type kind %q", t.Kind)
}

func (c *codec) encodePrimitive(p model.Primitive, x string) (string, error) {
	if feltLike[p] {
		return "enc.PutFelt(" + val(x) + ")\n", nil
	}
	switch p {
	case model.PrimBool:
		return "enc.PutBool(" + val(x) + ")\n", nil
	case model.PrimU8, model.PrimU16, model.PrimU32:
		return "enc.PutUint64(uint64(" + val(x) + "))\n", nil
	case model.PrimU64:
		return "enc.PutUint64(" + val(x) + ")\n", nil
	case model.PrimI8, model.PrimI16, model.PrimI32:
		return "enc.PutInt64(int64(" + val(x) + "))\n", nil
	case model.PrimI64:
		return "enc.PutInt64(" + val(x) + ")\n", nil
	case model.PrimU128:
		return c.check("enc.PutU128(" + addr(x) + ")"), nil
	case model.PrimU256:
		return "enc.PutU256(" + addr(x) + ")\n", nil
	case model.PrimI128:
		return "enc.PutI128(" + addr(x) + ")\n", nil
	case model.PrimByteArray:
		return "enc.PutByteArray(" + val(x) + ")\n", nil
	case model.PrimUnit:
		return "", nil
	}
	return "", fmt.Errorf("cannot encode primitive %q", p)
}

var primitiveReaders = map[model.Primitive]string{
	model.PrimBool:      "ReadBool",
	model.PrimU8:        "ReadUint8",
	model.PrimU16:       "ReadUint16",
	model.PrimU32:       "ReadUint32",
	model.PrimU64:       "ReadUint64",
	model.PrimU128:      "ReadU128",
	model.PrimU256:      "ReadU256",
	model.PrimI8:        "ReadInt8",
	model.PrimI16:       "ReadInt16",
	model.PrimI32:       "ReadInt32",
	model.PrimI64:       "ReadInt64",
	model.PrimI128:      "ReadI128",
	model.PrimByteArray: "ReadByteArray",
}

// decode returns the statements reading x, of type t, from the decoder dec.
func (c *codec) decode(t *model.TypeExpr, x, dec string) (string, error) {
	switch t.Kind {
	case model.KindPrimitive:
		if t.Primitive == model.PrimUnit {
			return "", nil
		}
		if feltLike[t.Primitive] {
			return c.check(dec + ".ReadFelt(" + addr(x) + ")"), nil
		}
		read, ok := primitiveReaders[t.Primitive]
		if !ok {
			return "", fmt.Errorf("cannot decode primitive %q", t.Primitive)
		}
		return c.check(dec + "." + read + "(" + addr(x) + ")"), nil

	case model.KindNamed:
		return c.check(x + ".DecodeCairo(" + dec + ")"), nil

	case model.KindArray:
		k := strconv.Itoa(c.next())
		n, i := "n"+k, "i"+k
		elemType, err := c.imports.goType(t.Elem)
		if err != nil {
			return "", err
		}
		body, err := c.decode(t.Elem, x+"["+i+"]", dec)
		if err != nil {
			return "", err
		}
		return "var " + n + " int\n" +
			c.check(dec+".ReadLen(&"+n+")") +
			x + " = make([]" + elemType + ", " + n + ")\n" +
			"for " + i + " := range " + val(x) + " {\n" + body + "}\n", nil

	case model.KindTuple:
		var b strings.Builder
		for i := range t.Args {
			s, err := c.decode(&t.Args[i], fmt.Sprintf("%s.F%d", x, i), dec)
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		}
		return b.String(), nil

	case model.KindGeneric:
		switch t.Name {
		case model.GenericOption:
			inner, err := c.imports.goType(&t.Args[0])
			if err != nil {
				return "", err
			}
			some, err := c.decode(&t.Args[0], "(*"+x+")", dec)
			if err != nil {
				return "", err
			}
			return c.decodeTag(dec, model.GenericOption,
				x+" = new("+inner+")\n"+some,
				x+" = nil\n"), nil
		case model.GenericResult:
			ok, err := c.decode(&t.Args[0], x+".Ok", dec)
			if err != nil {
				return "", err
			}
			fail, err := c.decode(&t.Args[1], x+".Err", dec)
			if err != nil {
				return "", err
			}
			return c.decodeTag(dec, model.GenericResult,
				x+".IsErr = false\n"+ok,
				x+".IsErr = true\n"+fail), nil
		case model.GenericNonZero:
			return c.decode(&t.Args[0], x, dec)
		}
		return c.check(x + ".DecodeCairo(" + dec + ")"), nil
	}
	return "", fmt.Errorf("cannot decode type kind %q", t.Kind)
}

// decodeTag reads a two-variant core enum discriminant and runs first or
// second.
func (c *codec) decodeTag(dec, enum, first, second string) string {
	tag := "tag" + strconv.Itoa(c.next())
	return "var " + tag + " uint64\n" +
		c.check(dec+".ReadUint64(&"+tag+")") +
		"switch " + tag + " {\ncase 0:\n" + first +
		"case 1:\n" + second +
		"default:\n" + c.ret + "cairo.UnknownVariant(" + strconv.Quote(enum) + ", " + tag + ")\n}\n"
}
