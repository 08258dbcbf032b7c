package model

import "strings"

// TypeKind represents the category of a type expression.
type TypeKind string

const (
	KindPrimitive TypeKind = "primitive"
	KindNamed     TypeKind = "named"
	KindArray     TypeKind = "array"
	KindTuple     TypeKind = "tuple"
	KindGeneric   TypeKind = "generic"
)

// Primitive identifies a Cairo core type with a fixed serde layout.
type Primitive string

const (
	PrimFelt252         Primitive = "felt252"
	PrimBool            Primitive = "bool"
	PrimU8              Primitive = "u8"
	PrimU16             Primitive = "u16"
	PrimU32             Primitive = "u32"
	PrimU64             Primitive = "u64"
	PrimU128            Primitive = "u128"
	PrimU256            Primitive = "u256"
	PrimI8              Primitive = "i8"
	PrimI16             Primitive = "i16"
	PrimI32             Primitive = "i32"
	PrimI64             Primitive = "i64"
	PrimI128            Primitive = "i128"
	PrimContractAddress Primitive = "ContractAddress"
	PrimClassHash       Primitive = "ClassHash"
	PrimStorageAddress  Primitive = "StorageAddress"
	PrimEthAddress      Primitive = "EthAddress"
	PrimBytes31         Primitive = "bytes31"
	PrimByteArray       Primitive = "ByteArray"
	PrimUnit            Primitive = "()"
)

// Primitives maps the fully-qualified Cairo paths of core types to their kind.
var Primitives = map[string]Primitive{
	"felt252":       PrimFelt252,
	"core::felt252": PrimFelt252,
	"core::bool":    PrimBool,
	"bool":          PrimBool,

	"core::integer::u8":   PrimU8,
	"core::integer::u16":  PrimU16,
	"core::integer::u32":  PrimU32,
	"core::integer::u64":  PrimU64,
	"core::integer::u128": PrimU128,
	"core::integer::u256": PrimU256,
	"core::integer::i8":   PrimI8,
	"core::integer::i16":  PrimI16,
	"core::integer::i32":  PrimI32,
	"core::integer::i64":  PrimI64,
	"core::integer::i128": PrimI128,

	"core::starknet::contract_address::ContractAddress": PrimContractAddress,
	"core::starknet::class_hash::ClassHash":             PrimClassHash,
	"core::starknet::storage_access::StorageAddress":    PrimStorageAddress,
	"core::starknet::eth_address::EthAddress":           PrimEthAddress,
	"core::bytes_31::bytes31":                           PrimBytes31,
	"core::byte_array::ByteArray":                       PrimByteArray,
	"()":                                                PrimUnit,
}

// Built-in generic bases.
const (
	GenericArray   = "core::array::Array"
	GenericSpan    = "core::array::Span"
	GenericOption  = "core::option::Option"
	GenericResult  = "core::result::Result"
	GenericNonZero = "core::zeroable::NonZero"
)

// GenericArity holds the number of type arguments of every built-in generic.
var GenericArity = map[string]int{
	GenericArray:   1,
	GenericSpan:    1,
	GenericOption:  1,
	GenericResult:  2,
	GenericNonZero: 1,
}

// TypeExpr is a recursive reference to a type.
type TypeExpr struct {
	Kind      TypeKind
	Primitive Primitive  // KindPrimitive
	Name      string     // KindNamed: fully-qualified name; KindGeneric: base path
	Elem      *TypeExpr  // KindArray
	Args      []TypeExpr // KindTuple: elements; KindGeneric: type arguments
	Span      bool       // KindArray: declared as Span rather than Array

	// Decl is set by the resolver for named references and user generic
	// instances.
	Decl *Decl
}

// IsUnit reports whether the expression is the unit type.
func (t *TypeExpr) IsUnit() bool {
	if t.Kind == KindPrimitive && t.Primitive == PrimUnit {
		return true
	}
	return t.Kind == KindTuple && len(t.Args) == 0
}

// IsBuiltinGeneric reports whether the expression instantiates a core generic.
func (t *TypeExpr) IsBuiltinGeneric() bool {
	if t.Kind != KindGeneric {
		return false
	}
	_, ok := GenericArity[t.Name]
	return ok
}

// String returns the canonical Cairo spelling of the expression. Two
// expressions denote the same type iff their canonical spellings match.
func (t *TypeExpr) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t *TypeExpr) write(b *strings.Builder) {
	switch t.Kind {
	case KindPrimitive:
		b.WriteString(PrimitivePath(t.Primitive))
	case KindNamed:
		b.WriteString(t.Name)
	case KindArray:
		if t.Span {
			b.WriteString(GenericSpan)
		} else {
			b.WriteString(GenericArray)
		}
		b.WriteString("::<")
		t.Elem.write(b)
		b.WriteString(">")
	case KindTuple:
		b.WriteString("(")
		for i := range t.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			t.Args[i].write(b)
		}
		b.WriteString(")")
	case KindGeneric:
		b.WriteString(t.Name)
		b.WriteString("::<")
		for i := range t.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			t.Args[i].write(b)
		}
		b.WriteString(">")
	}
}

// PrimitivePath returns the canonical fully-qualified path of a primitive.
func PrimitivePath(p Primitive) string {
	switch p {
	case PrimFelt252:
		return "core::felt252"
	case PrimBool:
		return "core::bool"
	case PrimU8, PrimU16, PrimU32, PrimU64, PrimU128, PrimU256,
		PrimI8, PrimI16, PrimI32, PrimI64, PrimI128:
		return "core::integer::" + string(p)
	case PrimContractAddress:
		return "core::starknet::contract_address::ContractAddress"
	case PrimClassHash:
		return "core::starknet::class_hash::ClassHash"
	case PrimStorageAddress:
		return "core::starknet::storage_access::StorageAddress"
	case PrimEthAddress:
		return "core::starknet::eth_address::EthAddress"
	case PrimBytes31:
		return "core::bytes_31::bytes31"
	case PrimByteArray:
		return "core::byte_array::ByteArray"
	}
	return string(p)
}

// PrimitiveType constructs a primitive expression.
func PrimitiveType(p Primitive) TypeExpr {
	return TypeExpr{Kind: KindPrimitive, Primitive: p}
}

// NamedType constructs a named reference.
func NamedType(name string) TypeExpr {
	return TypeExpr{Kind: KindNamed, Name: name}
}

// ArrayType constructs an array of elem.
func ArrayType(elem TypeExpr) TypeExpr {
	return TypeExpr{Kind: KindArray, Elem: &elem}
}

// TupleType constructs a tuple of elems.
func TupleType(elems ...TypeExpr) TypeExpr {
	return TypeExpr{Kind: KindTuple, Args: elems}
}

// GenericType constructs an instance of base with args.
func GenericType(base string, args ...TypeExpr) TypeExpr {
	return TypeExpr{Kind: KindGeneric, Name: base, Args: args}
}
