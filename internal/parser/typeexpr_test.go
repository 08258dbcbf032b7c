package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"cairogen/internal/model"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		input string
		want  model.TypeExpr
	}{
		{"core::felt252", model.PrimitiveType(model.PrimFelt252)},
		{"felt252", model.PrimitiveType(model.PrimFelt252)},
		{"core::integer::u256", model.PrimitiveType(model.PrimU256)},
		{"()", model.PrimitiveType(model.PrimUnit)},
		{"pkg::Foo", model.NamedType("pkg::Foo")},
		{
			"core::array::Array::<core::felt252>",
			model.GenericType(model.GenericArray, model.PrimitiveType(model.PrimFelt252)),
		},
		{
			"(core::felt252, pkg::Foo)",
			model.TupleType(model.PrimitiveType(model.PrimFelt252), model.NamedType("pkg::Foo")),
		},
		{
			"core::result::Result::<core::bool, (core::integer::u8,)>",
			model.GenericType(model.GenericResult,
				model.PrimitiveType(model.PrimBool),
				model.TupleType(model.PrimitiveType(model.PrimU8))),
		},
		{
			"pkg::Pair::< core::felt252 , core::array::Span::<pkg::Foo> >",
			model.GenericType("pkg::Pair",
				model.PrimitiveType(model.PrimFelt252),
				model.GenericType(model.GenericSpan, model.NamedType("pkg::Foo"))),
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseType(tt.input)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseType_Canonical(t *testing.T) {
	got, err := ParseType("pkg::Pair::< core::felt252 ,core::integer::u8>")
	require.NoError(t, err)
	require.Equal(t, "pkg::Pair::<core::felt252, core::integer::u8>", got.String())
}

func TestParseType_Errors(t *testing.T) {
	inputs := []string{
		"",
		"core::array::Array::<core::felt252",
		"(core::felt252, core::bool",
		"pkg::Foo extra",
		"pkg::::Foo",
		"core::array::Array::<>",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := ParseType(input)
			require.Error(t, err)
		})
	}
}
