package policy

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"cairogen/errors"
	"cairogen/internal/model"
	"cairogen/internal/parser"
	"cairogen/internal/resolver"
)

func program(t *testing.T, abi string) *model.Program {
	t.Helper()
	doc, err := parser.New(nil).Parse([]byte(abi))
	require.NoError(t, err)
	prog, err := resolver.New(nil).Resolve(doc)
	require.NoError(t, err)
	return prog
}

const escrowABI = `[
	{"type": "struct", "name": "escrow::types::EscrowDetails", "members": [
		{"name": "escrow_id", "type": "core::integer::u64"},
		{"name": "amount", "type": "core::integer::u256"}
	]},
	{"type": "enum", "name": "escrow::types::Status", "variants": [
		{"name": "Open", "type": "()"},
		{"name": "Funded", "type": "core::integer::u256"}
	]},
	{"type": "interface", "name": "escrow::IEscrow", "items": [
		{"type": "function", "name": "get_details", "inputs": [], "outputs": [{"type": "escrow::types::EscrowDetails"}], "state_mutability": "view"},
		{"type": "function", "name": "fund", "inputs": [], "outputs": [], "state_mutability": "external"}
	]},
	{"type": "l1_handler", "name": "bridge", "inputs": [], "outputs": [], "state_mutability": "external"},
	{"type": "constructor", "name": "constructor", "inputs": []},
	{"type": "event", "name": "escrow::Escrow::Event", "kind": "enum", "variants": []}
]`

func TestDefaultIdent(t *testing.T) {
	tests := []struct {
		fqn  string
		want string
	}{
		{"escrow::types::EscrowDetails", "EscrowDetails"},
		{"pkg::erc20Event", "Erc20Event"},
		{"pkg::_private", "Private"},
		{"pkg::Pair::<core::felt252, core::integer::u8>", "PairFelt252U8"},
		{"pkg::Wrap::<core::array::Array::<pkg::Foo>>", "WrapArrayFoo"},
		{"pkg::Wrap::<(core::felt252, core::bool)>", "WrapTupleFelt252Bool"},
		{"pkg::Wrap::<()>", "WrapUnit"},
	}

	for _, tt := range tests {
		t.Run(tt.fqn, func(t *testing.T) {
			require.Equal(t, tt.want, DefaultIdent(tt.fqn))
		})
	}
}

func TestApply(t *testing.T) {
	require := require.New(t)

	prog := program(t, escrowABI)
	aliases := AliasMap{"escrow::Escrow::Event": "EscrowEvent"}
	derives := DeriveSet{"serde::Serialize", "serde::Deserialize"}
	require.NoError(New(aliases, derives, "escrow", nil).Apply(prog))

	details, status, event := prog.Decls[0], prog.Decls[1], prog.Decls[2]
	require.Equal("EscrowDetails", details.Ident)
	require.Equal("EscrowId", details.Fields[0].Ident)
	require.Equal("Amount", details.Fields[1].Ident)

	require.Equal("Status", status.Ident)
	require.Equal("StatusOpen", status.Variants[0].Ident)
	require.Empty(status.Variants[0].Field)
	require.Equal("StatusFunded", status.Variants[1].Ident)
	require.Equal("Funded", status.Variants[1].Field)

	require.Equal("EscrowEvent", event.Ident)

	for _, decl := range prog.Decls {
		require.Equal([]string(derives), decl.Derives, decl.Name)
	}
	// Each declaration owns its derive slice.
	details.Derives[0] = "changed"
	require.Equal("serde::Serialize", status.Derives[0])

	require.Equal("Escrow", prog.Contract)
	idents := make([]string, len(prog.Functions))
	for i, fn := range prog.Functions {
		idents[i] = fn.Ident
	}
	require.Equal([]string{"GetDetails", "Fund", "Bridge", ""}, idents)
}

func TestApply_DefaultContractName(t *testing.T) {
	prog := program(t, escrowABI)
	require.NoError(t, New(nil, nil, "", nil).Apply(prog))
	require.Equal(t, "Contract", prog.Contract)
}

func TestApply_GenericAlias(t *testing.T) {
	prog := program(t, `[
		{"type": "struct", "name": "pkg::Pair::<core::felt252, core::bool>", "members": []}
	]`)
	aliases := AliasMap{"pkg::Pair::< core::felt252 ,core::bool >": "FeltBoolPair"}
	require.NoError(t, New(aliases, nil, "", nil).Apply(prog))
	require.Equal(t, "FeltBoolPair", prog.Decls[0].Ident)
}

func TestApply_UnusedAliasWarns(t *testing.T) {
	require := require.New(t)

	core, logs := observer.New(zapcore.WarnLevel)
	prog := program(t, escrowABI)
	aliases := AliasMap{"escrow::Missing": "Missing"}
	require.NoError(New(aliases, nil, "escrow", zap.New(core)).Apply(prog))

	entries := logs.FilterMessage("alias does not match any declared type").All()
	require.Len(entries, 1)
	require.Equal("escrow::Missing", entries[0].ContextMap()["name"])
}

func TestApply_Errors(t *testing.T) {
	tests := []struct {
		name     string
		abi      string
		aliases  AliasMap
		derives  DeriveSet
		contract string
		want     error
		item     string
	}{
		{
			name: "same base name",
			abi: `[
				{"type": "event", "name": "a::Token::Event", "kind": "enum", "variants": []},
				{"type": "event", "name": "b::Vault::Event", "kind": "enum", "variants": []}
			]`,
			want: errors.ErrNameCollision,
			item: "Event",
		},
		{
			name: "alias onto existing",
			abi: `[
				{"type": "struct", "name": "a::Foo", "members": []},
				{"type": "struct", "name": "a::Bar", "members": []}
			]`,
			aliases: AliasMap{"a::Bar": "Foo"},
			want:    errors.ErrNameCollision,
			item:    "Foo",
		},
		{
			name:    "invalid alias",
			abi:     `[{"type": "struct", "name": "a::Foo", "members": []}]`,
			aliases: AliasMap{"a::Foo": "not valid"},
			want:    errors.ErrInvalidAlias,
			item:    "a::Foo",
		},
		{
			name: "variant constant",
			abi: `[
				{"type": "enum", "name": "a::Color", "variants": [{"name": "Red", "type": "()"}]},
				{"type": "struct", "name": "a::ColorRed", "members": []}
			]`,
			want: errors.ErrNameCollision,
			item: "ColorRed",
		},
		{
			name: "variant type",
			abi: `[
				{"type": "struct", "name": "a::ColorVariant", "members": []},
				{"type": "enum", "name": "a::Color", "variants": [{"name": "Red", "type": "()"}]}
			]`,
			want: errors.ErrNameCollision,
			item: "ColorVariant",
		},
		{
			name: "field casing",
			abi: `[{"type": "struct", "name": "a::Foo", "members": [
				{"name": "token_id", "type": "core::felt252"},
				{"name": "tokenId", "type": "core::felt252"}
			]}]`,
			want: errors.ErrNameCollision,
			item: "TokenId",
		},
		{
			name: "reserved method name",
			abi: `[{"type": "struct", "name": "a::Foo", "members": [
				{"name": "encode_cairo", "type": "core::felt252"}
			]}]`,
			want: errors.ErrNameCollision,
			item: "EncodeCairo",
		},
		{
			name: "string member with stringer derive",
			abi: `[{"type": "struct", "name": "a::Foo", "members": [
				{"name": "string", "type": "core::felt252"}
			]}]`,
			derives: DeriveSet{"fmt.Stringer"},
			want:    errors.ErrNameCollision,
			item:    "String",
		},
		{
			name: "event decoder name",
			abi: `[{"type": "event", "name": "a::Moved", "kind": "struct", "members": [
				{"name": "decode_event", "type": "core::felt252", "kind": "data"}
			]}]`,
			want: errors.ErrNameCollision,
			item: "DecodeEvent",
		},
		{
			name: "contract binding",
			abi: `[
				{"type": "struct", "name": "a::Escrow", "members": []},
				{"type": "function", "name": "f", "inputs": [], "outputs": [], "state_mutability": "view"}
			]`,
			contract: "escrow",
			want:     errors.ErrNameCollision,
			item:     "Escrow",
		},
		{
			name: "call builder",
			abi: `[
				{"type": "function", "name": "transfer", "inputs": [], "outputs": [], "state_mutability": "external"},
				{"type": "function", "name": "transfer_call", "inputs": [], "outputs": [], "state_mutability": "view"}
			]`,
			want: errors.ErrNameCollision,
			item: "TransferCall",
		},
		{
			name: "interfaces sharing a function",
			abi: `[
				{"type": "interface", "name": "a::IA", "items": [
					{"type": "function", "name": "name", "inputs": [], "outputs": [], "state_mutability": "view"}
				]},
				{"type": "interface", "name": "a::IB", "items": [
					{"type": "function", "name": "name", "inputs": [], "outputs": [], "state_mutability": "view"}
				]}
			]`,
			want: errors.ErrNameCollision,
			item: "Name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			prog := program(t, tt.abi)
			err := New(tt.aliases, tt.derives, tt.contract, nil).Apply(prog)
			require.ErrorIs(err, tt.want)

			var e *errors.Error
			require.ErrorAs(err, &e)
			require.Equal(errors.PhasePolicy, e.Phase)
			require.Equal(tt.item, e.Item)
		})
	}
}

func TestApply_MembersNamedAfterAbsentMethods(t *testing.T) {
	require := require.New(t)

	prog := program(t, `[
		{"type": "struct", "name": "a::Label", "members": [
			{"name": "string", "type": "core::felt252"},
			{"name": "decode_event", "type": "core::felt252"},
			{"name": "decode_event_from", "type": "core::felt252"}
		]},
		{"type": "enum", "name": "a::Shape", "variants": [
			{"name": "String", "type": "core::felt252"},
			{"name": "DecodeEvent", "type": "()"}
		]}
	]`)
	require.NoError(New(nil, DeriveSet{"serde::Serialize"}, "", nil).Apply(prog))
	require.Equal("String", prog.Decls[0].Fields[0].Ident)
	require.Equal("DecodeEvent", prog.Decls[0].Fields[1].Ident)
	require.Equal("String", prog.Decls[1].Variants[0].Field)
}
