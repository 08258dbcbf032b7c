package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name:     "malformed with path and line",
			err:      MalformedAbi([]string{"items[3]", "members[1]", "type"}, 12, "missing key %q", "type"),
			contains: []string{"[parse]", "malformed_abi", "items[3].members[1].type", "line 12", `missing key "type"`},
		},
		{
			name:     "unresolved",
			err:      UnresolvedTypeReference("Foo", []string{"items[0]", "members[0]"}),
			contains: []string{"[resolve]", "unresolved_type_reference", `"Foo"`},
		},
		{
			name:     "collision names both sources",
			err:      NameCollision(PhasePolicy, "Event", "a::Event", "b::Event"),
			contains: []string{"[policy]", "name_collision", `"Event"`, `"a::Event"`, `"b::Event"`},
		},
		{
			name:     "write failure with cause",
			err:      WriteFailure("/nope/out.go", errors.New("no such file or directory")),
			contains: []string{"[write]", "write_failure", "/nope/out.go", "caused by", "no such file"},
		},
		{
			name:     "recursive cycle",
			err:      InvalidRecursiveType("a::Node", []string{"a::Node.next", "a::Node"}),
			contains: []string{"invalid_recursive_type", "a::Node.next -> a::Node"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				require.Contains(t, msg, s)
			}
		})
	}
}

func TestError_Is(t *testing.T) {
	require := require.New(t)

	err := fmt.Errorf("compiling: %w", UnresolvedTypeReference("Foo", nil))
	require.ErrorIs(err, ErrUnresolvedTypeReference)
	require.NotErrorIs(err, ErrNameCollision)

	// Sentinels match any phase; phase-qualified targets only their own.
	collision := NameCollision(PhaseResolve, "x::A", "items[0]", "items[2]")
	require.ErrorIs(collision, ErrNameCollision)
	require.ErrorIs(collision, &Error{Phase: PhaseResolve, Kind: KindNameCollision})
	require.NotErrorIs(collision, &Error{Phase: PhasePolicy, Kind: KindNameCollision})
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("permission denied")
	err := WriteFailure("out.go", cause)
	require.ErrorIs(t, err, cause)

	var target *Error
	require.ErrorAs(t, fmt.Errorf("wrapped: %w", err), &target)
	require.Equal(t, KindWriteFailure, target.Kind)
	require.Equal(t, "out.go", target.Item)
}

func TestBuilder(t *testing.T) {
	err := New(PhaseParse, KindMalformedAbi).
		Path("items[0]").
		Item("pkg::Foo").
		Line(4).
		Detail("variant list is empty").
		Build()

	require.Equal(t, PhaseParse, err.Phase)
	require.Equal(t, []string{"items[0]"}, err.Path)
	require.Equal(t, 4, err.Line)
	require.Equal(t, "[parse] malformed_abi at items[0] (line 4): \"pkg::Foo\" - variant list is empty", err.Error())
}
