// Package errors defines the structured errors returned by the cairogen
// compiler pipeline.
package errors

import (
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates the pipeline stage that failed
type Phase string

const (
	PhaseConfig  Phase = "config"  // configuration loading
	PhaseParse   Phase = "parse"   // ABI document to IR
	PhaseResolve Phase = "resolve" // symbol table and type references
	PhasePolicy  Phase = "policy"  // aliases, identifiers and derives
	PhaseEmit    Phase = "emit"    // source rendering
	PhaseWrite   Phase = "write"   // output file
)

// Kind categorizes the error
type Kind string

const (
	KindMalformedAbi            Kind = "malformed_abi"
	KindUnresolvedTypeReference Kind = "unresolved_type_reference"
	KindInvalidRecursiveType    Kind = "invalid_recursive_type"
	KindGenericArityMismatch    Kind = "generic_arity_mismatch"
	KindNameCollision           Kind = "name_collision"
	KindWriteFailure            Kind = "write_failure"
	KindInvalidAlias            Kind = "invalid_alias"
	KindInvalidConfig           Kind = "invalid_config"
	KindEmit                    Kind = "emit"
)

// Sentinels for errors.Is. Matching is by kind only.
var (
	ErrMalformedAbi            = &Error{Kind: KindMalformedAbi}
	ErrUnresolvedTypeReference = &Error{Kind: KindUnresolvedTypeReference}
	ErrInvalidRecursiveType    = &Error{Kind: KindInvalidRecursiveType}
	ErrGenericArityMismatch    = &Error{Kind: KindGenericArityMismatch}
	ErrNameCollision           = &Error{Kind: KindNameCollision}
	ErrWriteFailure            = &Error{Kind: KindWriteFailure}
	ErrInvalidAlias            = &Error{Kind: KindInvalidAlias}
	ErrInvalidConfig           = &Error{Kind: KindInvalidConfig}
	ErrEmit                    = &Error{Kind: KindEmit}
)

// Error is the structured error type used throughout the compiler
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Item   string   // fully-qualified item or type name
	Names  []string // all conflicting or offending names
	Detail string
	Path   []string // structural location, e.g. items[3], members[1], type
	Line   int      // source line of the offending node, 0 if unknown
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}
	if e.Line > 0 {
		b.WriteString(" (line ")
		b.WriteString(strconv.Itoa(e.Line))
		b.WriteByte(')')
	}

	if e.Item != "" {
		b.WriteString(": ")
		b.WriteString(strconv.Quote(e.Item))
	}

	if len(e.Names) > 0 {
		quoted := make([]string, len(e.Names))
		for i, n := range e.Names {
			quoted[i] = strconv.Quote(n)
		}
		if e.Item != "" {
			b.WriteString(" ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString("[")
		b.WriteString(strings.Join(quoted, ", "))
		b.WriteString("]")
	}

	if e.Detail != "" {
		if e.Item != "" || len(e.Names) > 0 {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. A target without a phase
// matches any phase.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase != "" && t.Phase != e.Phase {
		return false
	}
	return e.Kind == t.Kind
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the structural location
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Item sets the offending item or type name
func (b *Builder) Item(name string) *Builder {
	b.err.Item = name
	return b
}

// Names sets the conflicting names
func (b *Builder) Names(names ...string) *Builder {
	b.err.Names = names
	return b
}

// Line sets the source line
func (b *Builder) Line(line int) *Builder {
	b.err.Line = line
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for the compiler's error kinds

// MalformedAbi creates a structural ABI error
func MalformedAbi(path []string, line int, detail string, args ...any) *Error {
	return New(PhaseParse, KindMalformedAbi).Path(path...).Line(line).Detail(detail, args...).Build()
}

// UnresolvedTypeReference creates an error for a named type without declaration
func UnresolvedTypeReference(name string, path []string) *Error {
	return &Error{
		Phase: PhaseResolve,
		Kind:  KindUnresolvedTypeReference,
		Item:  name,
		Path:  path,
	}
}

// InvalidRecursiveType creates an error for a by-value cycle; cycle lists
// the declarations and fields in traversal order.
func InvalidRecursiveType(name string, cycle []string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindInvalidRecursiveType,
		Item:   name,
		Detail: "contains itself by value: " + strings.Join(cycle, " -> "),
	}
}

// GenericArityMismatch creates an error for a generic used with the wrong
// number of type arguments
func GenericArityMismatch(base string, want, got int, path []string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindGenericArityMismatch,
		Item:   base,
		Path:   path,
		Detail: fmt.Sprintf("expected %d type arguments, got %d", want, got),
	}
}

// NameCollision creates an error naming every source that maps to identifier
func NameCollision(phase Phase, identifier string, sources ...string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNameCollision,
		Item:   identifier,
		Names:  sources,
		Detail: "distinct sources map to the same identifier",
	}
}

// WriteFailure wraps an I/O error on the output path
func WriteFailure(path string, cause error) *Error {
	return &Error{
		Phase: PhaseWrite,
		Kind:  KindWriteFailure,
		Item:  path,
		Cause: cause,
	}
}

// InvalidAlias creates an error for an alias that is not a usable identifier
func InvalidAlias(name, alias string) *Error {
	return &Error{
		Phase:  PhasePolicy,
		Kind:   KindInvalidAlias,
		Item:   name,
		Detail: fmt.Sprintf("alias %q is not a valid exported Go identifier", alias),
	}
}

// InvalidConfig wraps a configuration loading failure
func InvalidConfig(path string, cause error) *Error {
	return &Error{
		Phase: PhaseConfig,
		Kind:  KindInvalidConfig,
		Item:  path,
		Cause: cause,
	}
}

// Emit wraps a rendering or formatting failure
func Emit(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseEmit,
		Kind:   KindEmit,
		Detail: detail,
		Cause:  cause,
	}
}
