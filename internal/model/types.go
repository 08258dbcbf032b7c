// Package model defines the intermediate representation for parsed Cairo ABIs.
package model

import "strings"

// ItemKind represents the category of an ABI interface item.
type ItemKind string

const (
	ItemFunction    ItemKind = "function"
	ItemConstructor ItemKind = "constructor"
	ItemL1Handler   ItemKind = "l1_handler"
	ItemStruct      ItemKind = "struct"
	ItemEnum        ItemKind = "enum"
	ItemEvent       ItemKind = "event"
	ItemInterface   ItemKind = "interface"
	ItemImpl        ItemKind = "impl"
)

// EventKind is the shape of an event item or the role of one of its members.
type EventKind string

const (
	EventStruct EventKind = "struct" // event item laid out as a struct
	EventEnum   EventKind = "enum"   // event item laid out as an enum
	EventKey    EventKind = "key"    // member read from the event keys
	EventData   EventKind = "data"   // member read from the event data
	EventFlat   EventKind = "flat"   // member or variant inlined into its parent
	EventNested EventKind = "nested" // variant prefixed by its selector key
)

// Mutability is the declared state mutability of a function.
type Mutability string

const (
	MutabilityView     Mutability = "view"
	MutabilityExternal Mutability = "external"
)

// Document represents a parsed ABI document.
type Document struct {
	Items []Item // Interface items in document order
}

// Item represents one interface item of the ABI.
type Item struct {
	Kind  ItemKind
	Name  string // Fully-qualified name
	Index int    // Position in the document
	Line  int    // Source line of the item

	Members  []Field   // struct, struct event
	Variants []Variant // enum, enum event
	Event    EventKind // event: EventStruct or EventEnum

	Inputs     []Field    // function, constructor, l1_handler
	Outputs    []TypeExpr // function, l1_handler
	Mutability Mutability // function

	Items         []Item // interface: its functions
	InterfaceName string // impl: implemented interface
}

// Field represents a struct member, event member or function parameter.
type Field struct {
	Name  string
	Type  TypeExpr
	Kind  EventKind // event members only
	Ident string    // Emitted Go field name, set by the policy
}

// Variant represents one enum variant. Type is nil for unit variants.
type Variant struct {
	Name  string
	Type  *TypeExpr
	Kind  EventKind // event variants only
	Ident string    // Emitted Go constant name, set by the policy
	Field string    // Emitted payload field name, set by the policy
}

// IsUnit reports whether the variant carries no data.
func (v Variant) IsUnit() bool {
	return v.Type == nil || v.Type.IsUnit()
}

// IsEvent reports whether the item is an event.
func (i *Item) IsEvent() bool {
	return i.Kind == ItemEvent
}

// IsComposite reports whether the item declares a type.
func (i *Item) IsComposite() bool {
	switch i.Kind {
	case ItemStruct, ItemEnum, ItemEvent:
		return true
	}
	return false
}

// IsCallable reports whether the item is a function-like entry point.
func (i *Item) IsCallable() bool {
	switch i.Kind {
	case ItemFunction, ItemConstructor, ItemL1Handler:
		return true
	}
	return false
}

// DeclKind returns the declaration shape of a composite item.
func (i *Item) DeclKind() DeclKind {
	switch {
	case i.Kind == ItemStruct:
		return DeclStruct
	case i.Kind == ItemEvent && i.Event == EventStruct:
		return DeclStruct
	default:
		return DeclEnum
	}
}

// BaseName returns the last path segment of a fully-qualified name with any
// generic argument list removed (e.g., "Pair" for "pkg::Pair::<T>").
func BaseName(fqn string) string {
	if i := strings.Index(fqn, "::<"); i >= 0 {
		fqn = fqn[:i]
	}
	if i := strings.LastIndex(fqn, "::"); i >= 0 {
		return fqn[i+2:]
	}
	return fqn
}
