package model

import "sort"

// DeclKind is the shape of a composite declaration.
type DeclKind string

const (
	DeclStruct DeclKind = "struct"
	DeclEnum   DeclKind = "enum"
)

// Decl is a resolved struct, enum or event declaration.
type Decl struct {
	Name  string   // Fully-qualified name
	Kind  DeclKind // Struct or enum layout
	Event bool     // Declared as an event
	Index int      // Position of the declaring item in the document

	Fields   []Field   // DeclStruct
	Variants []Variant // DeclEnum

	// Set by the alias and derive policy.
	Ident   string   // Emitted Go identifier
	Derives []string // Derive annotations, in configured order
}

// Function is a resolved callable entry point.
type Function struct {
	Name       string
	Kind       ItemKind // function, constructor or l1_handler
	Interface  string   // Declaring interface, empty for top-level functions
	Mutability Mutability
	Inputs     []Field
	Outputs    []TypeExpr

	Ident string // Emitted Go method name, set by the policy
}

// IsView reports whether the function only reads state.
func (f *Function) IsView() bool {
	return f.Kind == ItemFunction && f.Mutability == MutabilityView
}

// SymbolTable maps fully-qualified type names to their declaration.
// It is built once by the resolver and read-only afterwards.
type SymbolTable struct {
	decls map[string]*Decl
}

// NewSymbolTable creates an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{decls: make(map[string]*Decl)}
}

// Add registers d; it returns the existing declaration if the name is taken.
func (s *SymbolTable) Add(d *Decl) (*Decl, bool) {
	if prev, ok := s.decls[d.Name]; ok {
		return prev, false
	}
	s.decls[d.Name] = d
	return d, true
}

// Lookup returns the declaration registered under name.
func (s *SymbolTable) Lookup(name string) (*Decl, bool) {
	d, ok := s.decls[name]
	return d, ok
}

// Len returns the number of declarations.
func (s *SymbolTable) Len() int {
	return len(s.decls)
}

// Names returns all registered names, sorted.
func (s *SymbolTable) Names() []string {
	names := make([]string, 0, len(s.decls))
	for name := range s.decls {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Program is the resolved IR of one ABI document.
type Program struct {
	Contract  string // Emitted contract binding identifier, set by the policy
	Symbols   *SymbolTable
	Decls     []*Decl     // Declarations in document order
	Functions []*Function // Functions in document order, interfaces flattened
	Impls     []Item      // impl items, listed in the contract binding doc
}

// Constructor returns the constructor, if declared.
func (p *Program) Constructor() *Function {
	for _, f := range p.Functions {
		if f.Kind == ItemConstructor {
			return f
		}
	}
	return nil
}

// GeneratedModule is the rendered output of one compilation.
type GeneratedModule struct {
	Package string
	Imports []string // Sorted import paths
	Decls   []string // Identifiers of the emitted type declarations, in order
	Source  []byte   // Formatted Go source
}
