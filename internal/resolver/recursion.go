package resolver

import (
	"cairogen/errors"
	"cairogen/internal/model"
)

// edge is a by-value containment of one declaration in another.
type edge struct {
	via  string // "pkg::A.field"
	decl *model.Decl
}

// checkRecursion fails if any declaration reaches itself through fields or
// variant payloads held by value. Arrays and options are indirections in the
// generated code and break a cycle.
func checkRecursion(decls []*model.Decl) error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[*model.Decl]int, len(decls))
	var stack []string

	var visit func(d *model.Decl) error
	visit = func(d *model.Decl) error {
		state[d] = visiting
		for _, e := range valueEdges(d) {
			switch state[e.decl] {
			case visiting:
				cycle := append([]string{}, stack...)
				cycle = append(cycle, e.via, e.decl.Name)
				// Trim the prefix that leads into the cycle.
				for i, step := range cycle {
					if step == e.decl.Name || hasDeclPrefix(step, e.decl.Name) {
						cycle = cycle[i:]
						break
					}
				}
				return errors.InvalidRecursiveType(e.decl.Name, cycle)
			case unvisited:
				stack = append(stack, e.via)
				if err := visit(e.decl); err != nil {
					return err
				}
				stack = stack[:len(stack)-1]
			}
		}
		state[d] = done
		return nil
	}

	for _, d := range decls {
		if state[d] == unvisited {
			if err := visit(d); err != nil {
				return err
			}
		}
	}
	return nil
}

func hasDeclPrefix(step, name string) bool {
	return len(step) > len(name) && step[:len(name)] == name && step[len(name)] == '.'
}

// valueEdges lists the declarations d contains by value, in field order.
func valueEdges(d *model.Decl) []edge {
	var edges []edge
	for _, f := range d.Fields {
		collectEdges(&f.Type, d.Name+"."+f.Name, &edges)
	}
	for _, v := range d.Variants {
		if v.Type != nil {
			collectEdges(v.Type, d.Name+"."+v.Name, &edges)
		}
	}
	return edges
}

func collectEdges(t *model.TypeExpr, via string, edges *[]edge) {
	switch t.Kind {
	case model.KindNamed:
		if t.Decl != nil {
			*edges = append(*edges, edge{via: via, decl: t.Decl})
		}
	case model.KindTuple:
		for i := range t.Args {
			collectEdges(&t.Args[i], via, edges)
		}
	case model.KindGeneric:
		switch t.Name {
		case model.GenericOption:
			// Emitted as a pointer.
		case model.GenericResult, model.GenericNonZero:
			for i := range t.Args {
				collectEdges(&t.Args[i], via, edges)
			}
		default:
			if t.Decl != nil {
				*edges = append(*edges, edge{via: via, decl: t.Decl})
			}
		}
	}
}
