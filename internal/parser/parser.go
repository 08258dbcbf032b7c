// Package parser provides Cairo ABI document parsing functionality.
//
// Parsing happens in two steps: the raw bytes are decoded into an untyped
// yaml.Node tree (JSON documents are valid YAML flow syntax), and the tree is
// then validated and converted into the model IR. Every structural problem
// is reported as a MalformedAbi error carrying the item path and source line.
package parser

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"cairogen/errors"
	"cairogen/internal/model"
)

// Parser parses ABI documents and extracts interface items.
type Parser struct {
	logger *zap.Logger
}

// New creates a new Parser.
func New(logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{
		logger: logger,
	}
}

// ParseFile reads and parses an ABI document from path.
func (p *Parser) ParseFile(path string) (*model.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return p.Parse(data)
}

// Parse parses a single ABI document.
func (p *Parser) Parse(data []byte) (*model.Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, errors.New(errors.PhaseParse, errors.KindMalformedAbi).
			Detail("document is not valid JSON").
			Cause(err).
			Build()
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, errors.MalformedAbi(nil, 0, "empty document")
	}

	items, err := p.itemSequence(root.Content[0])
	if err != nil {
		return nil, err
	}

	doc := &model.Document{}
	for i, node := range items.Content {
		item, err := p.parseItem(node, i, []string{fmt.Sprintf("items[%d]", i)})
		if err != nil {
			return nil, err
		}
		doc.Items = append(doc.Items, item)
	}

	p.logger.Debug("parsed abi document", zap.Int("items", len(doc.Items)))
	return doc, nil
}

// itemSequence locates the item list: either the top-level sequence or the
// "abi" member of a contract class artifact, which may itself be a JSON string.
func (p *Parser) itemSequence(node *yaml.Node) (*yaml.Node, error) {
	switch node.Kind {
	case yaml.SequenceNode:
		return node, nil
	case yaml.MappingNode:
		abi := lookup(node, "abi")
		if abi == nil {
			break
		}
		if abi.Kind == yaml.ScalarNode && abi.ShortTag() == "!!str" {
			var inner yaml.Node
			if err := yaml.Unmarshal([]byte(abi.Value), &inner); err != nil {
				return nil, errors.New(errors.PhaseParse, errors.KindMalformedAbi).
					Path("abi").
					Line(abi.Line).
					Detail("embedded abi string is not valid JSON").
					Cause(err).
					Build()
			}
			if inner.Kind == yaml.DocumentNode && len(inner.Content) > 0 && inner.Content[0].Kind == yaml.SequenceNode {
				return inner.Content[0], nil
			}
		}
		if abi.Kind == yaml.SequenceNode {
			return abi, nil
		}
		return nil, errors.MalformedAbi([]string{"abi"}, abi.Line, "abi member is not a sequence of interface items")
	}
	return nil, errors.MalformedAbi(nil, node.Line, "top-level value is not a sequence of interface items")
}

// parseItem converts one interface item node.
func (p *Parser) parseItem(node *yaml.Node, index int, path []string) (model.Item, error) {
	if node.Kind != yaml.MappingNode {
		return model.Item{}, errors.MalformedAbi(path, node.Line, "interface item is not an object")
	}

	kind, err := requireString(node, "type", path)
	if err != nil {
		return model.Item{}, err
	}

	item := model.Item{
		Kind:  model.ItemKind(kind),
		Index: index,
		Line:  node.Line,
	}

	switch item.Kind {
	case model.ItemFunction, model.ItemL1Handler:
		err = p.parseFunction(node, &item, path, true)
	case model.ItemConstructor:
		err = p.parseFunction(node, &item, path, false)
	case model.ItemStruct:
		err = p.parseStruct(node, &item, path)
	case model.ItemEnum:
		err = p.parseEnum(node, &item, path)
	case model.ItemEvent:
		err = p.parseEvent(node, &item, path)
	case model.ItemInterface:
		err = p.parseInterface(node, &item, path)
	case model.ItemImpl:
		err = p.parseImpl(node, &item, path)
	default:
		return model.Item{}, errors.MalformedAbi(appendPath(path, "type"), node.Line, "unknown item type %q", kind)
	}
	if err != nil {
		return model.Item{}, withItem(err, item.Name)
	}
	return item, nil
}

func (p *Parser) parseFunction(node *yaml.Node, item *model.Item, path []string, hasOutputs bool) error {
	name, err := requireString(node, "name", path)
	if err != nil {
		return err
	}
	item.Name = name

	inputs, err := requireSeq(node, "inputs", path)
	if err != nil {
		return err
	}
	for i, in := range inputs.Content {
		field, err := parseField(in, appendPath(path, fmt.Sprintf("inputs[%d]", i)), "")
		if err != nil {
			return err
		}
		item.Inputs = append(item.Inputs, field)
	}

	if hasOutputs {
		outputs, err := requireSeq(node, "outputs", path)
		if err != nil {
			return err
		}
		for i, out := range outputs.Content {
			outPath := appendPath(path, fmt.Sprintf("outputs[%d]", i))
			if out.Kind != yaml.MappingNode {
				return errors.MalformedAbi(outPath, out.Line, "output is not an object")
			}
			t, err := requireType(out, outPath)
			if err != nil {
				return err
			}
			item.Outputs = append(item.Outputs, t)
		}
	}

	item.Mutability = model.MutabilityExternal
	if m := lookup(node, "state_mutability"); m != nil {
		switch model.Mutability(m.Value) {
		case model.MutabilityView, model.MutabilityExternal:
			item.Mutability = model.Mutability(m.Value)
		default:
			return errors.MalformedAbi(appendPath(path, "state_mutability"), m.Line, "unknown state mutability %q", m.Value)
		}
	}
	return nil
}

func (p *Parser) parseStruct(node *yaml.Node, item *model.Item, path []string) error {
	name, err := requireString(node, "name", path)
	if err != nil {
		return err
	}
	item.Name = name

	members, err := requireSeq(node, "members", path)
	if err != nil {
		return err
	}
	for i, m := range members.Content {
		field, err := parseField(m, appendPath(path, fmt.Sprintf("members[%d]", i)), "")
		if err != nil {
			return err
		}
		item.Members = append(item.Members, field)
	}
	return nil
}

func (p *Parser) parseEnum(node *yaml.Node, item *model.Item, path []string) error {
	name, err := requireString(node, "name", path)
	if err != nil {
		return err
	}
	item.Name = name

	variants, err := requireSeq(node, "variants", path)
	if err != nil {
		return err
	}
	if len(variants.Content) == 0 {
		return errors.MalformedAbi(appendPath(path, "variants"), variants.Line, "variant list is empty")
	}
	for i, v := range variants.Content {
		variant, err := parseVariant(v, appendPath(path, fmt.Sprintf("variants[%d]", i)), "")
		if err != nil {
			return err
		}
		item.Variants = append(item.Variants, variant)
	}
	return nil
}

func (p *Parser) parseEvent(node *yaml.Node, item *model.Item, path []string) error {
	name, err := requireString(node, "name", path)
	if err != nil {
		return err
	}
	item.Name = name

	kind, err := requireString(node, "kind", path)
	if err != nil {
		return err
	}

	switch model.EventKind(kind) {
	case model.EventStruct:
		item.Event = model.EventStruct
		members, err := requireSeq(node, "members", path)
		if err != nil {
			return err
		}
		for i, m := range members.Content {
			memberPath := appendPath(path, fmt.Sprintf("members[%d]", i))
			field, err := parseField(m, memberPath, "kind")
			if err != nil {
				return err
			}
			switch field.Kind {
			case model.EventKey, model.EventData, model.EventFlat:
			default:
				return errors.MalformedAbi(appendPath(memberPath, "kind"), m.Line, "unknown event member kind %q", field.Kind)
			}
			item.Members = append(item.Members, field)
		}

	case model.EventEnum:
		item.Event = model.EventEnum
		variants, err := requireSeq(node, "variants", path)
		if err != nil {
			return err
		}
		// An event enum without variants is legal: contracts that emit
		// nothing still declare one.
		for i, v := range variants.Content {
			variantPath := appendPath(path, fmt.Sprintf("variants[%d]", i))
			variant, err := parseVariant(v, variantPath, "kind")
			if err != nil {
				return err
			}
			switch variant.Kind {
			case model.EventNested, model.EventFlat:
			default:
				return errors.MalformedAbi(appendPath(variantPath, "kind"), v.Line, "unknown event variant kind %q", variant.Kind)
			}
			item.Variants = append(item.Variants, variant)
		}

	default:
		return errors.MalformedAbi(appendPath(path, "kind"), node.Line, "unknown event kind %q", kind)
	}
	return nil
}

func (p *Parser) parseInterface(node *yaml.Node, item *model.Item, path []string) error {
	name, err := requireString(node, "name", path)
	if err != nil {
		return err
	}
	item.Name = name

	items, err := requireSeq(node, "items", path)
	if err != nil {
		return err
	}
	for i, n := range items.Content {
		subPath := appendPath(path, fmt.Sprintf("items[%d]", i))
		sub, err := p.parseItem(n, i, subPath)
		if err != nil {
			return err
		}
		if sub.Kind != model.ItemFunction {
			return errors.MalformedAbi(subPath, n.Line, "interface member is a %s, not a function", sub.Kind)
		}
		item.Items = append(item.Items, sub)
	}
	return nil
}

func (p *Parser) parseImpl(node *yaml.Node, item *model.Item, path []string) error {
	name, err := requireString(node, "name", path)
	if err != nil {
		return err
	}
	item.Name = name

	iface, err := requireString(node, "interface_name", path)
	if err != nil {
		return err
	}
	item.InterfaceName = iface
	return nil
}

// parseField converts a {name, type[, kindKey]} object.
func parseField(node *yaml.Node, path []string, kindKey string) (model.Field, error) {
	if node.Kind != yaml.MappingNode {
		return model.Field{}, errors.MalformedAbi(path, node.Line, "field is not an object")
	}
	name, err := requireString(node, "name", path)
	if err != nil {
		return model.Field{}, err
	}
	t, err := requireType(node, appendPath(path, name))
	if err != nil {
		return model.Field{}, err
	}
	field := model.Field{Name: name, Type: t}
	if kindKey != "" {
		kind, err := requireString(node, kindKey, appendPath(path, name))
		if err != nil {
			return model.Field{}, err
		}
		field.Kind = model.EventKind(kind)
	}
	return field, nil
}

// parseVariant converts a {name, type[, kindKey]} variant object. A "()"
// payload yields a unit variant.
func parseVariant(node *yaml.Node, path []string, kindKey string) (model.Variant, error) {
	field, err := parseField(node, path, kindKey)
	if err != nil {
		return model.Variant{}, err
	}
	v := model.Variant{Name: field.Name, Kind: field.Kind}
	if !field.Type.IsUnit() {
		t := field.Type
		v.Type = &t
	}
	return v, nil
}

// requireType reads and parses the "type" key of node.
func requireType(node *yaml.Node, path []string) (model.TypeExpr, error) {
	raw, err := requireString(node, "type", path)
	if err != nil {
		return model.TypeExpr{}, err
	}
	t, err := ParseType(raw)
	if err != nil {
		return model.TypeExpr{}, errors.New(errors.PhaseParse, errors.KindMalformedAbi).
			Path(appendPath(path, "type")...).
			Line(lookup(node, "type").Line).
			Detail("invalid type expression").
			Cause(err).
			Build()
	}
	return t, nil
}

// requireString returns the string value of key in a mapping node.
func requireString(node *yaml.Node, key string, path []string) (string, error) {
	v := lookup(node, key)
	if v == nil {
		return "", errors.MalformedAbi(path, node.Line, "missing key %q", key)
	}
	if v.Kind != yaml.ScalarNode || v.ShortTag() != "!!str" {
		return "", errors.MalformedAbi(appendPath(path, key), v.Line, "expected a string")
	}
	if strings.TrimSpace(v.Value) == "" {
		return "", errors.MalformedAbi(appendPath(path, key), v.Line, "empty string")
	}
	return v.Value, nil
}

// requireSeq returns the sequence value of key in a mapping node.
func requireSeq(node *yaml.Node, key string, path []string) (*yaml.Node, error) {
	v := lookup(node, key)
	if v == nil {
		return nil, errors.MalformedAbi(path, node.Line, "missing key %q", key)
	}
	if v.Kind != yaml.SequenceNode {
		return nil, errors.MalformedAbi(appendPath(path, key), v.Line, "expected a list")
	}
	return v, nil
}

// lookup returns the value node for key in a mapping node, or nil.
func lookup(node *yaml.Node, key string) *yaml.Node {
	if node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

func appendPath(path []string, elem string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, elem)
}

// withItem records the item name on a structural error raised inside it.
func withItem(err error, name string) error {
	if e, ok := err.(*errors.Error); ok && e.Item == "" && name != "" {
		e.Item = name
	}
	return err
}
