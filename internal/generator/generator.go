// Package generator renders a resolved program into Go source.
package generator

import (
	"bytes"
	_ "embed"
	"fmt"
	"go/format"
	"path/filepath"
	"slices"
	"text/template"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cairogen/errors"
	"cairogen/internal/config"
	"cairogen/internal/model"
)

//go:embed templates/bindings.go.tmpl
var defaultTemplate string

// fingerprintSpace is the UUID namespace of ABI fingerprints.
var fingerprintSpace = uuid.MustParse("5d3b8e0c-0f4a-4c3e-9a61-2b7c1e4f8d90")

// Generator executes the bindings template against resolved programs.
type Generator struct {
	config   *config.Config
	template *template.Template
	logger   *zap.Logger
}

// New creates a new Generator using the built-in template.
func New(cfg *config.Config, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		config:   cfg,
		template: template.Must(template.New("bindings").Funcs(templateFuncs()).Parse(defaultTemplate)),
		logger:   logger,
	}
}

// LoadTemplate replaces the built-in template with the one at path. The
// template receives a *TemplateData.
func (g *Generator) LoadTemplate(path string) error {
	tmpl, err := template.New(filepath.Base(path)).
		Funcs(templateFuncs()).
		ParseFiles(path)
	if err != nil {
		return errors.Emit("loading template "+path, err)
	}
	g.template = tmpl
	return nil
}

// TemplateData represents data passed to templates.
type TemplateData struct {
	Source       string // Base name of the ABI file
	Fingerprint  string // UUIDv5 of the ABI bytes
	Package      string
	StdImports   []Import
	OtherImports []Import
	Decls        []*DeclData
	Contract     *ContractData // nil when the ABI declares no functions
}

// Generate renders prog. source names the ABI in the file header and abi
// holds its raw bytes for the fingerprint.
func (g *Generator) Generate(prog *model.Program, source string, abi []byte) (*model.GeneratedModule, error) {
	imports := newImportSet(g.config.RuntimeImport)
	data := &TemplateData{
		Source:      filepath.Base(source),
		Fingerprint: uuid.NewSHA1(fingerprintSpace, abi).String(),
		Package:     g.config.Package,
	}

	idents := make([]string, 0, len(prog.Decls))
	for _, decl := range prog.Decls {
		d, err := g.declData(decl, imports)
		if err != nil {
			return nil, err
		}
		data.Decls = append(data.Decls, d)
		idents = append(idents, decl.Ident)
	}
	if len(prog.Functions) > 0 {
		c, err := g.contractData(prog, imports)
		if err != nil {
			return nil, err
		}
		data.Contract = c
	}
	if len(data.Decls) > 0 || data.Contract != nil {
		imports.add(g.config.RuntimeImport)
	}
	data.StdImports, data.OtherImports = imports.split()

	var buf bytes.Buffer
	if err := g.template.Execute(&buf, data); err != nil {
		return nil, errors.Emit("executing template", err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, errors.Emit("formatting generated source", fmt.Errorf("%w\n%s", err, buf.Bytes()))
	}

	mod := &model.GeneratedModule{
		Package: g.config.Package,
		Decls:   idents,
		Source:  src,
	}
	for _, imp := range append(data.StdImports, data.OtherImports...) {
		mod.Imports = append(mod.Imports, imp.Path)
	}
	slices.Sort(mod.Imports)
	g.logger.Debug("generated bindings",
		zap.String("package", mod.Package),
		zap.Int("decls", len(mod.Decls)),
		zap.Int("bytes", len(src)))
	return mod, nil
}
