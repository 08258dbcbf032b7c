// Package abigen compiles a Cairo contract ABI into Go bindings.
//
// A typical build step:
//
//	err := abigen.New("escrow", "escrow.abi.json").
//		WithTypesAliases(map[string]string{
//			"escrownet_contract::escrow::escrow_factory::EscrowFactory::Event": "EscrowFactoryEvent",
//		}).
//		WithDerives([]string{"serde::Serialize", "serde::Deserialize"}).
//		Generate().
//		WriteToFile("escrow.go")
//
// Each stage error is terminal and nothing is written unless every stage
// succeeded.
package abigen

import (
	"os"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"cairogen/errors"
	"cairogen/internal/config"
	"cairogen/internal/generator"
	"cairogen/internal/model"
	"cairogen/internal/parser"
	"cairogen/internal/policy"
	"cairogen/internal/resolver"
	"cairogen/internal/writer"
)

// Abigen holds the inputs of one compilation.
type Abigen struct {
	name    string
	abiPath string
	config  *config.Config
	logger  *zap.Logger
	err     error // first configuration error, reported by Generate
}

// New creates a compilation of the ABI at abiPath. name names the contract
// binding and, unless overridden, the generated package.
func New(name, abiPath string) *Abigen {
	cfg := config.New()
	cfg.Contract = name
	if pkg := packageName(name); pkg != "" {
		cfg.Package = pkg
	}
	return &Abigen{
		name:    name,
		abiPath: abiPath,
		config:  cfg,
		logger:  zap.NewNop(),
	}
}

// packageName lowercases name and drops characters a package name cannot
// hold; it returns "" when nothing usable is left.
func packageName(name string) string {
	pkg := strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return unicode.ToLower(r)
		}
		return -1
	}, name)
	if pkg == "" || unicode.IsDigit(rune(pkg[0])) {
		return ""
	}
	return pkg
}

// WithTypesAliases maps fully-qualified Cairo type names to Go identifiers.
// Entries are merged with earlier ones.
func (a *Abigen) WithTypesAliases(aliases map[string]string) *Abigen {
	a.config.Merge(&config.Config{Aliases: aliases})
	return a
}

// WithDerives sets the derive annotations applied to every generated type.
func (a *Abigen) WithDerives(derives []string) *Abigen {
	a.config.Derives = append([]string(nil), derives...)
	return a
}

// WithPackage sets the package clause of the generated file.
func (a *Abigen) WithPackage(pkg string) *Abigen {
	a.config.Package = pkg
	return a
}

// WithRuntimeImport sets the import path of the serde runtime.
func (a *Abigen) WithRuntimeImport(path string) *Abigen {
	a.config.RuntimeImport = path
	return a
}

// WithTemplate replaces the built-in bindings template.
func (a *Abigen) WithTemplate(path string) *Abigen {
	a.config.Template = path
	return a
}

// WithConfigFile merges a YAML or JSON configuration file. Options set
// afterwards take precedence over the file.
func (a *Abigen) WithConfigFile(path string) *Abigen {
	if a.err == nil {
		a.err = a.config.LoadFile(path)
	}
	return a
}

// WithLogger sets the logger of every stage.
func (a *Abigen) WithLogger(logger *zap.Logger) *Abigen {
	if logger != nil {
		a.logger = logger
	}
	return a
}

// Generate runs the parser, resolver, naming policy and emitter.
func (a *Abigen) Generate() *Bindings {
	mod, err := a.generate()
	return &Bindings{module: mod, err: err, logger: a.logger}
}

func (a *Abigen) generate() (*model.GeneratedModule, error) {
	if a.err != nil {
		return nil, a.err
	}
	if err := a.config.Validate("options"); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(a.abiPath)
	if err != nil {
		return nil, errors.InvalidConfig(a.abiPath, err)
	}

	doc, err := parser.New(a.logger).Parse(data)
	if err != nil {
		return nil, err
	}
	prog, err := resolver.New(a.logger).Resolve(doc)
	if err != nil {
		return nil, err
	}
	pol := policy.New(a.config.Aliases, a.config.Derives, a.config.Contract, a.logger)
	if err := pol.Apply(prog); err != nil {
		return nil, err
	}

	gen := generator.New(a.config, a.logger)
	if a.config.Template != "" {
		if err := gen.LoadTemplate(a.config.Template); err != nil {
			return nil, err
		}
	}
	mod, err := gen.Generate(prog, a.abiPath, data)
	if err != nil {
		return nil, err
	}
	a.logger.Info("generated bindings",
		zap.String("contract", a.name),
		zap.String("abi", a.abiPath),
		zap.Strings("types", mod.Decls))
	return mod, nil
}

// Bindings is the result of Generate. A failed compilation carries its
// error, which WriteToFile and Err report.
type Bindings struct {
	module *model.GeneratedModule
	err    error
	logger *zap.Logger
}

// Err returns the compilation error, if any.
func (b *Bindings) Err() error {
	return b.err
}

// Source returns the formatted Go source.
func (b *Bindings) Source() ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.module.Source, nil
}

// Types returns the identifiers of the generated type declarations in
// document order.
func (b *Bindings) Types() []string {
	if b.module == nil {
		return nil
	}
	return b.module.Decls
}

// WriteToFile overwrites path with the generated source. It writes nothing
// if the compilation failed.
func (b *Bindings) WriteToFile(path string) error {
	if b.err != nil {
		return b.err
	}
	return writer.New(b.logger).Write(path, b.module.Source)
}
