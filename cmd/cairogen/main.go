// cairogen compiles a Cairo contract ABI into Go bindings.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cairogen/abigen"
)

type options struct {
	abiFile      string
	name         string
	outputFile   string
	packageName  string
	configFile   string
	templateFile string
	runtime      string
	aliases      []string
	derives      []string
	verbose      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "cairogen --abi <contract.abi.json> --name <contract> [flags]",
		Short: "Generate type-safe Go bindings from a Cairo contract ABI",
		Example: `    # Bindings for the escrow contract
    cairogen --abi escrow.abi.json --name escrow -o escrow.go

    # Rename an event enum and derive JSON support
    cairogen --abi escrow.abi.json --name escrow -o escrow.go \
        --alias 'escrownet_contract::escrow::escrow_factory::EscrowFactory::Event=EscrowFactoryEvent' \
        --derive serde::Serialize --derive serde::Deserialize

    # Everything from a config file
    cairogen --abi escrow.abi.json --name escrow -c cairogen.yaml -o escrow.go`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, &opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.abiFile, "abi", "i", "", "Contract ABI JSON file (required)")
	flags.StringVarP(&opts.name, "name", "n", "", "Contract name used for the binding (required)")
	flags.StringVarP(&opts.outputFile, "output", "o", "", "Output file (default: stdout)")
	flags.StringVarP(&opts.packageName, "package", "p", "", "Package name of the generated file")
	flags.StringVarP(&opts.configFile, "config", "c", "", "Config file (YAML/JSON)")
	flags.StringVarP(&opts.templateFile, "template", "t", "", "Template file replacing the built-in one")
	flags.StringVar(&opts.runtime, "runtime", "", "Import path of the serde runtime")
	flags.StringArrayVar(&opts.aliases, "alias", nil, "Type alias as <cairo path>=<Go identifier> (repeatable)")
	flags.StringSliceVar(&opts.derives, "derive", nil, "Derive annotation for every generated type (repeatable)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output")
	_ = cmd.MarkFlagRequired("abi")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func run(cmd *cobra.Command, opts *options) error {
	logger := zap.NewNop()
	if opts.verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		defer func() { _ = l.Sync() }()
		logger = l
	}

	aliases, err := parseAliases(opts.aliases)
	if err != nil {
		return err
	}

	// Config file first, flags override
	gen := abigen.New(opts.name, opts.abiFile).WithLogger(logger)
	if opts.configFile != "" {
		gen.WithConfigFile(opts.configFile)
	}
	if len(aliases) > 0 {
		gen.WithTypesAliases(aliases)
	}
	if len(opts.derives) > 0 {
		gen.WithDerives(opts.derives)
	}
	if opts.packageName != "" {
		gen.WithPackage(opts.packageName)
	}
	if opts.templateFile != "" {
		gen.WithTemplate(opts.templateFile)
	}
	if opts.runtime != "" {
		gen.WithRuntimeImport(opts.runtime)
	}

	bindings := gen.Generate()
	if opts.outputFile == "" {
		src, err := bindings.Source()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(src)
		return err
	}
	if err := bindings.WriteToFile(opts.outputFile); err != nil {
		return err
	}

	if opts.verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "Generated %d types to %s\n", len(bindings.Types()), opts.outputFile)
		for _, t := range bindings.Types() {
			fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", t)
		}
	}
	return nil
}

// parseAliases splits repeated <path>=<ident> flags. Cairo paths never
// contain '=', so the first one separates the pair.
func parseAliases(values []string) (map[string]string, error) {
	out := make(map[string]string, len(values))
	for _, v := range values {
		name, ident, ok := strings.Cut(v, "=")
		name, ident = strings.TrimSpace(name), strings.TrimSpace(ident)
		if !ok || name == "" || ident == "" {
			return nil, fmt.Errorf("invalid alias %q: want <cairo path>=<Go identifier>", v)
		}
		out[name] = ident
	}
	return out, nil
}
