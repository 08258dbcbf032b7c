// Package config provides configuration handling for cairogen.
package config

// DefaultRuntimeImport is the import path of the serde runtime used by
// generated code.
const DefaultRuntimeImport = "cairogen/cairo"

// Derives with a Go capability behind them. Every other derive is only
// recorded in the generated directive.
const (
	DeriveJSON        = "json"
	DeriveSerialize   = "serde::Serialize"
	DeriveDeserialize = "serde::Deserialize"
	DeriveStringer    = "fmt.Stringer"
)

// DefaultOptions returns the default configuration.
func DefaultOptions() Config {
	return Config{
		Package:       "bindings",
		RuntimeImport: DefaultRuntimeImport,
	}
}
