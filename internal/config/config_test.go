package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"cairogen/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNew(t *testing.T) {
	cfg := New()
	require.Equal(t, "bindings", cfg.Package)
	require.Equal(t, DefaultRuntimeImport, cfg.RuntimeImport)
	require.Empty(t, cfg.Aliases)
	require.Empty(t, cfg.Derives)
	require.NoError(t, cfg.Validate("defaults"))
}

func TestLoadFile(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "yaml",
			file: "cairogen.yaml",
			content: `package: escrow
aliases:
  "escrownet_contract::escrow::escrow_factory::EscrowFactory::Event": EscrowFactoryEvent
derives:
  - serde::Serialize
  - serde::Deserialize
`,
		},
		{
			name: "json",
			file: "cairogen.json",
			content: `{
  "package": "escrow",
  "aliases": {"escrownet_contract::escrow::escrow_factory::EscrowFactory::Event": "EscrowFactoryEvent"},
  "derives": ["serde::Serialize", "serde::Deserialize"]
}`,
		},
		{
			name:    "json without extension",
			file:    "cairogenrc",
			content: `{"package": "escrow", "aliases": {"escrownet_contract::escrow::escrow_factory::EscrowFactory::Event": "EscrowFactoryEvent"}, "derives": ["serde::Serialize", "serde::Deserialize"]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			cfg := New()
			require.NoError(cfg.LoadFile(writeFile(t, tt.file, tt.content)))
			require.Equal("escrow", cfg.Package)
			require.Equal(DefaultRuntimeImport, cfg.RuntimeImport)
			require.Equal(map[string]string{
				"escrownet_contract::escrow::escrow_factory::EscrowFactory::Event": "EscrowFactoryEvent",
			}, cfg.Aliases)
			require.Equal([]string{"serde::Serialize", "serde::Deserialize"}, cfg.Derives)
		})
	}
}

func TestLoadFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		detail  string
	}{
		{"bad yaml", "c.yaml", "package: [unclosed", "parsing YAML config"},
		{"bad json", "c.json", `{"package": `, "parsing JSON config"},
		{"unknown format", "c.conf", "\t{ not: [either", "unable to parse"},
		{"invalid package", "c.yaml", "package: my-bindings\n", "not a valid Go identifier"},
		{"empty derive", "c.yaml", "derives: [\"\"]\n", "non-empty word"},
		{"derive with space", "c.yaml", "derives: [\"serde Serialize\"]\n", "non-empty word"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			path := writeFile(t, tt.file, tt.content)
			err := New().LoadFile(path)
			require.ErrorIs(err, errors.ErrInvalidConfig)
			require.ErrorContains(err, tt.detail)

			var e *errors.Error
			require.ErrorAs(err, &e)
			require.Equal(path, e.Item)
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	err := New().LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, errors.ErrInvalidConfig)
}

func TestMerge(t *testing.T) {
	require := require.New(t)

	cfg := New()
	cfg.Aliases = map[string]string{"a::A": "A1", "a::B": "B1"}
	cfg.Derives = []string{"json"}

	cfg.Merge(&Config{
		Contract: "escrow",
		Aliases:  map[string]string{"a::B": "B2", "a::C": "C2"},
	})
	require.Equal("bindings", cfg.Package)
	require.Equal("escrow", cfg.Contract)
	require.Equal(map[string]string{"a::A": "A1", "a::B": "B2", "a::C": "C2"}, cfg.Aliases)
	require.Equal([]string{"json"}, cfg.Derives)

	derives := []string{"fmt.Stringer"}
	cfg.Merge(&Config{Package: "other", Template: "custom.tmpl", Derives: derives})
	require.Equal("other", cfg.Package)
	require.Equal("custom.tmpl", cfg.Template)
	require.Equal([]string{"fmt.Stringer"}, cfg.Derives)

	derives[0] = "changed"
	require.Equal("fmt.Stringer", cfg.Derives[0])
}

func TestValidate(t *testing.T) {
	cfg := New()
	cfg.RuntimeImport = ""
	err := cfg.Validate("flags")
	require.ErrorIs(t, err, errors.ErrInvalidConfig)
	require.ErrorContains(t, err, "runtime import path is empty")
}
