// Package writer persists generated bindings.
package writer

import (
	"os"

	"go.uber.org/zap"

	"cairogen/errors"
)

// Writer overwrites the output file with generated source.
type Writer struct {
	logger *zap.Logger
}

// New creates a new Writer.
func New(logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{logger: logger}
}

// Write replaces the contents of path with src. The parent directory must
// exist. Any failure is a WriteFailure naming path.
func (w *Writer) Write(path string, src []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.WriteFailure(path, err)
	}
	if _, err := f.Write(src); err != nil {
		f.Close()
		return errors.WriteFailure(path, err)
	}
	if err := f.Close(); err != nil {
		return errors.WriteFailure(path, err)
	}
	w.logger.Debug("wrote bindings", zap.String("path", path), zap.Int("bytes", len(src)))
	return nil
}
