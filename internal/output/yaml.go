// internal/output/yaml.go
package output

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLWriter writes each run's result as one YAML document
type YAMLWriter struct {
	closer  io.Closer
	encoder *yaml.Encoder
}

// NewYAMLWriter creates a YAML writer on filename; "" or "-" is stdout.
func NewYAMLWriter(filename string) (*YAMLWriter, error) {
	out, closer, err := openTarget(filename)
	if err != nil {
		return nil, err
	}
	w := NewYAMLStreamWriter(out)
	w.closer = closer
	return w, nil
}

// NewYAMLStreamWriter creates a YAML writer on out.
func NewYAMLStreamWriter(out io.Writer) *YAMLWriter {
	encoder := yaml.NewEncoder(out)
	encoder.SetIndent(2)
	return &YAMLWriter{encoder: encoder}
}

func (w *YAMLWriter) Write(_ context.Context, run Run) error {
	if err := w.encoder.Encode(run.Result); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return nil
}

// Close finishes the YAML stream and closes the file, if any.
func (w *YAMLWriter) Close() error {
	err := w.encoder.Close()
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil {
			err = cerr
		}
		w.closer = nil
	}
	return err
}
