// internal/output/json.go
package output

import (
	"context"
	"io"
	"os"

	"github.com/goccy/go-json"
)

// JSONWriter writes each run's result as an indented JSON document
type JSONWriter struct {
	closer  io.Closer
	encoder *json.Encoder
}

// NewJSONWriter creates a JSON writer on filename; "" or "-" is stdout.
func NewJSONWriter(filename string) (*JSONWriter, error) {
	out, closer, err := openTarget(filename)
	if err != nil {
		return nil, err
	}
	w := NewJSONStreamWriter(out)
	w.closer = closer
	return w, nil
}

// NewJSONStreamWriter creates a JSON writer on out. Close does not close out.
func NewJSONStreamWriter(out io.Writer) *JSONWriter {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return &JSONWriter{encoder: encoder}
}

// Write encodes the run's aggregate result
func (w *JSONWriter) Write(_ context.Context, run Run) error {
	return w.encoder.Encode(run.Result)
}

// Close closes the JSON writer
func (w *JSONWriter) Close() error {
	if w.closer != nil {
		err := w.closer.Close()
		w.closer = nil
		return err
	}
	return nil
}

// openTarget opens filename for writing. Stdout is returned without a closer.
func openTarget(filename string) (io.Writer, io.Closer, error) {
	if filename == "" || filename == "-" {
		return os.Stdout, nil, nil
	}
	file, err := os.Create(filename)
	if err != nil {
		return nil, nil, err
	}
	return file, file, nil
}
