// Package writer emits produced payloads as newline-delimited JSON, one
// document per line in delivery order. Output is buffered; callers must
// Flush or Close before reading the destination. Any write failure is
// surfaced immediately so the driving loop can stop cleanly instead of
// silently dropping payloads.
package writer

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dbsmedya/gomutate/internal/driver"
)

// Writer streams records to one destination. It is not safe for concurrent
// use; in scaled runs a single consumer drains the record channel into it.
type Writer struct {
	buf        *bufio.Writer
	enc        *json.Encoder
	provenance bool
	records    uint64
	closer     io.Closer
}

// envelope is the provenance wrapper around a document. Path is a pointer so
// a mutation at the document root, whose pointer renders as the empty
// string, still shows up on the line.
type envelope struct {
	Index    uint64      `json:"index"`
	Strategy string      `json:"strategy"`
	Operator string      `json:"operator,omitempty"`
	Path     *string     `json:"path,omitempty"`
	Document interface{} `json:"document"`
}

// New wraps an io.Writer. With provenance enabled every line carries the
// record metadata next to the document instead of the bare document.
func New(w io.Writer, provenance bool) *Writer {
	buf := bufio.NewWriter(w)
	enc := json.NewEncoder(buf)
	// Payload bytes must survive verbatim; HTML escaping would rewrite
	// injection probes like "<script>".
	enc.SetEscapeHTML(false)

	return &Writer{
		buf:        buf,
		enc:        enc,
		provenance: provenance,
	}
}

// Create opens path for writing. An empty path or "-" means stdout, which is
// left open on Close.
func Create(path string, provenance bool) (*Writer, error) {
	if path == "" || path == "-" {
		return New(os.Stdout, provenance), nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output %s: %w", path, err)
	}

	w := New(f, provenance)
	w.closer = f
	return w, nil
}

// Write emits one record as one line.
func (w *Writer) Write(rec driver.Record) error {
	var line interface{} = rec.Document
	if w.provenance {
		env := envelope{
			Index:    rec.Index,
			Strategy: string(rec.Strategy),
			Operator: rec.Operator,
			Document: rec.Document,
		}
		if rec.Strategy == driver.StrategyMutation {
			path := rec.Path
			env.Path = &path
		}
		line = env
	}

	if err := w.enc.Encode(line); err != nil {
		return fmt.Errorf("write record %d: %w", rec.Index, err)
	}
	w.records++
	return nil
}

// Records returns how many records have been written.
func (w *Writer) Records() uint64 {
	return w.records
}

// Flush forces buffered lines out to the destination.
func (w *Writer) Flush() error {
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

// Close flushes and, when the writer owns a file, closes it.
func (w *Writer) Close() error {
	if err := w.Flush(); err != nil {
		if w.closer != nil {
			_ = w.closer.Close()
		}
		return err
	}
	if w.closer != nil {
		if err := w.closer.Close(); err != nil {
			return fmt.Errorf("close output: %w", err)
		}
	}
	return nil
}
