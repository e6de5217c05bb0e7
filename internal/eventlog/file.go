// Package eventlog is the append-only newline-delimited JSON log of decision
// records, shared by the engine (writer) and the read API (reader).
package eventlog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"jarvis/internal/decision"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"
)

// maxLineSize caps one record line; longer lines are skipped when tailing.
const maxLineSize = 1 << 20

// File appends records to path. Each Append opens, writes one line and
// closes, so readers never observe a half-open handle.
type File struct {
	path   string
	schema *jsonschema.Schema
	mu     sync.Mutex
}

func Open(path string) (*File, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("event log path is required")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create event log dir: %w", err)
		}
	}
	schema, err := compileRecordSchema()
	if err != nil {
		return nil, fmt.Errorf("compile record schema: %w", err)
	}
	return &File{path: path, schema: schema}, nil
}

func (f *File) Path() string { return f.path }

// Append writes rec as one JSON line.
func (f *File) Append(rec decision.Record) error {
	raw, err := rec.JSON()
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if err := validateLine(f.schema, raw); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	fh, err := os.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := fh.Write(append(raw, '\n')); err != nil {
		fh.Close()
		return err
	}
	return fh.Close()
}

// Tail returns up to limit of the most recent well-formed lines,
// most recent first. Blank and malformed lines are skipped and do not
// count toward limit. A missing file yields an empty result.
func (f *File) Tail(limit int) ([]gjson.Result, error) {
	return Tail(f.path, limit)
}

func Tail(path string, limit int) ([]gjson.Result, error) {
	if limit <= 0 {
		return []gjson.Result{}, nil
	}
	fh, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []gjson.Result{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	ring := make([]string, 0, limit)
	err = eachLine(bufio.NewReader(fh), maxLineSize, func(line string) {
		line = strings.TrimSpace(line)
		if line == "" || !gjson.Valid(line) || !gjson.Parse(line).IsObject() {
			return
		}
		if len(ring) == limit {
			ring = ring[1:]
		}
		ring = append(ring, line)
	})
	if err != nil {
		return nil, err
	}
	out := make([]gjson.Result, 0, len(ring))
	for i := len(ring) - 1; i >= 0; i-- {
		out = append(out, gjson.Parse(ring[i]))
	}
	return out, nil
}

// eachLine calls fn for every line of r. Lines longer than maxLen are dropped
// whole and reading continues with the next line.
func eachLine(r *bufio.Reader, maxLen int, fn func(string)) error {
	var (
		buf       []byte
		oversized bool
	)
	for {
		chunk, isPrefix, err := r.ReadLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if !oversized {
			if len(buf)+len(chunk) > maxLen {
				oversized = true
				buf = buf[:0]
			} else {
				buf = append(buf, chunk...)
			}
		}
		if isPrefix {
			continue
		}
		if !oversized {
			fn(string(buf))
		}
		buf = buf[:0]
		oversized = false
	}
}

var _ decision.Sink = (*File)(nil)
