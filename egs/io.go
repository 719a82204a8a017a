package egs

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/workflow-demo-org/nnetcore/nnet"
)

// maxRecordSize caps a single binary example record, as a guard against
// reading a corrupt length prefix as a huge allocation.
const maxRecordSize = 1 << 30

// Writer streams examples into an archive
type Writer struct {
	format Format
	w      io.Writer
	enc    *json.Encoder
}

// NewWriter creates a writer that appends examples to w in the given format
func NewWriter(w io.Writer, format Format) *Writer {
	wr := &Writer{format: format, w: w}
	if format == FormatJSON {
		wr.enc = json.NewEncoder(w)
	}
	return wr
}

// Write appends one example to the archive
func (w *Writer) Write(eg *nnet.Example) error {
	rec, err := recordFromExample(eg)
	if err != nil {
		return fmt.Errorf("encoding example: %w", err)
	}
	switch w.format {
	case FormatJSON:
		if err := w.enc.Encode(rec); err != nil {
			return fmt.Errorf("writing json example: %w", err)
		}
		return nil
	case FormatBinary:
		body := marshalExample(rec)
		frame := protowire.AppendVarint(nil, uint64(len(body)))
		if _, err := w.w.Write(frame); err != nil {
			return fmt.Errorf("writing record length: %w", err)
		}
		if _, err := w.w.Write(body); err != nil {
			return fmt.Errorf("writing record: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported archive format: %s", w.format)
	}
}

// Reader streams examples out of an archive
type Reader struct {
	format Format
	br     *bufio.Reader
	dec    *json.Decoder
}

// NewReader creates a reader that consumes examples from r in the given format
func NewReader(r io.Reader, format Format) *Reader {
	rd := &Reader{format: format}
	switch format {
	case FormatJSON:
		rd.dec = json.NewDecoder(r)
	default:
		rd.br = bufio.NewReader(r)
	}
	return rd
}

// Read returns the next example, or io.EOF when the archive is exhausted.
// Truncated input anywhere mid-record is an error, not EOF.
func (r *Reader) Read() (*nnet.Example, error) {
	switch r.format {
	case FormatJSON:
		var rec exampleRecord
		if err := r.dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("reading json example: %w", err)
		}
		return rec.example()
	case FormatBinary:
		size, err := binary.ReadUvarint(r.br)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("reading record length: %w", err)
		}
		if size > maxRecordSize {
			return nil, fmt.Errorf("record length %d exceeds limit", size)
		}
		body := make([]byte, size)
		if _, err := io.ReadFull(r.br, body); err != nil {
			return nil, fmt.Errorf("reading %d-byte record: %w", size, err)
		}
		rec, err := unmarshalExample(body)
		if err != nil {
			return nil, err
		}
		return rec.example()
	default:
		return nil, fmt.Errorf("unsupported archive format: %s", r.format)
	}
}

// WriteFile writes examples to a file, gzip-compressing when the name ends
// in .gz
func WriteFile(path string, format Format, examples []*nnet.Example) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating archive: %w", err)
	}
	defer f.Close()

	var w io.Writer = f
	var gz *gzip.Writer
	if strings.HasSuffix(path, ".gz") {
		gz = gzip.NewWriter(f)
		w = gz
	}

	writer := NewWriter(w, format)
	for i, eg := range examples {
		if err := writer.Write(eg); err != nil {
			return fmt.Errorf("example %d: %w", i, err)
		}
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return fmt.Errorf("flushing gzip stream: %w", err)
		}
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing archive: %w", err)
	}
	return nil
}

// ReadFile reads every example from a file, picking the format from the
// name via DetectFormat and unwrapping gzip for .gz files
func ReadFile(path string) ([]*nnet.Example, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("opening gzip stream: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	reader := NewReader(r, DetectFormat(path))
	var examples []*nnet.Example
	for {
		eg, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return examples, nil
		}
		if err != nil {
			return nil, fmt.Errorf("example %d: %w", len(examples), err)
		}
		examples = append(examples, eg)
	}
}
