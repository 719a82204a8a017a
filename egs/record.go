package egs

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/workflow-demo-org/nnetcore/matrix"
	"github.com/workflow-demo-org/nnetcore/nnet"
)

// exampleRecord is the serialization-neutral form of an example. Both the
// JSON and the binary codec go through it.
type exampleRecord struct {
	IO []ioRecord `json:"io"`
}

type ioRecord struct {
	Name     string       `json:"name"`
	Features matrixRecord `json:"features"`
}

// matrixRecord carries exactly one supervision encoding. Which of the
// optional fields are present depends on Encoding.
type matrixRecord struct {
	Encoding string `json:"encoding"`
	Rows     int    `json:"rows"`
	Cols     int    `json:"cols"`

	// dense: row-major values
	Data []float64 `json:"data,omitempty"`

	// sparse: per-row [column, value] pairs
	SparseRows [][][2]float64 `json:"sparse_rows,omitempty"`

	// compressed: quantization parameters and raw payload
	ColMin  []float64 `json:"col_min,omitempty"`
	ColStep []float64 `json:"col_step,omitempty"`
	Payload []byte    `json:"payload,omitempty"`
}

const (
	encodingNameDense      = "dense"
	encodingNameSparse     = "sparse"
	encodingNameCompressed = "compressed"
)

func recordFromExample(eg *nnet.Example) (*exampleRecord, error) {
	rec := &exampleRecord{IO: make([]ioRecord, 0, len(eg.IO))}
	for _, io := range eg.IO {
		if io.Features == nil {
			return nil, fmt.Errorf("stream %q has nil features", io.Name)
		}
		m, err := recordFromMatrix(io.Features)
		if err != nil {
			return nil, fmt.Errorf("stream %q: %w", io.Name, err)
		}
		rec.IO = append(rec.IO, ioRecord{Name: io.Name, Features: *m})
	}
	return rec, nil
}

func (rec *exampleRecord) example() (*nnet.Example, error) {
	eg := &nnet.Example{IO: make([]nnet.IO, 0, len(rec.IO))}
	for _, io := range rec.IO {
		g, err := io.Features.matrix()
		if err != nil {
			return nil, fmt.Errorf("stream %q: %w", io.Name, err)
		}
		eg.IO = append(eg.IO, nnet.IO{Name: io.Name, Features: g})
	}
	return eg, nil
}

func recordFromMatrix(g *matrix.General) (*matrixRecord, error) {
	rows, cols := g.Dims()
	rec := &matrixRecord{Rows: rows, Cols: cols}
	switch g.Encoding() {
	case matrix.EncodingDense:
		rec.Encoding = encodingNameDense
		d := g.RawDense()
		rec.Data = make([]float64, 0, rows*cols)
		for i := 0; i < rows; i++ {
			rec.Data = append(rec.Data, d.RawRowView(i)...)
		}
	case matrix.EncodingSparse:
		rec.Encoding = encodingNameSparse
		s := g.RawSparse()
		rec.SparseRows = make([][][2]float64, rows)
		for i := 0; i < rows; i++ {
			entries := s.Row(i)
			rec.SparseRows[i] = make([][2]float64, 0, len(entries))
			for _, e := range entries {
				rec.SparseRows[i] = append(rec.SparseRows[i], [2]float64{float64(e.Col), e.Value})
			}
		}
	case matrix.EncodingCompressed:
		rec.Encoding = encodingNameCompressed
		c := g.RawCompressed()
		rec.ColMin, rec.ColStep = c.Params()
		rec.Payload = c.Payload()
	default:
		return nil, fmt.Errorf("unknown supervision encoding %d", g.Encoding())
	}
	return rec, nil
}

func (rec *matrixRecord) matrix() (*matrix.General, error) {
	switch rec.Encoding {
	case encodingNameDense:
		if len(rec.Data) != rec.Rows*rec.Cols {
			return nil, fmt.Errorf("dense matrix has %d values for shape %dx%d",
				len(rec.Data), rec.Rows, rec.Cols)
		}
		return matrix.FromDense(mat.NewDense(rec.Rows, rec.Cols, rec.Data))
	case encodingNameSparse:
		if len(rec.SparseRows) != rec.Rows {
			return nil, fmt.Errorf("sparse matrix has %d rows for shape %dx%d",
				len(rec.SparseRows), rec.Rows, rec.Cols)
		}
		rows := make([][]matrix.Entry, rec.Rows)
		for i, pairs := range rec.SparseRows {
			rows[i] = make([]matrix.Entry, 0, len(pairs))
			for _, p := range pairs {
				rows[i] = append(rows[i], matrix.Entry{Col: int(p[0]), Value: p[1]})
			}
		}
		s, err := matrix.NewSparse(rows, rec.Cols)
		if err != nil {
			return nil, err
		}
		return matrix.FromSparse(s)
	case encodingNameCompressed:
		c, err := matrix.NewCompressed(rec.Rows, rec.Cols, rec.ColMin, rec.ColStep, rec.Payload)
		if err != nil {
			return nil, err
		}
		return matrix.FromCompressed(c)
	default:
		return nil, fmt.Errorf("unknown matrix encoding %q", rec.Encoding)
	}
}
