package egs

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Binary archive layout: each example is one length-delimited record of
// protobuf wire data. Field numbers, all inside nested length-delimited
// messages:
//
//	example:  1 io (message, repeated)
//	io:       1 name (string), 2 features (message)
//	matrix:   1 encoding (varint), 2 rows (varint), 3 cols (varint),
//	          4 dense data (packed fixed64),
//	          5 sparse row (message, repeated),
//	          6 col_min (packed fixed64), 7 col_step (packed fixed64),
//	          8 payload (bytes)
//	row:      1 entry (message, repeated)
//	entry:    1 col (varint), 2 value (fixed64)
//
// Unknown field numbers are skipped on decode so newer writers stay
// readable; a known field with the wrong wire type is corruption and fails.
const (
	fieldExampleIO = 1

	fieldIOName     = 1
	fieldIOFeatures = 2

	fieldMatrixEncoding = 1
	fieldMatrixRows     = 2
	fieldMatrixCols     = 3
	fieldMatrixData     = 4
	fieldMatrixSparse   = 5
	fieldMatrixColMin   = 6
	fieldMatrixColStep  = 7
	fieldMatrixPayload  = 8

	fieldRowEntry = 1

	fieldEntryCol   = 1
	fieldEntryValue = 2
)

const (
	wireEncodingDense      = 0
	wireEncodingSparse     = 1
	wireEncodingCompressed = 2
)

func marshalExample(rec *exampleRecord) []byte {
	var b []byte
	for i := range rec.IO {
		b = protowire.AppendTag(b, fieldExampleIO, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalIO(&rec.IO[i]))
	}
	return b
}

func marshalIO(rec *ioRecord) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldIOName, protowire.BytesType)
	b = protowire.AppendString(b, rec.Name)
	b = protowire.AppendTag(b, fieldIOFeatures, protowire.BytesType)
	b = protowire.AppendBytes(b, marshalMatrix(&rec.Features))
	return b
}

func marshalMatrix(rec *matrixRecord) []byte {
	var b []byte
	var enc uint64
	switch rec.Encoding {
	case encodingNameSparse:
		enc = wireEncodingSparse
	case encodingNameCompressed:
		enc = wireEncodingCompressed
	default:
		enc = wireEncodingDense
	}
	b = protowire.AppendTag(b, fieldMatrixEncoding, protowire.VarintType)
	b = protowire.AppendVarint(b, enc)
	b = protowire.AppendTag(b, fieldMatrixRows, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(rec.Rows))
	b = protowire.AppendTag(b, fieldMatrixCols, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(rec.Cols))

	b = appendPackedFloat64(b, fieldMatrixData, rec.Data)
	for _, row := range rec.SparseRows {
		b = protowire.AppendTag(b, fieldMatrixSparse, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalSparseRow(row))
	}
	b = appendPackedFloat64(b, fieldMatrixColMin, rec.ColMin)
	b = appendPackedFloat64(b, fieldMatrixColStep, rec.ColStep)
	if len(rec.Payload) > 0 {
		b = protowire.AppendTag(b, fieldMatrixPayload, protowire.BytesType)
		b = protowire.AppendBytes(b, rec.Payload)
	}
	return b
}

func marshalSparseRow(row [][2]float64) []byte {
	var b []byte
	for _, pair := range row {
		var entry []byte
		entry = protowire.AppendTag(entry, fieldEntryCol, protowire.VarintType)
		entry = protowire.AppendVarint(entry, uint64(pair[0]))
		entry = protowire.AppendTag(entry, fieldEntryValue, protowire.Fixed64Type)
		entry = protowire.AppendFixed64(entry, math.Float64bits(pair[1]))
		b = protowire.AppendTag(b, fieldRowEntry, protowire.BytesType)
		b = protowire.AppendBytes(b, entry)
	}
	return b
}

func appendPackedFloat64(b []byte, num protowire.Number, vals []float64) []byte {
	if len(vals) == 0 {
		return b
	}
	inner := make([]byte, 0, 8*len(vals))
	for _, v := range vals {
		inner = protowire.AppendFixed64(inner, math.Float64bits(v))
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, inner)
}

func unmarshalExample(b []byte) (*exampleRecord, error) {
	rec := &exampleRecord{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("example record: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch num {
		case fieldExampleIO:
			v, n, err := consumeBytes(typ, b, "io")
			if err != nil {
				return nil, err
			}
			b = b[n:]
			io, err := unmarshalIO(v)
			if err != nil {
				return nil, err
			}
			rec.IO = append(rec.IO, *io)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("example field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return rec, nil
}

func unmarshalIO(b []byte) (*ioRecord, error) {
	rec := &ioRecord{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("io record: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch num {
		case fieldIOName:
			v, n, err := consumeBytes(typ, b, "name")
			if err != nil {
				return nil, err
			}
			b = b[n:]
			rec.Name = string(v)
		case fieldIOFeatures:
			v, n, err := consumeBytes(typ, b, "features")
			if err != nil {
				return nil, err
			}
			b = b[n:]
			m, err := unmarshalMatrix(v)
			if err != nil {
				return nil, fmt.Errorf("stream %q: %w", rec.Name, err)
			}
			rec.Features = *m
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("io field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return rec, nil
}

func unmarshalMatrix(b []byte) (*matrixRecord, error) {
	rec := &matrixRecord{}
	var enc uint64
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("matrix record: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch num {
		case fieldMatrixEncoding, fieldMatrixRows, fieldMatrixCols:
			if typ != protowire.VarintType {
				return nil, fmt.Errorf("matrix field %d: wire type %d, want varint", num, typ)
			}
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("matrix field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
			switch num {
			case fieldMatrixEncoding:
				enc = v
			case fieldMatrixRows:
				rec.Rows = int(v)
			case fieldMatrixCols:
				rec.Cols = int(v)
			}
		case fieldMatrixData, fieldMatrixColMin, fieldMatrixColStep:
			v, n, err := consumeBytes(typ, b, "float values")
			if err != nil {
				return nil, err
			}
			b = b[n:]
			vals, err := parsePackedFloat64(v)
			if err != nil {
				return nil, fmt.Errorf("matrix field %d: %w", num, err)
			}
			switch num {
			case fieldMatrixData:
				rec.Data = vals
			case fieldMatrixColMin:
				rec.ColMin = vals
			case fieldMatrixColStep:
				rec.ColStep = vals
			}
		case fieldMatrixSparse:
			v, n, err := consumeBytes(typ, b, "sparse row")
			if err != nil {
				return nil, err
			}
			b = b[n:]
			row, err := unmarshalSparseRow(v)
			if err != nil {
				return nil, err
			}
			rec.SparseRows = append(rec.SparseRows, row)
		case fieldMatrixPayload:
			v, n, err := consumeBytes(typ, b, "payload")
			if err != nil {
				return nil, err
			}
			b = b[n:]
			rec.Payload = append([]byte(nil), v...)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("matrix field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	switch enc {
	case wireEncodingDense:
		rec.Encoding = encodingNameDense
	case wireEncodingSparse:
		rec.Encoding = encodingNameSparse
		if rec.SparseRows == nil {
			rec.SparseRows = make([][][2]float64, rec.Rows)
		}
	case wireEncodingCompressed:
		rec.Encoding = encodingNameCompressed
	default:
		return nil, fmt.Errorf("unknown matrix encoding %d", enc)
	}
	return rec, nil
}

func unmarshalSparseRow(b []byte) ([][2]float64, error) {
	row := [][2]float64{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("sparse row: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch num {
		case fieldRowEntry:
			v, n, err := consumeBytes(typ, b, "entry")
			if err != nil {
				return nil, err
			}
			b = b[n:]
			pair, err := unmarshalEntry(v)
			if err != nil {
				return nil, err
			}
			row = append(row, pair)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("sparse row field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return row, nil
}

func unmarshalEntry(b []byte) ([2]float64, error) {
	var pair [2]float64
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return pair, fmt.Errorf("sparse entry: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch num {
		case fieldEntryCol:
			if typ != protowire.VarintType {
				return pair, fmt.Errorf("sparse entry col: wire type %d, want varint", typ)
			}
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return pair, fmt.Errorf("sparse entry col: %w", protowire.ParseError(n))
			}
			b = b[n:]
			pair[0] = float64(v)
		case fieldEntryValue:
			if typ != protowire.Fixed64Type {
				return pair, fmt.Errorf("sparse entry value: wire type %d, want fixed64", typ)
			}
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return pair, fmt.Errorf("sparse entry value: %w", protowire.ParseError(n))
			}
			b = b[n:]
			pair[1] = math.Float64frombits(v)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return pair, fmt.Errorf("sparse entry field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return pair, nil
}

func consumeBytes(typ protowire.Type, b []byte, what string) ([]byte, int, error) {
	if typ != protowire.BytesType {
		return nil, 0, fmt.Errorf("%s: wire type %d, want length-delimited", what, typ)
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, fmt.Errorf("%s: %w", what, protowire.ParseError(n))
	}
	return v, n, nil
}

func parsePackedFloat64(b []byte) ([]float64, error) {
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("packed fixed64 payload of %d bytes is truncated", len(b))
	}
	vals := make([]float64, 0, len(b)/8)
	for len(b) > 0 {
		v, n := protowire.ConsumeFixed64(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		vals = append(vals, math.Float64frombits(v))
	}
	return vals, nil
}
