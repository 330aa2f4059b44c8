package artifact

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/hyperjump/omiai/internal/classifier"
	"github.com/hyperjump/omiai/internal/vectorize"
)

// Binary artifact layout (little-endian): magic (4 bytes), format version (u32),
// fingerprint (u32 length + bytes), then the payload. Space payload: term count
// (u32), per term u32 length + bytes, then count float64 IDF weights. Model
// payload: weight count (u32), count float64 weights, float64 bias.
const (
	spaceMagic    = "OMVS"
	modelMagic    = "OMMD"
	formatVersion = 1
)

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := w.Write([]byte(s))
	return err
}

func readString(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func writeFloat64s(w io.Writer, vals []float64) error {
	const size = 8
	out := make([]byte, len(vals)*size)
	for i, v := range vals {
		binary.LittleEndian.PutUint64(out[i*size:(i+1)*size], math.Float64bits(v))
	}
	_, err := w.Write(out)
	return err
}

func readFloat64s(r io.Reader, n int) ([]float64, error) {
	const size = 8
	buf := make([]byte, n*size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*size : (i+1)*size]))
	}
	return out, nil
}

func readHeader(r io.Reader, magic string) (string, error) {
	buf := make([]byte, len(magic))
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("read magic: %w", err)
	}
	if string(buf) != magic {
		return "", fmt.Errorf("bad magic %q, want %q", buf, magic)
	}
	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return "", fmt.Errorf("read version: %w", err)
	}
	if version != formatVersion {
		return "", fmt.Errorf("unsupported format version %d", version)
	}
	fp, err := readString(r)
	if err != nil {
		return "", fmt.Errorf("read fingerprint: %w", err)
	}
	return fp, nil
}

func writeHeader(w io.Writer, magic, fingerprint string) error {
	if _, err := w.Write([]byte(magic)); err != nil {
		return fmt.Errorf("write magic: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(formatVersion)); err != nil {
		return fmt.Errorf("write version: %w", err)
	}
	if err := writeString(w, fingerprint); err != nil {
		return fmt.Errorf("write fingerprint: %w", err)
	}
	return nil
}

func encodeSpace(w io.Writer, space *vectorize.VectorSpace) error {
	if err := writeHeader(w, spaceMagic, space.Fingerprint()); err != nil {
		return err
	}
	terms := space.Terms()
	if err := binary.Write(w, binary.LittleEndian, uint32(len(terms))); err != nil {
		return fmt.Errorf("write term count: %w", err)
	}
	idf := make([]float64, len(terms))
	for i, term := range terms {
		if err := writeString(w, term); err != nil {
			return fmt.Errorf("write term %d: %w", i, err)
		}
		idf[i] = space.IDF(i)
	}
	if err := writeFloat64s(w, idf); err != nil {
		return fmt.Errorf("write idf: %w", err)
	}
	return nil
}

func decodeSpace(r io.Reader) (*vectorize.VectorSpace, error) {
	fp, err := readHeader(r, spaceMagic)
	if err != nil {
		return nil, err
	}
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("read term count: %w", err)
	}
	terms := make([]string, n)
	for i := range terms {
		term, err := readString(r)
		if err != nil {
			return nil, fmt.Errorf("read term %d: %w", i, err)
		}
		terms[i] = term
	}
	idf, err := readFloat64s(r, int(n))
	if err != nil {
		return nil, fmt.Errorf("read idf: %w", err)
	}
	return vectorize.Restore(terms, idf, fp)
}

func encodeModel(w io.Writer, model *classifier.Model) error {
	if err := writeHeader(w, modelMagic, model.Fingerprint()); err != nil {
		return err
	}
	weights := model.Weights()
	if err := binary.Write(w, binary.LittleEndian, uint32(len(weights))); err != nil {
		return fmt.Errorf("write weight count: %w", err)
	}
	if err := writeFloat64s(w, weights); err != nil {
		return fmt.Errorf("write weights: %w", err)
	}
	if err := writeFloat64s(w, []float64{model.Bias()}); err != nil {
		return fmt.Errorf("write bias: %w", err)
	}
	return nil
}

func decodeModel(r io.Reader) (*classifier.Model, error) {
	fp, err := readHeader(r, modelMagic)
	if err != nil {
		return nil, err
	}
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("read weight count: %w", err)
	}
	weights, err := readFloat64s(r, int(n))
	if err != nil {
		return nil, fmt.Errorf("read weights: %w", err)
	}
	bias, err := readFloat64s(r, 1)
	if err != nil {
		return nil, fmt.Errorf("read bias: %w", err)
	}
	return classifier.Restore(weights, bias[0], fp), nil
}
