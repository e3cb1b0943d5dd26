package history

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"

	"github.com/solvkit/solvtrace/pkg/config"
	"github.com/solvkit/solvtrace/pkg/errors"
	"github.com/solvkit/solvtrace/pkg/metrics"
)

// SnapshotExt is the extension forced onto every snapshot path; whatever
// extension the caller supplies is replaced.
const SnapshotExt = ".hst"

// zstdMagic is the frame header of a zstd stream, used by Load to tell
// compressed snapshots from plain ones.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Snapshot is the result of loading a persisted history: the full data
// record and the free-form metadata, exactly as Data and Metadata would
// have returned them on the instance that saved it.
type Snapshot struct {
	Data     map[string][]interface{}
	Metadata map[string]interface{}
}

// snapshotEnvelope is the on-disk JSON document. The two top-level keys are
// the persistence contract; the per-column kind tag is what lets Load
// restore exact Go types instead of generic JSON numbers.
type snapshotEnvelope struct {
	Data     map[string]columnPayload `json:"data"`
	Metadata map[string]interface{}   `json:"metadata"`
}

type columnPayload struct {
	Kind   string        `json:"kind"`
	Values []interface{} `json:"values"`
}

// rawEnvelope is the decode-side view of the document. Cells stay as raw
// JSON so integer columns can be parsed digit-for-digit instead of passing
// through float64, which would corrupt values above 2^53.
type rawEnvelope struct {
	Data     map[string]rawColumn   `json:"data"`
	Metadata map[string]interface{} `json:"metadata"`
}

type rawColumn struct {
	Kind   string              `json:"kind"`
	Values []gojson.RawMessage `json:"values"`
}

// Save persists the full history record and metadata to a single file at
// path. The path's extension is replaced with SnapshotExt. The snapshot is
// a JSON document, zstd-compressed unless the recorder was configured with
// snapshot compression "none".
func (h *History) Save(path string) error {
	path = forceSnapshotExt(path)

	envelope := snapshotEnvelope{
		Data:     make(map[string]columnPayload, len(h.variables)),
		Metadata: h.Metadata(),
	}
	for name, variable := range h.variables {
		envelope.Data[name] = columnPayload{
			Kind:   variable.Kind().String(),
			Values: encodeCells(variable.Data()),
		}
	}

	payload, err := gojson.Marshal(envelope)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to encode history snapshot")
	}

	if h.cfg.Snapshot.Compression != config.CompressionNone {
		var buf bytes.Buffer
		enc, err := zstd.NewWriter(&buf)
		if err != nil {
			return errors.Wrap(err, errors.ErrorTypeFile, "failed to create snapshot compressor")
		}
		if _, err := enc.Write(payload); err != nil {
			enc.Close()
			return errors.Wrap(err, errors.ErrorTypeFile, "failed to compress history snapshot")
		}
		if err := enc.Close(); err != nil {
			return errors.Wrap(err, errors.ErrorTypeFile, "failed to compress history snapshot")
		}
		payload = buf.Bytes()
	}

	var timer *metrics.Timer
	if h.metricsOn {
		timer = metrics.NewSaveTimer(h.cfg.Name)
	}
	err = os.WriteFile(path, payload, 0o644)
	if h.metricsOn {
		timer.Stop()
		metrics.SaveBytes.WithLabelValues(h.cfg.Name).Observe(float64(len(payload)))
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write history snapshot").
			WithDetail("path", path)
	}
	return nil
}

// Load reads a snapshot written by Save. The path's extension is replaced
// with SnapshotExt the same way Save replaces it, so the exact argument
// given to Save round-trips.
func Load(path string) (*Snapshot, error) {
	path = forceSnapshotExt(path)

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read history snapshot").
			WithDetail("path", path)
	}

	if bytes.HasPrefix(raw, zstdMagic) {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to create snapshot decompressor")
		}
		defer dec.Close()
		raw, err = dec.DecodeAll(raw, nil)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to decompress history snapshot").
				WithDetail("path", path)
		}
	}

	var envelope rawEnvelope
	if err := gojson.Unmarshal(raw, &envelope); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to decode history snapshot").
			WithDetail("path", path)
	}

	snapshot := &Snapshot{
		Data:     make(map[string][]interface{}, len(envelope.Data)),
		Metadata: envelope.Metadata,
	}
	if snapshot.Metadata == nil {
		snapshot.Metadata = make(map[string]interface{})
	}
	for name, column := range envelope.Data {
		kind, ok := KindFromString(column.Kind)
		if !ok {
			return nil, errors.Newf(errors.ErrorTypeFile,
				"snapshot column %q has unknown kind %q", name, column.Kind)
		}
		values, err := decodeCells(kind, column.Values)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeFile,
				"snapshot column "+name+" contains malformed values")
		}
		snapshot.Data[name] = values
	}
	return snapshot, nil
}

// forceSnapshotExt strips any extension from path and appends SnapshotExt.
func forceSnapshotExt(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + SnapshotExt
}

// encodeCells rewrites stored cells into JSON-encodable form. Complex
// values become [re, im] pairs; the nil marker becomes JSON null.
func encodeCells(values []interface{}) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		if c, ok := v.(complex128); ok {
			out[i] = [2]float64{real(c), imag(c)}
			continue
		}
		out[i] = v
	}
	return out
}

// decodeCells restores the canonical Go type for each cell using the
// column's kind tag. Numeric cells are parsed from their raw JSON text so
// int64 columns round-trip exactly.
func decodeCells(kind Kind, values []gojson.RawMessage) ([]interface{}, error) {
	out := make([]interface{}, len(values))
	for i, raw := range values {
		text := strings.TrimSpace(string(raw))
		if text == "null" {
			continue
		}
		switch kind {
		case KindInt:
			n, err := strconv.ParseInt(text, 10, 64)
			if err != nil {
				return nil, errors.Newf(errors.ErrorTypeFile, "expected integer, found %s", text)
			}
			out[i] = n
		case KindFloat:
			f, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, errors.Newf(errors.ErrorTypeFile, "expected number, found %s", text)
			}
			out[i] = f
		case KindComplex:
			var pair [2]float64
			if err := gojson.Unmarshal(raw, &pair); err != nil {
				return nil, errors.Newf(errors.ErrorTypeFile, "expected [re, im] pair, found %s", text)
			}
			out[i] = complex(pair[0], pair[1])
		case KindString:
			var s string
			if err := gojson.Unmarshal(raw, &s); err != nil {
				return nil, errors.Newf(errors.ErrorTypeFile, "expected string, found %s", text)
			}
			out[i] = s
		default:
			var v interface{}
			if err := gojson.Unmarshal(raw, &v); err != nil {
				return nil, errors.Newf(errors.ErrorTypeFile, "malformed cell %s", text)
			}
			out[i] = v
		}
	}
	return out, nil
}
