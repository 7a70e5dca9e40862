// Package idcodec implements the canonicalization and content-identifier
// rules that every signed or hashed record in the ledger must funnel
// through.
//
// CanonicalBytes is the single mandatory canonicalization choke point:
// any code that signs, hashes, or derives a ContentId for a record MUST
// pass it through CanonicalBytes first. Two instances given semantically
// equal inputs (same fields, any key order, any struct vs. map
// representation) MUST produce byte-identical output.
package idcodec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// CanonicalBytes serializes v as JSON with object keys sorted
// lexicographically, no insignificant whitespace, UTF-8 strings, and
// numbers in their shortest exact decimal form. Array order is preserved.
func CanonicalBytes(v any) ([]byte, error) {
	// Round-trip through encoding/json first so struct tags, omitempty,
	// and custom MarshalJSON methods are honored exactly as they would be
	// on the wire; then re-encode the resulting generic value canonically.
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("idcodec: marshal: %w", err)
	}
	var generic any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("idcodec: decode: %w", err)
	}

	var buf bytes.Buffer
	if err := encodeCanonical(&buf, generic); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
		return nil
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case json.Number:
		return encodeNumber(buf, val)
	case string:
		return encodeString(buf, val)
	case []any:
		buf.WriteByte('[')
		for i, e := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeCanonical(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeString(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := encodeCanonical(buf, val[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	default:
		return fmt.Errorf("idcodec: unsupported type %T", v)
	}
}

func encodeString(buf *bytes.Buffer, s string) error {
	enc, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("idcodec: encode string: %w", err)
	}
	buf.Write(enc)
	return nil
}

// encodeNumber re-emits a json.Number in its shortest exact decimal form,
// rejecting NaN/Infinity (which json.Number can never hold, but floats
// produced upstream might collapse to before reaching here).
func encodeNumber(buf *bytes.Buffer, n json.Number) error {
	f, err := n.Float64()
	if err == nil && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return fmt.Errorf("idcodec: NaN/Infinity not allowed")
	}
	s := n.String()
	if s == "" {
		return fmt.Errorf("idcodec: empty number literal")
	}
	buf.WriteString(s)
	return nil
}
