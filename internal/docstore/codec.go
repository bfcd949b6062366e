package docstore

import (
	"bytes"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
)

// Stable key ordering keeps identical values byte-identical.
var codec = sonic.ConfigStd

// Encode marshals v into a document body.
func Encode(v any) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := codec.NewEncoder(buf).Encode(v); err != nil {
		return nil, crerr.Wrap(err, "encode document")
	}
	return append([]byte(nil), bytes.TrimRight(buf.B, "\n")...), nil
}

// Decode unmarshals a document body into v.
func Decode(body []byte, v any) error {
	if err := codec.Unmarshal(body, v); err != nil {
		return crerr.Wrap(err, "decode document")
	}
	return nil
}

// Merge overlays the top-level fields of patch onto base.
func Merge(base, patch []byte) ([]byte, error) {
	fields, err := decodeFields(base)
	if err != nil {
		return nil, err
	}
	overlay, err := decodeFields(patch)
	if err != nil {
		return nil, err
	}
	for k, v := range overlay {
		fields[k] = v
	}
	return Encode(fields)
}

func decodeFields(body []byte) (map[string]any, error) {
	fields := map[string]any{}
	if len(bytes.TrimSpace(body)) == 0 {
		return fields, nil
	}
	if err := codec.Unmarshal(body, &fields); err != nil {
		return nil, crerr.Wrap(err, "decode document fields")
	}
	return fields, nil
}

// normalize round-trips v so it compares like a decoded body field.
func normalize(v any) (any, error) {
	raw, err := Encode(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := codec.Unmarshal(raw, &out); err != nil {
		return nil, crerr.Wrap(err, "normalize filter value")
	}
	return out, nil
}
