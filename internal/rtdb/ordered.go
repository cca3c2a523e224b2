package rtdb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// Entry is one child of a database node, in document order.
type Entry struct {
	Key string
	Raw json.RawMessage
}

// Children splits a node into its children, keeping the order in which
// they appear in the document. Objects yield their keys; arrays yield their
// indexes, with null slots skipped the way the database drops them. A null
// node has no children.
func Children(data []byte) ([]Entry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading node: %w", err)
	}

	switch tok {
	case nil:
		return nil, nil
	case json.Delim('{'):
		return objectChildren(dec)
	case json.Delim('['):
		return arrayChildren(dec)
	default:
		return nil, fmt.Errorf("expected object or array, got %v", tok)
	}
}

func objectChildren(dec *json.Decoder) ([]Entry, error) {
	var out []Entry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("reading key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("reading %q: %w", key, err)
		}
		out = append(out, Entry{Key: key, Raw: raw})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("closing object: %w", err)
	}
	return out, nil
}

func arrayChildren(dec *json.Decoder) ([]Entry, error) {
	var out []Entry
	for i := 0; dec.More(); i++ {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("reading [%d]: %w", i, err)
		}
		if isNull(raw) {
			continue
		}
		out = append(out, Entry{Key: strconv.Itoa(i), Raw: raw})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("closing array: %w", err)
	}
	return out, nil
}

// EncodeObject writes entries as a JSON object in the given order.
func EncodeObject(entries []Entry) []byte {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(e.Key)
		buf.Write(key)
		buf.WriteByte(':')
		if len(e.Raw) == 0 {
			buf.WriteString("null")
		} else {
			buf.Write(e.Raw)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes()
}

func isNull(raw []byte) bool {
	return len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null"
}
