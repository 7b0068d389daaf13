package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type orderedPair struct {
	key   string
	value int
}

// decodeOrderedObject reads a flat JSON object of integer values and returns
// its members in document order. A JSON null yields no members.
func decodeOrderedObject(data []byte) ([]orderedPair, error) {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected JSON object, got %v", tok)
	}

	var pairs []orderedPair
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}

		var num json.Number
		if err := dec.Decode(&num); err != nil {
			return nil, fmt.Errorf("value for %q: %w", key, err)
		}
		n, err := num.Int64()
		if err != nil {
			return nil, fmt.Errorf("value for %q must be an integer, got %s", key, num)
		}
		pairs = append(pairs, orderedPair{key: key, value: int(n)})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return pairs, nil
}
