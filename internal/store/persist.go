package store

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	keyCategories = "categories"
	keyExpenses   = "expenses"

	envelopeVersion = 1
)

type envelope[T any] struct {
	Version int `json:"version"`
	Items   []T `json:"items"`
}

func encodeItems[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	return json.Marshal(envelope[T]{Version: envelopeVersion, Items: items})
}

// decodeItems reads a versioned envelope. A bare JSON array is the
// unversioned layout and decodes as version 0.
func decodeItems[T any](data []byte) ([]T, int, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, 0, err
		}
		return items, 0, nil
	}

	var env envelope[T]
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, 0, err
	}
	if env.Version < 1 || env.Version > envelopeVersion {
		return nil, env.Version, fmt.Errorf("unsupported version %d", env.Version)
	}
	return env.Items, env.Version, nil
}
