package storage

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Encode serializes a document for a persisted slot.
func Encode(doc Document) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

// Decode parses a persisted slot. Events that fail validation are dropped so a
// single corrupt entry does not discard the whole slot.
func Decode(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("decode document: %w", err)
	}

	valid := doc.Events[:0]
	for _, evt := range doc.Events {
		if err := evt.Validate(); err != nil {
			continue
		}
		valid = append(valid, evt)
	}
	doc.Events = valid
	return doc, nil
}
