package repository

import (
	"encoding/json"
	"fmt"
)

// ToDocument converts a record into document data. The record's "id" field is
// dropped because the identifier lives beside the data.
func ToDocument(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	data := map[string]any{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	delete(data, "id")
	return data, nil
}

// DecodeDoc maps a document onto T, merging the document identifier into the
// record's "id" field. Nothing is validated: missing fields stay zero and
// fields of the wrong type are skipped. The returned error only describes what
// was skipped; the record is always usable.
func DecodeDoc[T any](doc Doc) (T, error) {
	var out T

	merged := make(map[string]any, len(doc.Data)+1)
	for k, v := range doc.Data {
		merged[k] = v
	}
	merged["id"] = doc.ID

	raw, err := json.Marshal(merged)
	if err != nil {
		// Keep at least the identifier.
		raw, _ = json.Marshal(map[string]any{"id": doc.ID})
		_ = json.Unmarshal(raw, &out)
		return out, fmt.Errorf("document %s: %w", doc.ID, err)
	}

	// encoding/json keeps decoding past a type mismatch and reports the first
	// one, so out holds every field that did fit.
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("document %s: %w", doc.ID, err)
	}
	return out, nil
}

// DecodeDocs decodes every document, keeping malformed ones. The first decode
// problem, if any, is returned alongside the full result.
func DecodeDocs[T any](docs []Doc) ([]T, error) {
	out := make([]T, 0, len(docs))
	var firstErr error
	for _, d := range docs {
		rec, err := DecodeDoc[T](d)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		out = append(out, rec)
	}
	return out, firstErr
}
