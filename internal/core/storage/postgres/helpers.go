package postgres

import (
	"fmt"

	"github.com/aevon-lab/folio-analytics/internal/core/storage"
)

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanDocument scans a JSONB document column into a storage.Document.
// Compatible with both sql.Row (single) and sql.Rows (multiple).
func scanDocument(row scanner) (storage.Document, error) {
	var raw []byte
	if err := row.Scan(&raw); err != nil {
		return storage.Document{}, err
	}

	doc, err := storage.Decode(raw)
	if err != nil {
		return storage.Document{}, fmt.Errorf("failed to decode slot document: %w", err)
	}
	return doc, nil
}
