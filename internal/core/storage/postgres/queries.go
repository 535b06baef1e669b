package postgres

// SQL queries for slot storage.

const (
	// querySaveSlot replaces the document of a slot (last write wins).
	querySaveSlot = `
		INSERT INTO analytics_slots (slot, document, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (slot) DO UPDATE SET
			document   = EXCLUDED.document,
			updated_at = EXCLUDED.updated_at
	`

	queryLoadSlot = `SELECT document FROM analytics_slots WHERE slot = $1`

	queryListSlots = `SELECT slot FROM analytics_slots ORDER BY slot ASC`

	queryTableExists = `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_name = 'analytics_slots'
		)
	`
)
