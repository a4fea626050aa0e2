package warehouse

// migration is a single versioned schema change.
type migration struct {
	version int
	sql     string
}

// migrations are applied in order; each entry must also bump
// schema_version.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS load_history (
	load_id TEXT PRIMARY KEY,
	destination TEXT NOT NULL,
	row_count INTEGER NOT NULL,
	loaded_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_load_history_loaded_at
	ON load_history(loaded_at);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
