package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS reminders (
	id         TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	task_id    TEXT NOT NULL,
	user_id    TEXT NOT NULL,
	title      TEXT NOT NULL DEFAULT '',
	due_date   TEXT NOT NULL DEFAULT '',
	fire_at    DATETIME NOT NULL,
	delivered  INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_reminders_delivered ON reminders(delivered);
CREATE INDEX IF NOT EXISTS idx_reminders_fire_at ON reminders(fire_at);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
