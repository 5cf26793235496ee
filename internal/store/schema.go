package store

const schema = `
CREATE TABLE IF NOT EXISTS events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session TEXT NOT NULL,
    ts INTEGER NOT NULL,
    type TEXT NOT NULL,
    svc TEXT,
    action TEXT,
    interaction_id TEXT,
    payload TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS archive_watermarks (
    session TEXT PRIMARY KEY,
    last_index INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_session ON events(session);
CREATE INDEX IF NOT EXISTS idx_events_ts ON events(ts);
CREATE INDEX IF NOT EXISTS idx_events_type ON events(type);
CREATE INDEX IF NOT EXISTS idx_events_interaction ON events(interaction_id);
`
