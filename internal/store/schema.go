package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS file_tracker (
    file_path            TEXT PRIMARY KEY,
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL,
    valid                INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS messages (
    file_path            TEXT PRIMARY KEY REFERENCES file_tracker(file_path) ON DELETE CASCADE,
    id                   TEXT NOT NULL,
    session_id           TEXT NOT NULL,
    created_ms           INTEGER NOT NULL,
    provider_id          TEXT NOT NULL DEFAULT '',
    model_id             TEXT NOT NULL DEFAULT '',
    cost                 REAL NOT NULL DEFAULT 0,
    has_tokens           INTEGER NOT NULL DEFAULT 0,
    input_tokens         INTEGER NOT NULL DEFAULT 0,
    output_tokens        INTEGER NOT NULL DEFAULT 0,
    reasoning_tokens     INTEGER NOT NULL DEFAULT 0,
    cache_read_tokens    INTEGER NOT NULL DEFAULT 0,
    cache_write_tokens   INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_messages_created ON messages(created_ms);
CREATE INDEX IF NOT EXISTS idx_messages_id ON messages(id);
`
