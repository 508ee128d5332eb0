package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
    run_id           TEXT PRIMARY KEY,
    scenario         TEXT NOT NULL,
    player           TEXT,
    started_at       TEXT,
    finished_at      TEXT NOT NULL,
    baseline_income  INTEGER NOT NULL,
    final_income     INTEGER NOT NULL,
    expenses         INTEGER NOT NULL,
    fixed_expenses   INTEGER NOT NULL,
    flex_expenses    INTEGER NOT NULL,
    balance          INTEGER NOT NULL,
    survived         INTEGER NOT NULL DEFAULT 0,
    reason           TEXT NOT NULL,
    seconds_left     INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS run_selections (
    run_id           TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
    category         TEXT NOT NULL,
    category_title   TEXT,
    option_id        TEXT NOT NULL,
    label            TEXT,
    cost             INTEGER NOT NULL,
    flexible         INTEGER NOT NULL DEFAULT 0,
    position         INTEGER NOT NULL,
    PRIMARY KEY (run_id, category)
);

CREATE INDEX IF NOT EXISTS idx_runs_finished ON runs(finished_at);
`
