package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS accounts (
    account_id           TEXT PRIMARY KEY,
    name                 TEXT NOT NULL,
    account_type         TEXT NOT NULL,
    balance              TEXT NOT NULL DEFAULT '0',
    created_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
    transaction_id         TEXT PRIMARY KEY,
    account_id             TEXT NOT NULL REFERENCES accounts(account_id),
    date                   TEXT NOT NULL,
    description            TEXT NOT NULL,
    normalized_description TEXT NOT NULL,
    amount                 TEXT NOT NULL,
    currency               TEXT NOT NULL,
    category               TEXT NOT NULL,
    confidence             REAL NOT NULL CHECK (confidence >= 0 AND confidence <= 1),
    tier                   TEXT NOT NULL,
    matched_pattern        TEXT NOT NULL DEFAULT '',
    vendor                 TEXT NOT NULL DEFAULT '',
    status                 TEXT NOT NULL,
    fingerprint            TEXT NOT NULL,
    created_at             TEXT NOT NULL,
    UNIQUE (account_id, fingerprint)
);

CREATE TABLE IF NOT EXISTS rules (
    rule_id              TEXT PRIMARY KEY,
    pattern              TEXT NOT NULL,
    match_type           TEXT NOT NULL,
    category             TEXT NOT NULL,
    confidence           REAL NOT NULL,
    priority             INTEGER NOT NULL DEFAULT 100,
    hit_count            INTEGER NOT NULL DEFAULT 0,
    source               TEXT NOT NULL,
    created_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS corrections (
    correction_id        TEXT PRIMARY KEY,
    transaction_id       TEXT NOT NULL REFERENCES transactions(transaction_id),
    vendor_token         TEXT NOT NULL,
    old_category         TEXT NOT NULL,
    new_category         TEXT NOT NULL,
    created_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS heuristic_hits (
    keyword              TEXT PRIMARY KEY,
    hit_count            INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS uploads (
    upload_id            TEXT PRIMARY KEY,
    account_id           TEXT NOT NULL REFERENCES accounts(account_id),
    file_name            TEXT NOT NULL DEFAULT '',
    imported             INTEGER NOT NULL,
    duplicates           INTEGER NOT NULL,
    parse_errors         INTEGER NOT NULL,
    created_at           TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_account_date ON transactions(account_id, date);
CREATE INDEX IF NOT EXISTS idx_corrections_vendor ON corrections(vendor_token);
CREATE INDEX IF NOT EXISTS idx_uploads_account ON uploads(account_id, created_at);
`
