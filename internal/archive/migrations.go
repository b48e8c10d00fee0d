package archive

const schema = `
CREATE TABLE IF NOT EXISTS messages (
    id TEXT PRIMARY KEY,
    account_id TEXT NOT NULL,
    from_addr TEXT NOT NULL,
    from_name TEXT,
    subject TEXT,
    intro TEXT,
    body_text TEXT,
    has_attachments BOOLEAN DEFAULT false,
    size INTEGER DEFAULT 0,
    detected_codes TEXT,
    received_at DATETIME,
    archived_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_messages_account ON messages(account_id);
CREATE INDEX IF NOT EXISTS idx_messages_received ON messages(received_at);
`
