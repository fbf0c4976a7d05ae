package postgres

// Schema creates the asset ledger. It is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS storage_assets (
    id           BIGSERIAL PRIMARY KEY,
    user_id      TEXT        NOT NULL,
    kind         TEXT        NOT NULL,
    object_key   TEXT        NOT NULL UNIQUE,
    url          TEXT        NOT NULL,
    size         BIGINT      NOT NULL DEFAULT 0,
    content_type TEXT        NOT NULL DEFAULT '',
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS storage_assets_user_id_idx ON storage_assets (user_id);
`
