package schema

// SchemaSQL contains the full database schema initialization script
const SchemaSQL = `
-- Lifecycle Schema

-- 1. Core User Information
-- The lifecycle service reads this table; the account subsystem owns
-- writes to it.
CREATE TABLE IF NOT EXISTS users (
    user_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    username VARCHAR(50) UNIQUE NOT NULL,
    email VARCHAR(255) NOT NULL DEFAULT '',
    email_verified BOOLEAN NOT NULL DEFAULT FALSE,
    registered_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    last_login_at TIMESTAMPTZ,
    profile_completed_at TIMESTAMPTZ,
    position VARCHAR(50) NOT NULL DEFAULT '',
    balance NUMERIC(14,2) NOT NULL DEFAULT 0,
    total_earnings NUMERIC(14,2) NOT NULL DEFAULT 0,
    referral_count INTEGER NOT NULL DEFAULT 0,
    daily_task_target INTEGER NOT NULL DEFAULT 0,
    suspended BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS idx_users_registered_at ON users (registered_at);

-- 2. Lifecycle Event Log (append-only)
CREATE TABLE IF NOT EXISTS lifecycle_events (
    event_id UUID PRIMARY KEY,
    user_id UUID NOT NULL,
    event_type VARCHAR(64) NOT NULL,
    source VARCHAR(32) NOT NULL,
    occurred_at TIMESTAMPTZ NOT NULL,
    metadata JSONB,
    context JSONB,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- Stage derivation reads the latest event of one type for one user;
-- this index keeps that O(log n).
CREATE INDEX IF NOT EXISTS idx_lifecycle_events_user_type_time
    ON lifecycle_events (user_id, event_type, occurred_at DESC);

CREATE INDEX IF NOT EXISTS idx_lifecycle_events_time
    ON lifecycle_events (occurred_at);

CREATE INDEX IF NOT EXISTS idx_lifecycle_events_type_time
    ON lifecycle_events (event_type, occurred_at);
`
