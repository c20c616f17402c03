package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id                 BIGSERIAL PRIMARY KEY,
    name               TEXT        NOT NULL,
    email              TEXT        NOT NULL UNIQUE,
    password_hash      TEXT        NOT NULL,
    role               TEXT        NOT NULL,
    first_workout_date TIMESTAMPTZ,
    created_at         TIMESTAMPTZ NOT NULL,
    updated_at         TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS exercises (
    id           BIGSERIAL PRIMARY KEY,
    created_by   BIGINT      NOT NULL REFERENCES users (id),
    name         TEXT        NOT NULL,
    description  TEXT        NOT NULL DEFAULT '',
    muscle_group TEXT        NOT NULL DEFAULT '',
    metric_type  TEXT        NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL,
    updated_at   TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS workouts (
    id                      BIGSERIAL PRIMARY KEY,
    user_id                 BIGINT      NOT NULL REFERENCES users (id) ON DELETE CASCADE,
    name                    TEXT        NOT NULL,
    description             TEXT        NOT NULL DEFAULT '',
    pinned                  BOOLEAN     NOT NULL DEFAULT FALSE,
    completed_session_count INTEGER     NOT NULL DEFAULT 0,
    created_at              TIMESTAMPTZ NOT NULL,
    updated_at              TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS workouts_user_idx ON workouts (user_id);

CREATE TABLE IF NOT EXISTS exercise_set_groups (
    id          BIGSERIAL PRIMARY KEY,
    workout_id  BIGINT  NOT NULL REFERENCES workouts (id) ON DELETE CASCADE,
    exercise_id BIGINT  NOT NULL REFERENCES exercises (id),
    position    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS exercise_set_groups_workout_idx ON exercise_set_groups (workout_id, position);

CREATE TABLE IF NOT EXISTS exercise_sets (
    id               BIGSERIAL PRIMARY KEY,
    group_id         BIGINT  NOT NULL REFERENCES exercise_set_groups (id) ON DELETE CASCADE,
    workout_id       BIGINT  NOT NULL,
    exercise_id      BIGINT  NOT NULL REFERENCES exercises (id),
    position         INTEGER NOT NULL,
    weight           DOUBLE PRECISION,
    reps             INTEGER,
    duration_seconds INTEGER
);
CREATE INDEX IF NOT EXISTS exercise_sets_workout_idx ON exercise_sets (workout_id);

CREATE TABLE IF NOT EXISTS workout_records (
    id          BIGSERIAL PRIMARY KEY,
    user_id     BIGINT      NOT NULL REFERENCES users (id) ON DELETE CASCADE,
    workout_id  BIGINT      NOT NULL REFERENCES workouts (id) ON DELETE CASCADE,
    date        TIMESTAMPTZ NOT NULL,
    duration_ns BIGINT      NOT NULL DEFAULT 0,
    created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS workout_records_user_date_idx ON workout_records (user_id, date);
CREATE INDEX IF NOT EXISTS workout_records_workout_idx ON workout_records (workout_id);

CREATE TABLE IF NOT EXISTS exercise_record_groups (
    id                BIGSERIAL PRIMARY KEY,
    workout_record_id BIGINT  NOT NULL REFERENCES workout_records (id) ON DELETE CASCADE,
    exercise_id       BIGINT  NOT NULL REFERENCES exercises (id),
    position          INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS exercise_record_groups_record_idx ON exercise_record_groups (workout_record_id, position);

CREATE TABLE IF NOT EXISTS exercise_records (
    id                BIGSERIAL PRIMARY KEY,
    group_id          BIGINT      NOT NULL REFERENCES exercise_record_groups (id) ON DELETE CASCADE,
    workout_record_id BIGINT      NOT NULL,
    exercise_id       BIGINT      NOT NULL REFERENCES exercises (id),
    date              TIMESTAMPTZ NOT NULL,
    position          INTEGER     NOT NULL,
    weight            DOUBLE PRECISION,
    reps              INTEGER,
    duration_seconds  INTEGER
);
CREATE INDEX IF NOT EXISTS exercise_records_record_idx ON exercise_records (workout_record_id);

CREATE TABLE IF NOT EXISTS progress_photos (
    id                BIGSERIAL PRIMARY KEY,
    user_id           BIGINT      NOT NULL REFERENCES users (id) ON DELETE CASCADE,
    workout_record_id BIGINT      NOT NULL REFERENCES workout_records (id) ON DELETE CASCADE,
    object_key        TEXT        NOT NULL,
    file_name         TEXT        NOT NULL DEFAULT '',
    content_type      TEXT        NOT NULL DEFAULT '',
    size              BIGINT      NOT NULL DEFAULT 0,
    uploaded_at       TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS progress_photos_record_idx ON progress_photos (workout_record_id);
`

// Migrate creates the tables and indexes that do not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
