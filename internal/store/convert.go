package store

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pgvector/pgvector-go"
)

// Type-conversion helpers between domain/Go types and pgx wire types,
// grounded on internal/storage/db.go's toUUID/fromUUID/toText family in
// this package.

func toUUID(id string) pgtype.UUID {
	u, err := uuid.Parse(id)
	if err != nil {
		return pgtype.UUID{Valid: false}
	}

	return pgtype.UUID{Bytes: u, Valid: true}
}

func fromUUID(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}

	return uuid.UUID(u.Bytes).String()
}

func toText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func fromText(t pgtype.Text) string {
	if !t.Valid {
		return ""
	}

	return t.String
}

func toTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: !t.IsZero()}
}

func fromTimestamptz(t pgtype.Timestamptz) time.Time {
	if !t.Valid {
		return time.Time{}
	}

	return t.Time
}

// embeddingToText serializes an embedding vector into the JSON-text wire
// representation the news_articles.embedding column stores.
// pgvector.Vector's textual form ("[v1,v2,...]") is valid JSON array
// syntax, so the same round trip both gives typed in-memory vectors and
// keeps the on-disk column a plain JSON string (the Store stays
// vector-representation-agnostic).
func embeddingToText(v []float32) string {
	if len(v) == 0 {
		return ""
	}

	return pgvector.NewVector(v).String()
}

func embeddingFromText(s string) []float32 {
	if s == "" {
		return nil
	}

	var vec pgvector.Vector
	if err := vec.Parse(s); err != nil {
		return nil
	}

	return vec.Slice()
}

// entitiesToText serializes an entity set to JSON text.
func entitiesToText(entities []string) string {
	if len(entities) == 0 {
		return ""
	}

	b, err := json.Marshal(entities)
	if err != nil {
		return ""
	}

	return string(b)
}

func entitiesFromText(s string) []string {
	if s == "" {
		return nil
	}

	var entities []string
	if err := json.Unmarshal([]byte(s), &entities); err != nil {
		return nil
	}

	return entities
}
