package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/indiabias/newsbias-pipeline/internal/domain"
	"github.com/indiabias/newsbias-pipeline/migrations"
)

// PostgresStore is the pgx-backed Store: a pgxpool wrapped with
// hand-written raw SQL rather than generated sqlc code, since this
// repository has no code-generation step.
type PostgresStore struct {
	Pool *pgxpool.Pool
}

// Open connects to dsn, retrying for a short window for databases that
// are still starting up.
func Open(ctx context.Context, dsn string, maxConns, minConns int32, maxConnIdleTime, maxConnLifetime, healthCheckPeriod time.Duration) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	cfg.MaxConns = maxConns
	cfg.MinConns = minConns
	cfg.MaxConnIdleTime = maxConnIdleTime
	cfg.MaxConnLifetime = maxConnLifetime
	cfg.HealthCheckPeriod = healthCheckPeriod

	var pool *pgxpool.Pool

	for i := 0; i < 10; i++ {
		pool, err = pgxpool.NewWithConfig(ctx, cfg)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return &PostgresStore{Pool: pool}, nil
			}
		}

		if pool != nil {
			pool.Close()
		}

		time.Sleep(2 * time.Second)
	}

	return nil, fmt.Errorf("connect to database after retries: %w", err)
}

func (s *PostgresStore) Close() {
	s.Pool.Close()
}

// Ping reports whether the pool can reach the database, for readiness
// checks.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

const migrationLockID = 8420

// Migrate applies pending goose migrations under a Postgres advisory
// lock so that concurrently starting processes never race on schema
// setup, grounded on internal/db.DB.Migrate.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	conn, err := s.Pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire migration connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", migrationLockID); err != nil {
		return fmt.Errorf("acquire migration lock: %w", err)
	}

	defer func() {
		_, _ = conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", migrationLockID)
	}()

	dbSQL := stdlib.OpenDB(*s.Pool.Config().ConnConfig)
	defer func() {
		_ = dbSQL.Close()
	}()

	goose.SetBaseFS(migrations.FS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.Up(dbSQL, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

func (s *PostgresStore) SelectUnclustered(ctx context.Context, maxAgeHours, limit int) ([]domain.Article, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, source_id, source_name, bias_rating, factuality, headline, summary,
		       url, image_url, pub_date, fetched_at, cluster_id, embedding, entities
		FROM news_articles
		WHERE cluster_id IS NULL
		  AND pub_date >= now() - ($1 || ' hours')::interval
		ORDER BY pub_date ASC
		LIMIT $2
	`, maxAgeHours, limit)
	if err != nil {
		return nil, fmt.Errorf("select unclustered: %w", err)
	}
	defer rows.Close()

	articles, err := scanArticles(rows)
	if err != nil {
		return nil, fmt.Errorf("select unclustered: %w", err)
	}

	return articles, nil
}

func (s *PostgresStore) PersistEnrichment(ctx context.Context, articles []domain.Article) error {
	if len(articles) == 0 {
		return nil
	}

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx) //nolint:errcheck // best-effort cleanup, commit path returns nil error
	}()

	for _, a := range articles {
		if _, err := tx.Exec(ctx, `
			UPDATE news_articles SET embedding = $1, entities = $2 WHERE id = $3
		`, embeddingToText(a.Embedding), entitiesToText(a.Entities), toUUID(a.ID)); err != nil {
			return fmt.Errorf("persist enrichment for %s: %w", a.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit enrichment: %w", err)
	}

	return nil
}

func (s *PostgresStore) LoadRecentClusters(ctx context.Context, maxAgeHours int) ([]domain.Cluster, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, headline, summary, category, main_image_url, created_at,
		       total_sources, left_pct, center_pct, right_pct, blindspot
		FROM news_clusters
		WHERE created_at >= now() - ($1 || ' hours')::interval
		ORDER BY created_at DESC
	`, maxAgeHours)
	if err != nil {
		return nil, fmt.Errorf("load recent clusters: %w", err)
	}
	defer rows.Close()

	var clusters []domain.Cluster

	for rows.Next() {
		c, err := scanCluster(rows)
		if err != nil {
			return nil, fmt.Errorf("load recent clusters: %w", err)
		}

		clusters = append(clusters, c)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate recent clusters: %w", rows.Err())
	}

	return clusters, nil
}

func (s *PostgresStore) LoadClusterArticles(ctx context.Context, clusterID string) ([]domain.Article, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, source_id, source_name, bias_rating, factuality, headline, summary,
		       url, image_url, pub_date, fetched_at, cluster_id, embedding, entities
		FROM news_articles
		WHERE cluster_id = $1
		ORDER BY pub_date ASC
	`, toUUID(clusterID))
	if err != nil {
		return nil, fmt.Errorf("load cluster articles: %w", err)
	}
	defer rows.Close()

	articles, err := scanArticles(rows)
	if err != nil {
		return nil, fmt.Errorf("load cluster articles: %w", err)
	}

	return articles, nil
}

func (s *PostgresStore) CommitClusters(ctx context.Context, clusters []domain.Cluster, assignment map[string]string) error {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx) //nolint:errcheck // best-effort cleanup, commit path returns nil error
	}()

	if err := insertClusters(ctx, tx, clusters); err != nil {
		return err
	}

	if err := assignArticles(ctx, tx, assignment); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit clusters: %w", err)
	}

	return nil
}

func (s *PostgresStore) SplitCluster(ctx context.Context, oldID string, replacements []domain.Cluster, assignment map[string]string) error {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx) //nolint:errcheck // best-effort cleanup, commit path returns nil error
	}()

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM news_clusters WHERE id = $1)`, toUUID(oldID)).Scan(&exists); err != nil {
		return fmt.Errorf("check split target: %w", err)
	}

	if !exists {
		// A concurrent pipeline run already replaced or removed this
		// cluster; abort the split silently rather than fight that run.
		return nil
	}

	if _, err := tx.Exec(ctx, `DELETE FROM news_clusters WHERE id = $1`, toUUID(oldID)); err != nil {
		return fmt.Errorf("delete split cluster: %w", err)
	}

	if err := insertClusters(ctx, tx, replacements); err != nil {
		return err
	}

	if err := assignArticles(ctx, tx, assignment); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit split: %w", err)
	}

	return nil
}

func (s *PostgresStore) UpsertArticles(ctx context.Context, articles []domain.Article) error {
	if len(articles) == 0 {
		return nil
	}

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx) //nolint:errcheck // best-effort cleanup, commit path returns nil error
	}()

	for _, a := range articles {
		if _, err := tx.Exec(ctx, `
			INSERT INTO news_articles (
				id, source_id, source_name, bias_rating, factuality, headline,
				summary, url, image_url, pub_date, fetched_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (url) DO UPDATE SET
				headline   = EXCLUDED.headline,
				fetched_at = EXCLUDED.fetched_at,
				image_url  = CASE
					WHEN news_articles.image_url IS NOT NULL AND news_articles.image_url <> ''
					THEN news_articles.image_url
					ELSE EXCLUDED.image_url
				END
		`,
			toUUID(a.ID), toText(a.SourceID), toText(a.SourceName), toText(string(a.BiasRating)),
			toText(string(a.Factuality)), toText(a.Headline), toText(a.Summary), a.URL,
			toText(a.ImageURL), toTimestamptz(a.PubDate), toTimestamptz(a.FetchedAt),
		); err != nil {
			return fmt.Errorf("upsert article %s: %w", a.URL, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}

	return nil
}

// insertClusters and assignArticles are shared by CommitClusters and
// SplitCluster, which both write a batch of clusters plus an
// articleID->clusterID assignment inside one transaction.

func insertClusters(ctx context.Context, tx pgx.Tx, clusters []domain.Cluster) error {
	for _, c := range clusters {
		if _, err := tx.Exec(ctx, `
			INSERT INTO news_clusters (
				id, headline, summary, category, main_image_url, created_at,
				total_sources, left_pct, center_pct, right_pct, blindspot
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`,
			toUUID(c.ID), toText(c.Headline), toText(c.Summary), toText(c.Category),
			toText(c.MainImageURL), toTimestamptz(c.CreatedAt), c.Stats.TotalSources,
			c.Stats.LeftPct, c.Stats.CenterPct, c.Stats.RightPct, toText(string(c.Stats.Blindspot)),
		); err != nil {
			return fmt.Errorf("insert cluster %s: %w", c.ID, err)
		}
	}

	return nil
}

func assignArticles(ctx context.Context, tx pgx.Tx, assignment map[string]string) error {
	for articleID, clusterID := range assignment {
		if _, err := tx.Exec(ctx, `
			UPDATE news_articles SET cluster_id = $1 WHERE id = $2
		`, toUUID(clusterID), toUUID(articleID)); err != nil {
			return fmt.Errorf("assign article %s to cluster %s: %w", articleID, clusterID, err)
		}
	}

	return nil
}

func scanArticles(rows pgx.Rows) ([]domain.Article, error) {
	var articles []domain.Article

	for rows.Next() {
		var (
			id, sourceID, sourceName, bias, factuality, headline, summary string
			url                                                           string
			imageURL                                                     pgtype.Text
			pubDate, fetchedAt                                           pgtype.Timestamptz
			clusterID                                                    pgtype.UUID
			embedding, entities                                          pgtype.Text
			rawID                                                        pgtype.UUID
		)

		if err := rows.Scan(
			&rawID, &sourceID, &sourceName, &bias, &factuality, &headline, &summary,
			&url, &imageURL, &pubDate, &fetchedAt, &clusterID, &embedding, &entities,
		); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}

		id = fromUUID(rawID)

		articles = append(articles, domain.Article{
			ID:         id,
			SourceID:   sourceID,
			SourceName: sourceName,
			BiasRating: domain.BiasRating(bias),
			Factuality: domain.Factuality(factuality),
			Headline:   headline,
			Summary:    summary,
			URL:        url,
			ImageURL:   fromText(imageURL),
			PubDate:    fromTimestamptz(pubDate),
			FetchedAt:  fromTimestamptz(fetchedAt),
			ClusterID:  fromUUID(clusterID),
			Embedding:  embeddingFromText(fromText(embedding)),
			Entities:   entitiesFromText(fromText(entities)),
		})
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate articles: %w", rows.Err())
	}

	return articles, nil
}

func scanCluster(rows pgx.Rows) (domain.Cluster, error) {
	var (
		id                                        pgtype.UUID
		headline, summary, category, mainImageURL pgtype.Text
		createdAt                                 pgtype.Timestamptz
		totalSources, leftPct, centerPct, rightPct int
		blindspot                                  pgtype.Text
	)

	if err := rows.Scan(
		&id, &headline, &summary, &category, &mainImageURL, &createdAt,
		&totalSources, &leftPct, &centerPct, &rightPct, &blindspot,
	); err != nil {
		return domain.Cluster{}, err
	}

	return domain.Cluster{
		ID:           fromUUID(id),
		Headline:     fromText(headline),
		Summary:      fromText(summary),
		Category:     fromText(category),
		MainImageURL: fromText(mainImageURL),
		CreatedAt:    fromTimestamptz(createdAt),
		Stats: domain.ClusterStats{
			TotalSources: totalSources,
			LeftPct:      leftPct,
			CenterPct:    centerPct,
			RightPct:     rightPct,
			Blindspot:    domain.Blindspot(fromText(blindspot)),
		},
	}, nil
}
