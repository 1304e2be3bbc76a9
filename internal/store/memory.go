package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/indiabias/newsbias-pipeline/internal/domain"
)

func durationHours(hours int) time.Duration {
	return time.Duration(hours) * time.Hour
}

// MemoryStore is the in-process fallback Store used when DB_PATH is
// unset or unreachable. It satisfies the Store interface with
// plain maps guarded by a mutex; state does not survive a restart.
type MemoryStore struct {
	mu       sync.Mutex
	articles map[string]domain.Article
	clusters map[string]domain.Cluster
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		articles: make(map[string]domain.Article),
		clusters: make(map[string]domain.Cluster),
	}
}

// Ping always succeeds; the in-process store has no external dependency
// to check.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) SelectUnclustered(ctx context.Context, maxAgeHours, limit int) ([]domain.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := Clock().Add(-durationHours(maxAgeHours))

	var out []domain.Article

	for _, a := range s.articles {
		if a.ClusterID == "" && a.PubDate.After(cutoff) {
			out = append(out, a)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].PubDate.Before(out[j].PubDate) })

	if len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func (s *MemoryStore) PersistEnrichment(ctx context.Context, articles []domain.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range articles {
		existing, ok := s.articles[a.ID]
		if !ok {
			continue
		}

		existing.Embedding = a.Embedding
		existing.Entities = a.Entities
		s.articles[a.ID] = existing
	}

	return nil
}

func (s *MemoryStore) LoadRecentClusters(ctx context.Context, maxAgeHours int) ([]domain.Cluster, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := Clock().Add(-durationHours(maxAgeHours))

	var out []domain.Cluster

	for _, c := range s.clusters {
		if c.CreatedAt.After(cutoff) {
			out = append(out, c)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	return out, nil
}

func (s *MemoryStore) LoadClusterArticles(ctx context.Context, clusterID string) ([]domain.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Article

	for _, a := range s.articles {
		if a.ClusterID == clusterID {
			out = append(out, a)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].PubDate.Before(out[j].PubDate) })

	return out, nil
}

func (s *MemoryStore) CommitClusters(ctx context.Context, clusters []domain.Cluster, assignment map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.insertClustersLocked(clusters)
	s.assignArticlesLocked(assignment)

	return nil
}

func (s *MemoryStore) SplitCluster(ctx context.Context, oldID string, replacements []domain.Cluster, assignment map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clusters[oldID]; !ok {
		return nil
	}

	delete(s.clusters, oldID)
	s.insertClustersLocked(replacements)
	s.assignArticlesLocked(assignment)

	return nil
}

func (s *MemoryStore) UpsertArticles(ctx context.Context, articles []domain.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byURL := make(map[string]string, len(s.articles))
	for id, a := range s.articles {
		byURL[a.URL] = id
	}

	for _, a := range articles {
		if existingID, ok := byURL[a.URL]; ok {
			existing := s.articles[existingID]
			existing.Headline = a.Headline
			existing.FetchedAt = a.FetchedAt

			if existing.ImageURL == "" {
				existing.ImageURL = a.ImageURL
			}

			s.articles[existingID] = existing

			continue
		}

		s.articles[a.ID] = a
	}

	return nil
}

func (s *MemoryStore) insertClustersLocked(clusters []domain.Cluster) {
	for _, c := range clusters {
		s.clusters[c.ID] = c
	}
}

func (s *MemoryStore) assignArticlesLocked(assignment map[string]string) {
	for articleID, clusterID := range assignment {
		a, ok := s.articles[articleID]
		if !ok {
			continue
		}

		a.ClusterID = clusterID
		s.articles[articleID] = a
	}
}
