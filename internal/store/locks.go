package store

import (
	"context"
	"fmt"
)

// refinerLockID namespaces the CoherenceRefiner's advisory lock away from
// migrationLockID so the two never collide.
const refinerLockID = 8421

// TryAcquireRefinerLock attempts the non-blocking advisory lock the
// CoherenceRefiner holds for the duration of a refine pass, preventing
// two processes from refining concurrently.
func (s *PostgresStore) TryAcquireRefinerLock(ctx context.Context) (bool, error) {
	var acquired bool

	if err := s.Pool.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", refinerLockID).Scan(&acquired); err != nil {
		return false, fmt.Errorf("try acquire refiner lock: %w", err)
	}

	return acquired, nil
}

func (s *PostgresStore) ReleaseRefinerLock(ctx context.Context) error {
	if _, err := s.Pool.Exec(ctx, "SELECT pg_advisory_unlock($1)", refinerLockID); err != nil {
		return fmt.Errorf("release refiner lock: %w", err)
	}

	return nil
}

func (s *MemoryStore) TryAcquireRefinerLock(ctx context.Context) (bool, error) {
	return true, nil
}

func (s *MemoryStore) ReleaseRefinerLock(ctx context.Context) error {
	return nil
}
