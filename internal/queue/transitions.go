package queue

import (
	"context"
	"fmt"
	"time"
)

// ResetStuckProcessing returns items stranded in an in-flight status to
// pending so workers pick them up again. Items only stay in probing or
// extracting while a process is actively working on them, so any such row
// found at startup belongs to a run that died mid-title.
func (s *Store) ResetStuckProcessing(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE titles SET status = ?, error_message = '', updated_at = ?
         WHERE status IN (?, ?)`,
		StatusPending,
		time.Now().UTC().Format(time.RFC3339Nano),
		StatusProbing,
		StatusExtracting,
	)
	if err != nil {
		return 0, fmt.Errorf("reset stuck items: %w", err)
	}
	return res.RowsAffected()
}
