package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"holdem-core/internal/actionlog"
)

// AppendArchive stores log entries that left a table's live window. Entries
// already stored are skipped, so retries are safe.
func (s *Store) AppendArchive(ctx context.Context, tableID string, entries []actionlog.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, e := range entries {
		payload, err := json.Marshal(e.Item)
		if err != nil {
			return fmt.Errorf("encode seq %d: %w", e.Seq, err)
		}
		batch.Queue(
			`INSERT INTO table_log_archive (table_id, seq, kind, payload)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (table_id, seq) DO NOTHING`,
			tableID, int64(e.Seq), string(e.Item.Kind()), payload,
		)
	}
	return s.Pool.SendBatch(ctx, batch).Close()
}

// ListArchive returns archived entries with seq greater than afterSeq.
func (s *Store) ListArchive(ctx context.Context, tableID string, afterSeq uint64, limit int) ([]actionlog.Entry, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := s.Pool.Query(ctx,
		`SELECT seq, kind, payload FROM table_log_archive
		 WHERE table_id = $1 AND seq > $2
		 ORDER BY seq
		 LIMIT $3`,
		tableID, int64(afterSeq), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []actionlog.Entry
	for rows.Next() {
		var (
			seq     int64
			kind    string
			payload []byte
		)
		if err := rows.Scan(&seq, &kind, &payload); err != nil {
			return nil, err
		}
		item, err := actionlog.DecodeItem(actionlog.Kind(kind), payload)
		if err != nil {
			return nil, fmt.Errorf("decode seq %d: %w", seq, err)
		}
		out = append(out, actionlog.Entry{Seq: uint64(seq), Item: item})
	}
	return out, rows.Err()
}
