package store

import (
	"database/sql"
	"time"
)

// Detection is one recorded selection result.
type Detection struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Frame     uint64    `json:"frame"`
	X         float64   `json:"cx"`
	Y         float64   `json:"cy"`
	BlobCount int       `json:"blob_count"`
	Tier      string    `json:"tier"`
	TxOK      bool      `json:"tx_ok"`
	CreatedAt time.Time `json:"created_at"`
}

// DetectionRepository provides access to recorded detections.
type DetectionRepository struct {
	db *sql.DB
}

// Detections returns the detection repository for this store.
func (s *Store) Detections() *DetectionRepository {
	return &DetectionRepository{db: s.db}
}

// Insert stores a detection and sets its ID and CreatedAt.
func (r *DetectionRepository) Insert(d *Detection) error {
	d.CreatedAt = time.Now()

	result, err := r.db.Exec(
		`INSERT INTO detections (session_id, frame, cx, cy, blob_count, tier, tx_ok, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.SessionID, int64(d.Frame), d.X, d.Y, d.BlobCount, d.Tier, d.TxOK, d.CreatedAt,
	)
	if err != nil {
		return err
	}

	d.ID, err = result.LastInsertId()
	return err
}

// ListBySession returns the most recent detections of a session, newest first.
// A non-positive limit returns every detection.
func (r *DetectionRepository) ListBySession(sessionID string, limit int) ([]*Detection, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.Query(
		`SELECT id, session_id, frame, cx, cy, blob_count, tier, tx_ok, created_at
		 FROM detections WHERE session_id = ? ORDER BY frame DESC, id DESC LIMIT ?`,
		sessionID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var detections []*Detection
	for rows.Next() {
		d := &Detection{}
		var frame int64
		if err := rows.Scan(&d.ID, &d.SessionID, &frame, &d.X, &d.Y, &d.BlobCount, &d.Tier, &d.TxOK, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.Frame = uint64(frame)
		detections = append(detections, d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return detections, nil
}

// CountByTier returns how many detections of a session fell into each tier.
// Tiers with no detections are absent from the map.
func (r *DetectionRepository) CountByTier(sessionID string) (map[string]int, error) {
	rows, err := r.db.Query(
		`SELECT tier, COUNT(*) FROM detections WHERE session_id = ? GROUP BY tier`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var tier string
		var n int
		if err := rows.Scan(&tier, &n); err != nil {
			return nil, err
		}
		counts[tier] = n
	}

	return counts, rows.Err()
}
