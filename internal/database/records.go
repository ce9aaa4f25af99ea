package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"footage-tracker/internal/metrics"
)

// ErrNotFound is returned when a referenced record id does not exist.
var ErrNotFound = errors.New("file record not found")

// SearchOptions are the filters for SearchFiles. Zero-valued fields are
// unconstrained; supplied filters are AND-composed.
type SearchOptions struct {
	Filename  string
	Directory string
	FileType  string
	Limit     int
}

const recordColumns = "id, path, filename, parent_directory, file_type, size_bytes, created_at, discovered_at, processed, processed_at, is_directory"

// InsertFileRecord inserts a record keyed on path with insert-if-absent
// semantics: if the path is already tracked the call is a no-op and no field
// is refreshed. Returns whether a new row was created.
func (d *Database) InsertFileRecord(ctx context.Context, rec *FileRecord) (bool, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("insert_file_record", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := d.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO files
			(path, filename, parent_directory, file_type, size_bytes, created_at, is_directory)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		rec.Path,
		rec.Filename,
		rec.ParentDirectory,
		string(rec.FileType),
		rec.SizeBytes,
		rec.CreatedAt.Unix(),
		rec.IsDirectory,
	)
	if err != nil {
		return false, fmt.Errorf("insert failed for %s: %w", rec.Path, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// GetFileByID retrieves a single record by id. Returns ErrNotFound when the
// id is not tracked.
func (d *Database) GetFileByID(ctx context.Context, id int64) (*FileRecord, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_file_by_id", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := d.db.QueryRowContext(ctx, "SELECT "+recordColumns+" FROM files WHERE id = ?", id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// GetFileByPath retrieves a single record by its path, the natural key.
func (d *Database) GetFileByPath(ctx context.Context, path string) (*FileRecord, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_file_by_path", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := d.db.QueryRowContext(ctx, "SELECT "+recordColumns+" FROM files WHERE path = ?", path)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// UnprocessedFiles returns up to limit non-directory records with
// processed = false, oldest-discovered first (FIFO queue order), optionally
// filtered by file type. The id tiebreak keeps ordering stable for records
// discovered within the same second.
func (d *Database) UnprocessedFiles(ctx context.Context, limit int, fileType string) ([]FileRecord, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("unprocessed_files", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := "SELECT " + recordColumns + " FROM files WHERE processed = 0 AND is_directory = 0"
	args := []interface{}{}

	if fileType != "" {
		query += " AND file_type = ?"
		args = append(args, fileType)
	}

	query += " ORDER BY discovered_at ASC, id ASC LIMIT ?"
	args = append(args, limit)

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("unprocessed query failed: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// SearchFiles returns up to opts.Limit non-directory records matching all
// supplied filters, newest-discovered first. Filename and directory match by
// substring, file type exactly.
func (d *Database) SearchFiles(ctx context.Context, opts SearchOptions) ([]FileRecord, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("search_files", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := "SELECT " + recordColumns + " FROM files WHERE is_directory = 0"
	args := []interface{}{}

	if opts.Filename != "" {
		query += " AND filename LIKE ?"
		args = append(args, "%"+opts.Filename+"%")
	}
	if opts.Directory != "" {
		query += " AND parent_directory LIKE ?"
		args = append(args, "%"+opts.Directory+"%")
	}
	if opts.FileType != "" {
		query += " AND file_type = ?"
		args = append(args, opts.FileType)
	}

	query += " ORDER BY discovered_at DESC, id DESC LIMIT ?"
	args = append(args, opts.Limit)

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query failed: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// CalculateStats computes ledger statistics as several independent aggregate
// reads. There is no shared snapshot: a write landing between sub-queries can
// make the counts mutually inconsistent at the margins, which is accepted.
func (d *Database) CalculateStats(ctx context.Context) (Stats, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("calculate_stats", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	stats := Stats{ByType: make(map[string]int)}

	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM files WHERE is_directory = 0", &stats.TotalFiles},
		{"SELECT COUNT(*) FROM files WHERE is_directory = 1", &stats.TotalDirectories},
		{"SELECT COUNT(*) FROM files WHERE processed = 1 AND is_directory = 0", &stats.ProcessedFiles},
		{"SELECT COUNT(*) FROM files WHERE processed = 0 AND is_directory = 0", &stats.UnprocessedFiles},
	}

	for _, q := range counts {
		if err = d.db.QueryRowContext(ctx, q.query).Scan(q.dest); err != nil {
			return stats, err
		}
	}

	rows, err := d.db.QueryContext(ctx, "SELECT file_type, COUNT(*) FROM files WHERE is_directory = 0 GROUP BY file_type")
	if err != nil {
		return stats, err
	}
	defer rows.Close()

	for rows.Next() {
		var fileType string
		var count int
		if err = rows.Scan(&fileType, &count); err != nil {
			return stats, err
		}
		stats.ByType[fileType] = count
	}
	if err = rows.Err(); err != nil {
		return stats, err
	}

	var totalBytes sql.NullInt64
	if err = d.db.QueryRowContext(ctx, "SELECT SUM(size_bytes) FROM files WHERE is_directory = 0").Scan(&totalBytes); err != nil {
		return stats, err
	}
	stats.TotalSizeMB = math.Round(float64(totalBytes.Int64)/(1024*1024)*100) / 100

	return stats, nil
}

// CollectorStats implements metrics.StatsProvider. Errors are swallowed: a
// failed refresh leaves the gauges at their previous values.
func (d *Database) CollectorStats() metrics.Stats {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	stats, err := d.CalculateStats(ctx)
	if err != nil {
		return metrics.Stats{}
	}

	var totalBytes sql.NullInt64
	_ = d.db.QueryRowContext(ctx, "SELECT SUM(size_bytes) FROM files WHERE is_directory = 0").Scan(&totalBytes)

	return metrics.Stats{
		TotalFiles:       stats.TotalFiles,
		TotalDirectories: stats.TotalDirectories,
		ProcessedFiles:   stats.ProcessedFiles,
		UnprocessedFiles: stats.UnprocessedFiles,
		ByType:           stats.ByType,
		TotalSizeBytes:   totalBytes.Int64,
	}
}

// MarkProcessed transitions the record with the given id to processed and
// stamps processed_at. Returns ErrNotFound when no record has that id.
// Re-invoking on an already-processed id succeeds again; beyond a possibly
// updated processed_at there is no observable change, so callers should treat
// the operation as idempotent in effect.
func (d *Database) MarkProcessed(ctx context.Context, id int64) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("mark_processed", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := d.db.ExecContext(ctx, `
		UPDATE files
		SET processed = 1, processed_at = strftime('%s', 'now')
		WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("mark processed failed for id %d: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		err = ErrNotFound
		return err
	}

	metrics.ProcessingMarksTotal.Inc()
	return nil
}

// MarkProcessedBatch applies the processed transition to every existing id in
// the set; unknown ids are silently skipped. Returns the number of rows
// actually changed.
func (d *Database) MarkProcessedBatch(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	start := time.Now()
	var err error
	defer func() { recordQuery("mark_processed_batch", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	result, err := d.db.ExecContext(ctx, fmt.Sprintf(`
		UPDATE files
		SET processed = 1, processed_at = strftime('%%s', 'now')
		WHERE id IN (%s)
	`, placeholders), args...)
	if err != nil {
		return 0, fmt.Errorf("batch mark processed failed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	metrics.ProcessingMarksTotal.Add(float64(rows))
	return rows, nil
}

// UnprocessedIDs returns up to limit ids of unprocessed, non-directory
// records. Selection order is unspecified; callers must not rely on it.
func (d *Database) UnprocessedIDs(ctx context.Context, limit int) ([]int64, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("unprocessed_ids", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, `
		SELECT id FROM files
		WHERE processed = 0 AND is_directory = 0
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("unprocessed ids query failed: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// scanner abstracts *sql.Row and *sql.Rows for scanRecord.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*FileRecord, error) {
	var rec FileRecord
	var createdAt, discoveredAt int64
	var processedAt sql.NullInt64

	err := row.Scan(
		&rec.ID, &rec.Path, &rec.Filename, &rec.ParentDirectory,
		&rec.FileType, &rec.SizeBytes, &createdAt, &discoveredAt,
		&rec.Processed, &processedAt, &rec.IsDirectory,
	)
	if err != nil {
		return nil, err
	}

	rec.CreatedAt = time.Unix(createdAt, 0).UTC()
	rec.DiscoveredAt = time.Unix(discoveredAt, 0).UTC()
	if processedAt.Valid {
		t := time.Unix(processedAt.Int64, 0).UTC()
		rec.ProcessedAt = &t
	}
	return &rec, nil
}

func collectRecords(rows *sql.Rows) ([]FileRecord, error) {
	records := []FileRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return records, nil
}
