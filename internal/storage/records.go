package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/paycapture/internal/model"
	"github.com/Veraticus/paycapture/internal/service"
)

// SaveRecord inserts an expense record and sets its ID.
func (s *SQLiteStorage) SaveRecord(ctx context.Context, record *model.Record) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRecord(record); err != nil {
		return err
	}
	if strings.TrimSpace(record.Category) == "" {
		record.Category = model.DefaultCategory
	}

	return s.withRetry(ctx, func() error {
		return s.saveRecordTx(ctx, s.db, record)
	})
}

func (s *SQLiteStorage) saveRecordTx(ctx context.Context, q queryable, record *model.Record) error {
	var prefillID any
	if record.PrefillID != "" {
		prefillID = record.PrefillID
	}

	result, err := q.ExecContext(ctx, `
		INSERT INTO records (amount, category, note, timestamp, source, payment_app, prefill_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		record.Amount.StringFixed(2),
		record.Category,
		record.Note,
		record.Timestamp.UTC(),
		string(record.Source),
		record.PaymentApp,
		prefillID,
	)
	if err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get record ID: %w", err)
	}
	record.ID = id

	return nil
}

// GetRecords returns expense records, newest first.
func (s *SQLiteStorage) GetRecords(ctx context.Context, filter service.RecordFilter) ([]model.Record, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateDateRange(filter.StartDate, filter.EndDate); err != nil {
		return nil, err
	}

	var (
		conditions []string
		args       []any
	)
	if filter.StartDate != nil {
		conditions = append(conditions, "timestamp >= ?")
		args = append(args, filter.StartDate.UTC())
	}
	if filter.EndDate != nil {
		conditions = append(conditions, "timestamp <= ?")
		args = append(args, filter.EndDate.UTC())
	}

	query := `
		SELECT id, amount, category, note, timestamp, source, payment_app, COALESCE(prefill_id, '')
		FROM records`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY timestamp DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.Record
	for rows.Next() {
		var (
			record model.Record
			source string
		)
		if err := rows.Scan(
			&record.ID,
			&record.Amount,
			&record.Category,
			&record.Note,
			&record.Timestamp,
			&source,
			&record.PaymentApp,
			&record.PrefillID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		record.Source = model.RecordSource(source)
		records = append(records, record)
	}

	return records, rows.Err()
}
