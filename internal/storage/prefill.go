package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/paycapture/internal/common"
	"github.com/Veraticus/paycapture/internal/model"
	"github.com/Veraticus/paycapture/internal/service"
)

const prefillColumns = `id, source_id, source_label, source, amount, note, title, summary, detail,
	request_code, status, created_at`

// Present stores the request in the inbox, so the storage can stand in for a
// presenter when no interactive surface is available.
func (s *SQLiteStorage) Present(ctx context.Context, req model.PrefillRequest) error {
	return s.SavePrefillRequest(ctx, &req)
}

// SavePrefillRequest inserts a prefill request. A missing ID is generated and
// a missing status defaults to pending.
func (s *SQLiteStorage) SavePrefillRequest(ctx context.Context, req *model.PrefillRequest) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validatePrefillRequest(req); err != nil {
		return err
	}

	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Status == "" {
		req.Status = model.PrefillPending
	}
	if req.Source == "" {
		req.Source = model.CaptureSourceAuto
	}

	err := s.withRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO prefill_requests (`+prefillColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			req.ID,
			req.SourceID,
			req.SourceLabel,
			req.Source,
			req.Amount.StringFixed(2),
			req.Note,
			req.Title,
			req.Summary,
			req.Detail,
			req.RequestCode,
			string(req.Status),
			req.CreatedAt.UTC(),
		)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: prefill request %s", common.ErrDuplicateEntry, req.ID)
		}
		return fmt.Errorf("failed to save prefill request: %w", err)
	}

	return nil
}

// GetPrefillRequest retrieves a prefill request by ID.
func (s *SQLiteStorage) GetPrefillRequest(ctx context.Context, id string) (*model.PrefillRequest, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	return s.getPrefillRequestTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getPrefillRequestTx(ctx context.Context, q queryable, id string) (*model.PrefillRequest, error) {
	row := q.QueryRowContext(ctx, `SELECT `+prefillColumns+` FROM prefill_requests WHERE id = ?`, id)

	req, err := scanPrefillRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: prefill request %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prefill request: %w", err)
	}
	return req, nil
}

// ListPrefillRequests returns prefill requests, newest first.
func (s *SQLiteStorage) ListPrefillRequests(ctx context.Context, filter service.PrefillFilter) ([]model.PrefillRequest, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, filter.Status)
	}

	var (
		conditions []string
		args       []any
	)
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(filter.Status))
	}

	query := `SELECT ` + prefillColumns + ` FROM prefill_requests`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query prefill requests: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var requests []model.PrefillRequest
	for rows.Next() {
		req, err := scanPrefillRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prefill request: %w", err)
		}
		requests = append(requests, *req)
	}

	return requests, rows.Err()
}

// ConfirmPrefillRequest turns a pending prefill request into an AUTO expense
// record dated at. An empty category falls back to the default category.
func (s *SQLiteStorage) ConfirmPrefillRequest(ctx context.Context, id, category string, at time.Time) (*model.Record, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	if strings.TrimSpace(category) == "" {
		category = model.DefaultCategory
	}

	var record *model.Record
	err := s.withRetry(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		req, err := s.getPrefillRequestTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if req.Status != model.PrefillPending {
			return fmt.Errorf("%w: %s is %s", ErrPrefillNotPending, id, req.Status)
		}

		r := &model.Record{
			Timestamp:  at,
			Amount:     req.Amount,
			Category:   category,
			Note:       req.Note,
			Source:     model.RecordSource(req.Source),
			PaymentApp: req.SourceLabel,
			PrefillID:  req.ID,
		}
		if err := validateRecord(r); err != nil {
			return err
		}
		if err := s.saveRecordTx(ctx, tx, r); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE prefill_requests SET status = ? WHERE id = ?`,
			string(model.PrefillConfirmed), id,
		); err != nil {
			return fmt.Errorf("failed to update prefill status: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return err
		}
		record = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

// DismissPrefillRequest marks a pending prefill request as dismissed.
func (s *SQLiteStorage) DismissPrefillRequest(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	return s.withRetry(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		req, err := s.getPrefillRequestTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if req.Status != model.PrefillPending {
			return fmt.Errorf("%w: %s is %s", ErrPrefillNotPending, id, req.Status)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE prefill_requests SET status = ? WHERE id = ?`,
			string(model.PrefillDismissed), id,
		); err != nil {
			return fmt.Errorf("failed to update prefill status: %w", err)
		}

		return tx.Commit()
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPrefillRequest(row rowScanner) (*model.PrefillRequest, error) {
	var (
		req    model.PrefillRequest
		status string
	)

	if err := row.Scan(
		&req.ID,
		&req.SourceID,
		&req.SourceLabel,
		&req.Source,
		&req.Amount,
		&req.Note,
		&req.Title,
		&req.Summary,
		&req.Detail,
		&req.RequestCode,
		&status,
		&req.CreatedAt,
	); err != nil {
		return nil, err
	}

	req.Status = model.PrefillStatus(status)
	return &req, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
