package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/civic-service-desk/internal/model"
)

// RequestRepo provides persistence for service requests. All timestamp
// fields are stored in UTC.
type RequestRepo struct{ DB *sql.DB }

func NewRequestRepo(db *sql.DB) *RequestRepo { return &RequestRepo{DB: db} }

const requestColumns = "id,user_id,service_type,description,location,exact_location,priority,status,image_path,created_at,updated_at"

type requestScanner interface{ Scan(dest ...any) error }

func scanRequest(row requestScanner, sr *model.ServiceRequest) error {
	var exact, image sql.NullString
	err := row.Scan(&sr.ID, &sr.UserID, &sr.ServiceType, &sr.Description, &sr.Location,
		&exact, &sr.Priority, &sr.Status, &image, &sr.CreatedAt, &sr.UpdatedAt)
	if err != nil {
		return err
	}
	if exact.Valid {
		v := exact.String
		sr.ExactLocation = &v
	}
	if image.Valid {
		v := image.String
		sr.ImagePath = &v
	}
	return nil
}

// Create inserts a new service request and populates the generated id,
// defaults and timestamps on the provided record by reading the row
// back.
func (r *RequestRepo) Create(ctx context.Context, sr *model.ServiceRequest) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO service_requests
		 (user_id, service_type, description, location, exact_location, priority, status, image_path)
		 VALUES (?,?,?,?,?,?,?,?)`,
		sr.UserID, sr.ServiceType, sr.Description, sr.Location,
		sr.ExactLocation, sr.Priority, sr.Status, sr.ImagePath)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	return scanRequest(r.DB.QueryRowContext(ctx,
		"SELECT "+requestColumns+" FROM service_requests WHERE id=?", uint64(id)), sr)
}

// ListByOwner returns all requests submitted by one user, newest first.
func (r *RequestRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.ServiceRequest, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+requestColumns+" FROM service_requests WHERE user_id=? ORDER BY created_at DESC, id DESC",
		ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.ServiceRequest{}
	for rows.Next() {
		var sr model.ServiceRequest
		if err := scanRequest(rows, &sr); err != nil {
			return nil, err
		}
		out = append(out, sr)
	}
	return out, rows.Err()
}

const detailColumns = `sr.id, sr.user_id, sr.service_type, sr.description, sr.location,
	sr.exact_location, sr.priority, sr.status, sr.image_path, sr.created_at, sr.updated_at,
	COALESCE(u.name,''), COALESCE(u.email,'')`

func scanDetail(row requestScanner, d *model.RequestDetail) error {
	var exact, image sql.NullString
	err := row.Scan(&d.ID, &d.UserID, &d.ServiceType, &d.Description, &d.Location,
		&exact, &d.Priority, &d.Status, &image, &d.CreatedAt, &d.UpdatedAt,
		&d.UserName, &d.UserEmail)
	if err != nil {
		return err
	}
	if exact.Valid {
		v := exact.String
		d.ExactLocation = &v
	}
	if image.Valid {
		v := image.String
		d.ImagePath = &v
	}
	return nil
}

// ListAll returns one page of requests across all users, newest first,
// joined with requester name and email, plus the total row count for
// the same filter. An empty status means no filter.
func (r *RequestRepo) ListAll(ctx context.Context, status model.Status, limit, offset int) ([]model.RequestDetail, int, error) {
	query := `SELECT ` + detailColumns + `
		FROM service_requests sr
		LEFT JOIN users u ON u.id = sr.user_id`
	countQuery := "SELECT COUNT(*) FROM service_requests sr"
	args := []any{}
	countArgs := []any{}
	if status != "" {
		query += " WHERE sr.status=?"
		countQuery += " WHERE sr.status=?"
		args = append(args, status)
		countArgs = append(countArgs, status)
	}
	query += " ORDER BY sr.created_at DESC, sr.id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []model.RequestDetail{}
	for rows.Next() {
		var d model.RequestDetail
		if err := scanDetail(rows, &d); err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// GetDetailByID fetches a single request joined with the requester's
// name and email, as shown on the triage detail view. Returns
// ErrNotFound when no row exists.
func (r *RequestRepo) GetDetailByID(ctx context.Context, id uint64) (model.RequestDetail, error) {
	var d model.RequestDetail
	err := scanDetail(r.DB.QueryRowContext(ctx,
		`SELECT `+detailColumns+`
		FROM service_requests sr
		LEFT JOIN users u ON u.id = sr.user_id
		WHERE sr.id=?`, id), &d)
	if err == sql.ErrNoRows {
		return model.RequestDetail{}, ErrNotFound
	}
	return d, err
}

// GetByID fetches a single request. Returns ErrNotFound when no row
// exists.
func (r *RequestRepo) GetByID(ctx context.Context, id uint64) (model.ServiceRequest, error) {
	var sr model.ServiceRequest
	err := scanRequest(r.DB.QueryRowContext(ctx,
		"SELECT "+requestColumns+" FROM service_requests WHERE id=?", id), &sr)
	if err == sql.ErrNoRows {
		return model.ServiceRequest{}, ErrNotFound
	}
	return sr, err
}

// UpdateStatusFrom applies a status change as a single conditional
// statement: the WHERE clause re-checks the status the caller validated
// against, so a lost update under concurrent admin edits shows up as
// zero affected rows rather than a silent overwrite.
func (r *RequestRepo) UpdateStatusFrom(ctx context.Context, id uint64, from, to model.Status, at time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE service_requests SET status=?, updated_at=? WHERE id=? AND status=?",
		to, at, id, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *RequestRepo) countByStatus(ctx context.Context, query string, args ...any) (map[model.Status]int, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[model.Status]int{}
	for rows.Next() {
		var s model.Status
		var n int
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		out[s] = n
	}
	return out, rows.Err()
}

// CountByStatus returns global request counts grouped by status.
func (r *RequestRepo) CountByStatus(ctx context.Context) (map[model.Status]int, error) {
	return r.countByStatus(ctx,
		"SELECT status, COUNT(*) FROM service_requests GROUP BY status")
}

// CountByStatusForOwner returns one user's request counts grouped by
// status.
func (r *RequestRepo) CountByStatusForOwner(ctx context.Context, ownerID uint64) (map[model.Status]int, error) {
	return r.countByStatus(ctx,
		"SELECT status, COUNT(*) FROM service_requests WHERE user_id=? GROUP BY status", ownerID)
}
