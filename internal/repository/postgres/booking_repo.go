package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"roombooking/internal/domain"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type BookingRepository struct {
	DB *sql.DB
}

func NewBookingRepository(db *sql.DB) domain.BookingRepository {
	return &BookingRepository{DB: db}
}

const bookingColumns = `b.id, b.room_id, r.name, COALESCE(b.title, ''), b.booked_by, b.booking_date, b.start_time, b.end_time, b.created_at`

const findOverlappingQuery = `
	SELECT ` + bookingColumns + `
	FROM bookings b
	JOIN rooms r ON r.id = b.room_id
	WHERE b.room_id = $1
	  AND b.booking_date = $2
	  AND b.start_time < $4
	  AND b.end_time > $3
	  AND ($5 = '' OR b.id::text <> $5)
	LIMIT 1
`

// FindOverlapping returns a booking of the room on date whose window intersects [start, end), or nil.
func (r *BookingRepository) FindOverlapping(ctx context.Context, roomID string, date civil.Date, start, end civil.Time, excludeID string) (*domain.Booking, error) {
	return findOverlapping(ctx, r.DB, roomID, date, start, end, excludeID)
}

func findOverlapping(ctx context.Context, q querier, roomID string, date civil.Date, start, end civil.Time, excludeID string) (*domain.Booking, error) {
	b, err := scanBooking(q.QueryRowContext(ctx, findOverlappingQuery, roomID, dateArg(date), start.String(), end.String(), excludeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return b, nil
}

// Create locks the room row, re-checks for overlaps and inserts in one transaction.
// The bookings_no_overlap exclusion constraint backs this up for writers that bypass the lock.
func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var roomName string
	err = tx.QueryRowContext(ctx, `SELECT name FROM rooms WHERE id = $1 FOR UPDATE`, b.RoomID).Scan(&roomName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || pqCode(err) == pqInvalidTextRep {
			return domain.ErrRoomNotFound
		}
		return err
	}

	existing, err := findOverlapping(ctx, tx, b.RoomID, b.BookingDate, b.StartTime, b.EndTime, "")
	if err != nil {
		return err
	}
	if existing != nil {
		return &domain.ConflictError{Existing: existing}
	}

	query := `
		INSERT INTO bookings (room_id, title, booked_by, booking_date, start_time, end_time)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err = tx.QueryRowContext(ctx, query, b.RoomID, b.Title, b.BookedBy, dateArg(b.BookingDate), b.StartTime.String(), b.EndTime.String()).
		Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		switch pqCode(err) {
		case pqExclusionViolation:
			// A writer that bypassed the room lock won the race; report its booking.
			_ = tx.Rollback()
			existing, ferr := findOverlapping(ctx, r.DB, b.RoomID, b.BookingDate, b.StartTime, b.EndTime, "")
			if ferr != nil {
				return &domain.ConflictError{}
			}
			return &domain.ConflictError{Existing: existing}
		case pqForeignKeyViolation:
			return domain.ErrRoomNotFound
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit booking: %w", err)
	}
	b.RoomName = roomName
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		if pqCode(err) == pqInvalidTextRep {
			return false, nil
		}
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings b
		JOIN rooms r ON r.id = b.room_id
		WHERE b.id = $1
	`
	b, err := scanBooking(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || pqCode(err) == pqInvalidTextRep {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// List returns bookings ordered by date then start time. The total is the number of
// matching rows before pagination.
func (r *BookingRepository) List(ctx context.Context, filter domain.BookingFilter) ([]*domain.Booking, int, error) {
	var (
		where []string
		args  []any
	)
	if filter.RoomID != "" {
		args = append(args, filter.RoomID)
		where = append(where, fmt.Sprintf("b.room_id::text = $%d", len(args)))
	}
	if filter.Date != nil {
		args = append(args, dateArg(*filter.Date))
		where = append(where, fmt.Sprintf("b.booking_date = $%d", len(args)))
	}

	query := `
		SELECT ` + bookingColumns + `, COUNT(*) OVER() AS total
		FROM bookings b
		JOIN rooms r ON r.id = b.room_id`
	if len(where) > 0 {
		query += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	query += "\n\t\tORDER BY b.booking_date, b.start_time, b.id"
	if p := filter.Pagination; p.PageSize > 0 {
		args = append(args, p.PageSize, p.Offset())
		query += fmt.Sprintf("\n\t\tLIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var (
		bookings []*domain.Booking
		total    int
	)
	for rows.Next() {
		var (
			b                domain.Booking
			date, start, end time.Time
		)
		if err := rows.Scan(&b.ID, &b.RoomID, &b.RoomName, &b.Title, &b.BookedBy, &date, &start, &end, &b.CreatedAt, &total); err != nil {
			return nil, 0, err
		}
		setCivil(&b, date, start, end)
		bookings = append(bookings, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(bookings) == 0 && filter.Pagination.Offset() > 0 {
		// Window functions see no rows past the last page.
		if err := r.count(ctx, where, args[:len(args)-2], &total); err != nil {
			return nil, 0, err
		}
	}
	return bookings, total, nil
}

func (r *BookingRepository) count(ctx context.Context, where []string, args []any, total *int) error {
	query := `SELECT COUNT(*) FROM bookings b`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	return r.DB.QueryRowContext(ctx, query, args...).Scan(total)
}

func scanBooking(row *sql.Row) (*domain.Booking, error) {
	var (
		b                domain.Booking
		date, start, end time.Time
	)
	if err := row.Scan(&b.ID, &b.RoomID, &b.RoomName, &b.Title, &b.BookedBy, &date, &start, &end, &b.CreatedAt); err != nil {
		return nil, err
	}
	setCivil(&b, date, start, end)
	return &b, nil
}

// setCivil converts the driver's DATE and TIME values, which lib/pq returns as time.Time.
func setCivil(b *domain.Booking, date, start, end time.Time) {
	b.BookingDate = civil.DateOf(date)
	b.StartTime = civil.TimeOf(start)
	b.EndTime = civil.TimeOf(end)
}

func dateArg(d civil.Date) time.Time {
	return d.In(time.UTC)
}
