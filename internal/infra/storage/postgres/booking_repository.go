package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/internal/infra/storage"
	"github.com/m04kA/SMC-AvailabilityService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AvailabilityService/pkg/psqlbuilder"
)

var bookingColumns = []string{
	"id",
	"slot_id",
	"site_id",
	"org_id",
	"client_name",
	"client_email",
	"client_phone",
	"note",
	"staff_notes",
	"start_time",
	"end_time",
	"status",
	"rev",
	"confirmed_at",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// BookingRepository реляционная реализация storage.BookingStore
type BookingRepository struct {
	db DBExecutor
}

// NewBookingRepository создает новый экземпляр репозитория бронирований
func NewBookingRepository(db DBExecutor) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create сохраняет новое бронирование с начальной ревизией 1
func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	booking.Rev = 1

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(bookingColumns...).
		Values(
			booking.ID,
			booking.SlotID,
			booking.SiteID,
			booking.OrgID,
			booking.ClientName,
			booking.ClientEmail,
			booking.ClientPhone,
			booking.Note,
			booking.StaffNotes,
			booking.StartTime,
			booking.EndTime,
			booking.Status,
			booking.Rev,
			booking.ConfirmedAt,
			booking.CancelledAt,
			booking.CreatedAt,
			booking.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return nil
}

// GetByID получает бронирование по ID
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, storage.ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %w", ErrScanRow, err)
	}

	return booking, nil
}

// ListBySlot возвращает бронирования слота, опционально отфильтрованные по статусам
func (r *BookingRepository) ListBySlot(ctx context.Context, slotID string, statuses []domain.BookingStatus) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"slot_id": slotID}).
		OrderBy("created_at ASC")

	if len(statuses) > 0 {
		statusStrings := make([]string, len(statuses))
		for i, s := range statuses {
			statusStrings[i] = string(s)
		}
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": statusStrings})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListBySlot - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListBySlot - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListBySlot - scan row: %w", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListBySlot - rows error: %w", ErrScanRow, err)
	}

	return bookings, nil
}

// UpdateRevisioned условная запись бронирования по ревизии
func (r *BookingRepository) UpdateRevisioned(ctx context.Context, booking *domain.Booking) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", booking.Status).
		Set("staff_notes", booking.StaffNotes).
		Set("confirmed_at", booking.ConfirmedAt).
		Set("cancelled_at", booking.CancelledAt).
		Set("rev", booking.Rev+1).
		Set("updated_at", booking.UpdatedAt).
		Where(squirrel.Eq{"id": booking.ID, "rev": booking.Rev}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateRevisioned - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateRevisioned - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateRevisioned - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		if _, err := r.GetByID(ctx, booking.ID); err != nil {
			return err
		}
		return storage.ErrRevisionConflict
	}

	booking.Rev++
	return nil
}

func scanBooking(row scanner) (*domain.Booking, error) {
	var booking domain.Booking
	var confirmedAt, cancelledAt sql.NullTime
	var createdAt, updatedAt time.Time

	err := row.Scan(
		&booking.ID,
		&booking.SlotID,
		&booking.SiteID,
		&booking.OrgID,
		&booking.ClientName,
		&booking.ClientEmail,
		&booking.ClientPhone,
		&booking.Note,
		&booking.StaffNotes,
		&booking.StartTime,
		&booking.EndTime,
		&booking.Status,
		&booking.Rev,
		&confirmedAt,
		&cancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if confirmedAt.Valid {
		booking.ConfirmedAt = &confirmedAt.Time
	}
	if cancelledAt.Valid {
		booking.CancelledAt = &cancelledAt.Time
	}
	booking.CreatedAt = createdAt
	booking.UpdatedAt = updatedAt

	return &booking, nil
}
