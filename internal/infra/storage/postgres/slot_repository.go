package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/internal/infra/storage"
	"github.com/m04kA/SMC-AvailabilityService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AvailabilityService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

// uniqueViolation код ошибки Postgres при нарушении уникальности
const uniqueViolation = "23505"

var slotColumns = []string{
	"id",
	"org_id",
	"site_id",
	"start_time",
	"end_time",
	"day_of_week",
	"recurrence",
	"specific_date",
	"recurrence_end_date",
	"capacity",
	"booked_count",
	"duration_minutes",
	"buffer_minutes",
	"status",
	"rev",
	"created_at",
	"updated_at",
}

// SlotRepository реляционная реализация storage.SlotStore
type SlotRepository struct {
	db DBExecutor
}

// NewSlotRepository создает новый экземпляр репозитория слотов
func NewSlotRepository(db DBExecutor) *SlotRepository {
	return &SlotRepository{db: db}
}

// Create сохраняет новый слот с начальной ревизией 1
func (r *SlotRepository) Create(ctx context.Context, slot *domain.AvailabilitySlot) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	slot.Rev = 1

	query, args, err := psqlbuilder.Insert("availability_slots").
		Columns(slotColumns...).
		Values(
			slot.ID,
			slot.OrgID,
			slot.SiteID,
			slot.StartTime,
			slot.EndTime,
			weekdayToNull(slot.DayOfWeek),
			slot.Recurrence,
			slot.SpecificDate,
			slot.RecurrenceEndDate,
			slot.Capacity,
			slot.BookedCount,
			slot.DurationMinutes,
			slot.BufferMinutes,
			slot.Status,
			slot.Rev,
			slot.CreatedAt,
			slot.UpdatedAt,
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

// GetByID получает слот по ID
func (r *SlotRepository) GetByID(ctx context.Context, id string) (*domain.AvailabilitySlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(slotColumns...).
		From("availability_slots").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	slot, err := scanSlot(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, storage.ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan slot: %w", ErrScanRow, err)
	}

	return slot, nil
}

// ListActive возвращает активные слоты площадки
func (r *SlotRepository) ListActive(ctx context.Context, siteID string) ([]*domain.AvailabilitySlot, error) {
	return r.list(ctx, siteID, true)
}

// ListAll возвращает все слоты площадки, включая неактивные
func (r *SlotRepository) ListAll(ctx context.Context, siteID string) ([]*domain.AvailabilitySlot, error) {
	return r.list(ctx, siteID, false)
}

func (r *SlotRepository) list(ctx context.Context, siteID string, onlyActive bool) ([]*domain.AvailabilitySlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(slotColumns...).
		From("availability_slots").
		Where(squirrel.Eq{"site_id": siteID}).
		OrderBy("start_time ASC, created_at ASC")

	if onlyActive {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": domain.SlotStatusActive})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: list - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	slots := make([]*domain.AvailabilitySlot, 0)
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: list - scan row: %w", ErrScanRow, err)
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list - rows error: %w", ErrScanRow, err)
	}

	return slots, nil
}

// UpdateRevisioned условная запись слота по ревизии.
// UPDATE ... WHERE id = $1 AND rev = $2 - атомарный check-and-set,
// линеаризуемый самой БД. Ноль затронутых строк означает, что
// другая запись закоммитилась первой (ErrRevisionConflict) либо
// слот не существует (ErrSlotNotFound).
func (r *SlotRepository) UpdateRevisioned(ctx context.Context, slot *domain.AvailabilitySlot) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("availability_slots").
		Set("booked_count", slot.BookedCount).
		Set("status", slot.Status).
		Set("recurrence_end_date", slot.RecurrenceEndDate).
		Set("buffer_minutes", slot.BufferMinutes).
		Set("rev", slot.Rev+1).
		Set("updated_at", slot.UpdatedAt).
		Where(squirrel.Eq{"id": slot.ID, "rev": slot.Rev}).
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
		// Различаем конфликт ревизии и отсутствие слота
		if _, err := r.GetByID(ctx, slot.ID); err != nil {
			return err
		}
		return storage.ErrRevisionConflict
	}

	slot.Rev++
	return nil
}

// scanner общий интерфейс *sql.Row и *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSlot(row scanner) (*domain.AvailabilitySlot, error) {
	var slot domain.AvailabilitySlot
	var dayOfWeek sql.NullInt64
	var specificDate, recurrenceEndDate sql.NullTime
	var bufferMinutes sql.NullInt64
	var createdAt, updatedAt time.Time

	err := row.Scan(
		&slot.ID,
		&slot.OrgID,
		&slot.SiteID,
		&slot.StartTime,
		&slot.EndTime,
		&dayOfWeek,
		&slot.Recurrence,
		&specificDate,
		&recurrenceEndDate,
		&slot.Capacity,
		&slot.BookedCount,
		&slot.DurationMinutes,
		&bufferMinutes,
		&slot.Status,
		&slot.Rev,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if dayOfWeek.Valid {
		weekday := time.Weekday(dayOfWeek.Int64)
		slot.DayOfWeek = &weekday
	}
	if specificDate.Valid {
		date := types.NewDate(specificDate.Time)
		slot.SpecificDate = &date
	}
	if recurrenceEndDate.Valid {
		date := types.NewDate(recurrenceEndDate.Time)
		slot.RecurrenceEndDate = &date
	}
	if bufferMinutes.Valid {
		buffer := int(bufferMinutes.Int64)
		slot.BufferMinutes = &buffer
	}
	slot.CreatedAt = createdAt
	slot.UpdatedAt = updatedAt

	return &slot, nil
}

func weekdayToNull(w *time.Weekday) interface{} {
	if w == nil {
		return nil
	}
	return int64(*w)
}

func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return string(pqErr.Code) == uniqueViolation
	}
	return false
}
