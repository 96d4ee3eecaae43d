package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/zatekoja/medifind/internal/domain/entities"
	"github.com/zatekoja/medifind/internal/domain/repositories"
	"github.com/zatekoja/medifind/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/medifind/pkg/errors"
)

const appointmentsTable = "appointments"

var appointmentColumns = []interface{}{
	"id", "doctor_id", "hospital_id", "patient_id", "appointment_date",
	"token_number", "scheduled_time", "payment_status", "payment_amount",
	"status", "created_at", "updated_at",
}

// AppointmentAdapter implements the AppointmentRepository interface
type AppointmentAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewAppointmentAdapter creates a new appointment adapter
func NewAppointmentAdapter(client *postgres.Client) repositories.AppointmentRepository {
	return &AppointmentAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// CreateAllocated serialises allocations for one doctor and date with a
// transaction-scoped advisory lock, reads the current maximum token and
// inserts the appointment in the same transaction. The partial unique index
// on (doctor_id, appointment_date, token_number) backs the lock up; a
// violation surfaces as CONFLICT so the caller can retry.
func (a *AppointmentAdapter) CreateAllocated(ctx context.Context, appointment *entities.Appointment, assign repositories.TokenAssigner) error {
	tx, err := a.client.DB().BeginTx(ctx, nil)
	if err != nil {
		return wrapError("failed to begin transaction", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	lockKey := appointment.DoctorID + ":" + appointment.AppointmentDate
	lockSQL, _, err := a.db.Select(goqu.Func("pg_advisory_xact_lock", goqu.Func("hashtext", lockKey))).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build lock query", err)
	}
	if _, err := tx.ExecContext(ctx, lockSQL); err != nil {
		return wrapError("failed to acquire allocation lock", err)
	}

	maxSQL, args, err := a.maxTokenQuery(appointment.DoctorID, appointment.AppointmentDate)
	if err != nil {
		return err
	}
	var currentMax int
	if err := tx.QueryRowContext(ctx, maxSQL, args...).Scan(&currentMax); err != nil {
		return wrapError("failed to read current token", err)
	}

	appointment.TokenNumber, appointment.ScheduledTime, err = assign(currentMax)
	if err != nil {
		return err
	}

	insertSQL, args, err := a.db.Insert(appointmentsTable).
		Rows(goqu.Record{
			"id":               appointment.ID,
			"doctor_id":        appointment.DoctorID,
			"hospital_id":      appointment.HospitalID,
			"patient_id":       appointment.PatientID,
			"appointment_date": appointment.AppointmentDate,
			"token_number":     appointment.TokenNumber,
			"scheduled_time":   appointment.ScheduledTime,
			"payment_status":   string(appointment.PaymentStatus),
			"payment_amount":   appointment.PaymentAmount,
			"status":           string(appointment.Status),
			"created_at":       appointment.CreatedAt,
			"updated_at":       appointment.UpdatedAt,
		}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}
	if _, err := tx.ExecContext(ctx, insertSQL, args...); err != nil {
		return wrapError("failed to create appointment", err)
	}

	if err := tx.Commit(); err != nil {
		return wrapError("failed to commit appointment", err)
	}
	committed = true
	return nil
}

// MaxTokenNumber returns the highest non-cancelled token for the doctor and date
func (a *AppointmentAdapter) MaxTokenNumber(ctx context.Context, doctorID, date string) (int, error) {
	query, args, err := a.maxTokenQuery(doctorID, date)
	if err != nil {
		return 0, err
	}

	var current int
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&current); err != nil {
		return 0, wrapError("failed to read current token", err)
	}
	return current, nil
}

func (a *AppointmentAdapter) maxTokenQuery(doctorID, date string) (string, []interface{}, error) {
	query, args, err := a.db.From(appointmentsTable).
		Select(goqu.COALESCE(goqu.MAX("token_number"), 0)).
		Where(goqu.Ex{
			"doctor_id":        doctorID,
			"appointment_date": date,
			"status":           goqu.Op{"neq": string(entities.AppointmentStatusCancelled)},
		}).
		ToSQL()
	if err != nil {
		return "", nil, apperrors.NewInternalError("failed to build token query", err)
	}
	return query, args, nil
}

// GetByID retrieves an appointment by ID
func (a *AppointmentAdapter) GetByID(ctx context.Context, id string) (*entities.Appointment, error) {
	query, args, err := a.db.From(appointmentsTable).
		Select(appointmentColumns...).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	appointment, err := scanAppointment(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("appointment with id %s not found", id))
	}
	if err != nil {
		return nil, wrapError("failed to get appointment", err)
	}
	return appointment, nil
}

// UpdateStatus performs a compare-and-set on the status column
func (a *AppointmentAdapter) UpdateStatus(ctx context.Context, id string, from, to entities.AppointmentStatus) (*entities.Appointment, error) {
	query, args, err := a.db.Update(appointmentsTable).
		Set(goqu.Record{
			"status":     string(to),
			"updated_at": time.Now().UTC(),
		}).
		Where(goqu.Ex{"id": id, "status": string(from)}).
		Returning(appointmentColumns...).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build update query", err)
	}

	appointment, err := scanAppointment(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		if _, getErr := a.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, apperrors.NewConflictError(fmt.Sprintf("appointment %s is no longer %s", id, from), nil)
	}
	if err != nil {
		return nil, wrapError("failed to update appointment status", err)
	}
	return appointment, nil
}

// ListByPatient retrieves appointments for a patient
func (a *AppointmentAdapter) ListByPatient(ctx context.Context, patientID string, filter repositories.AppointmentFilter) ([]*entities.Appointment, error) {
	ds := a.db.From(appointmentsTable).
		Select(appointmentColumns...).
		Where(goqu.Ex{"patient_id": patientID})

	return a.list(ctx, applyAppointmentFilter(ds, filter).
		Order(goqu.I("appointment_date").Desc(), goqu.I("token_number").Asc()))
}

// List retrieves appointments across patients, in queue order
func (a *AppointmentAdapter) List(ctx context.Context, filter repositories.AppointmentFilter) ([]*entities.Appointment, error) {
	ds := a.db.From(appointmentsTable).Select(appointmentColumns...)

	return a.list(ctx, applyAppointmentFilter(ds, filter).
		Order(goqu.I("appointment_date").Asc(), goqu.I("doctor_id").Asc(), goqu.I("token_number").Asc()))
}

func applyAppointmentFilter(ds *goqu.SelectDataset, filter repositories.AppointmentFilter) *goqu.SelectDataset {
	if filter.DoctorID != "" {
		ds = ds.Where(goqu.Ex{"doctor_id": filter.DoctorID})
	}
	if filter.Date != "" {
		ds = ds.Where(goqu.Ex{"appointment_date": filter.Date})
	}
	if filter.Status != "" {
		ds = ds.Where(goqu.Ex{"status": string(filter.Status)})
	}
	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}
	return ds
}

func (a *AppointmentAdapter) list(ctx context.Context, ds *goqu.SelectDataset) ([]*entities.Appointment, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapError("failed to list appointments", err)
	}
	defer rows.Close()

	appointments := make([]*entities.Appointment, 0)
	for rows.Next() {
		appointment, err := scanAppointment(rows)
		if err != nil {
			return nil, wrapError("failed to scan appointment", err)
		}
		appointments = append(appointments, appointment)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError("failed to iterate appointments", err)
	}
	return appointments, nil
}

func scanAppointment(row rowScanner) (*entities.Appointment, error) {
	appt := &entities.Appointment{}
	var (
		date          time.Time
		paymentStatus string
		status        string
	)

	err := row.Scan(
		&appt.ID,
		&appt.DoctorID,
		&appt.HospitalID,
		&appt.PatientID,
		&date,
		&appt.TokenNumber,
		&appt.ScheduledTime,
		&paymentStatus,
		&appt.PaymentAmount,
		&status,
		&appt.CreatedAt,
		&appt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	appt.AppointmentDate = date.Format(entities.DateLayout)
	appt.PaymentStatus = entities.PaymentStatus(paymentStatus)
	appt.Status = entities.AppointmentStatus(status)
	return appt, nil
}
