package database

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/medifind/internal/domain/entities"
	"github.com/zatekoja/medifind/internal/domain/repositories"
	apperrors "github.com/zatekoja/medifind/pkg/errors"
)

var appointmentRowColumns = []string{
	"id", "doctor_id", "hospital_id", "patient_id", "appointment_date",
	"token_number", "scheduled_time", "payment_status", "payment_amount",
	"status", "created_at", "updated_at",
}

const maxTokenSQL = `SELECT COALESCE(MAX("token_number"), 0) FROM "appointments" WHERE (("appointment_date" = '2025-03-10') AND ("doctor_id" = 'doc-1') AND ("status" != 'cancelled'))`

func newAppointment() *entities.Appointment {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return &entities.Appointment{
		ID:              "appt-1",
		DoctorID:        "doc-1",
		HospitalID:      "hosp-1",
		PatientID:       "user-1",
		AppointmentDate: "2025-03-10",
		PaymentStatus:   entities.PaymentStatusFull,
		PaymentAmount:   500,
		Status:          entities.AppointmentStatusConfirmed,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestAppointmentAdapter_CreateAllocated(t *testing.T) {
	t.Run("locks, reads max and inserts in one transaction", func(t *testing.T) {
		// Arrange
		client, mock := newMockClient(t)
		adapter := NewAppointmentAdapter(client)
		appt := newAppointment()

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_advisory_xact_lock(hashtext('doc-1:2025-03-10'))`)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta(maxTokenSQL)).
			WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(3))
		mock.ExpectExec(`INSERT INTO "appointments" .*'10:45'.* 4,`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		var seenMax int
		// Act
		err := adapter.CreateAllocated(context.Background(), appt, func(currentMax int) (int, string, error) {
			seenMax = currentMax
			return currentMax + 1, "10:45", nil
		})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 3, seenMax)
		assert.Equal(t, 4, appt.TokenNumber)
		assert.Equal(t, "10:45", appt.ScheduledTime)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation rolls back and reports conflict", func(t *testing.T) {
		client, mock := newMockClient(t)
		adapter := NewAppointmentAdapter(client)

		mock.ExpectBegin()
		mock.ExpectExec(`pg_advisory_xact_lock`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`COALESCE`).WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(0))
		mock.ExpectExec(`INSERT INTO "appointments"`).WillReturnError(&pq.Error{Code: "23505"})
		mock.ExpectRollback()

		err := adapter.CreateAllocated(context.Background(), newAppointment(), func(m int) (int, string, error) {
			return m + 1, "10:00", nil
		})

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("assigner refusal rolls back without inserting", func(t *testing.T) {
		client, mock := newMockClient(t)
		adapter := NewAppointmentAdapter(client)

		mock.ExpectBegin()
		mock.ExpectExec(`pg_advisory_xact_lock`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`COALESCE`).WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(56))
		mock.ExpectRollback()

		err := adapter.CreateAllocated(context.Background(), newAppointment(), func(m int) (int, string, error) {
			return 0, "", apperrors.NewValidationError("doctor is fully booked for this date")
		})

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lock failure is a persistence error", func(t *testing.T) {
		client, mock := newMockClient(t)
		adapter := NewAppointmentAdapter(client)

		mock.ExpectBegin()
		mock.ExpectExec(`pg_advisory_xact_lock`).WillReturnError(assert.AnError)
		mock.ExpectRollback()

		err := adapter.CreateAllocated(context.Background(), newAppointment(), func(m int) (int, string, error) {
			t.Fatal("assigner must not run without the lock")
			return 0, "", nil
		})

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypePersistence))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAppointmentAdapter_MaxTokenNumber(t *testing.T) {
	client, mock := newMockClient(t)
	adapter := NewAppointmentAdapter(client)

	mock.ExpectQuery(regexp.QuoteMeta(maxTokenSQL)).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(0))

	got, err := adapter.MaxTokenNumber(context.Background(), "doc-1", "2025-03-10")

	require.NoError(t, err)
	assert.Equal(t, 0, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentAdapter_UpdateStatus(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	t.Run("compare and set succeeds", func(t *testing.T) {
		client, mock := newMockClient(t)
		adapter := NewAppointmentAdapter(client)

		mock.ExpectQuery(`UPDATE "appointments" SET .*WHERE \(\("id" = 'appt-1'\) AND \("status" = 'confirmed'\)\) RETURNING`).
			WillReturnRows(sqlmock.NewRows(appointmentRowColumns).
				AddRow("appt-1", "doc-1", "hosp-1", "user-1", date, 2, "10:15", "partial", "50.00", "completed", now, now))

		appt, err := adapter.UpdateStatus(context.Background(), "appt-1",
			entities.AppointmentStatusConfirmed, entities.AppointmentStatusCompleted)

		require.NoError(t, err)
		assert.Equal(t, entities.AppointmentStatusCompleted, appt.Status)
		assert.Equal(t, "2025-03-10", appt.AppointmentDate)
		assert.Equal(t, 50.0, appt.PaymentAmount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale status is a conflict", func(t *testing.T) {
		client, mock := newMockClient(t)
		adapter := NewAppointmentAdapter(client)

		mock.ExpectQuery(`UPDATE "appointments"`).WillReturnRows(sqlmock.NewRows(appointmentRowColumns))
		mock.ExpectQuery(regexp.QuoteMeta(`WHERE ("id" = 'appt-1')`)).
			WillReturnRows(sqlmock.NewRows(appointmentRowColumns).
				AddRow("appt-1", "doc-1", "hosp-1", "user-1", date, 2, "10:15", "full", 500, "cancelled", now, now))

		_, err := adapter.UpdateStatus(context.Background(), "appt-1",
			entities.AppointmentStatusConfirmed, entities.AppointmentStatusCompleted)

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
	})

	t.Run("missing appointment is not found", func(t *testing.T) {
		client, mock := newMockClient(t)
		adapter := NewAppointmentAdapter(client)

		mock.ExpectQuery(`UPDATE "appointments"`).WillReturnRows(sqlmock.NewRows(appointmentRowColumns))
		mock.ExpectQuery(`SELECT .* FROM "appointments"`).WillReturnRows(sqlmock.NewRows(appointmentRowColumns))

		_, err := adapter.UpdateStatus(context.Background(), "nope",
			entities.AppointmentStatusConfirmed, entities.AppointmentStatusCancelled)

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})
}

func TestAppointmentAdapter_List(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	client, mock := newMockClient(t)
	adapter := NewAppointmentAdapter(client)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE (("doctor_id" = 'doc-1') AND ("appointment_date" = '2025-03-10') AND ("status" = 'confirmed')) ORDER BY "appointment_date" ASC, "doctor_id" ASC, "token_number" ASC LIMIT 20`)).
		WillReturnRows(sqlmock.NewRows(appointmentRowColumns).
			AddRow("a1", "doc-1", "hosp-1", "u1", date, 1, "10:00", "full", 500, "confirmed", now, now).
			AddRow("a2", "doc-1", "hosp-1", "u2", date, 2, "10:15", "pending", 0, "confirmed", now, now))

	appts, err := adapter.List(context.Background(), repositories.AppointmentFilter{
		DoctorID: "doc-1",
		Date:     "2025-03-10",
		Status:   entities.AppointmentStatusConfirmed,
		Limit:    20,
	})

	require.NoError(t, err)
	require.Len(t, appts, 2)
	assert.Equal(t, 1, appts[0].TokenNumber)
	assert.Equal(t, entities.PaymentStatusPending, appts[1].PaymentStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}
