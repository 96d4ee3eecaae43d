package repositories

import (
	"context"

	"github.com/zatekoja/medifind/internal/domain/entities"
)

// TokenAssigner receives the highest token currently held for a doctor and
// date (0 when none) and returns the token and scheduled time to store. An
// error aborts the allocation.
type TokenAssigner func(currentMax int) (token int, scheduledTime string, err error)

// AppointmentRepository defines the interface for appointment data operations
type AppointmentRepository interface {
	// CreateAllocated reads the current maximum token and inserts the
	// appointment with the values returned by assign, atomically with respect
	// to other allocations for the same doctor and date. A token collision is
	// reported as a CONFLICT error.
	CreateAllocated(ctx context.Context, appointment *entities.Appointment, assign TokenAssigner) error

	// MaxTokenNumber returns the highest token among non-cancelled
	// appointments for the doctor and date, or 0
	MaxTokenNumber(ctx context.Context, doctorID, date string) (int, error)

	// GetByID retrieves an appointment by ID
	GetByID(ctx context.Context, id string) (*entities.Appointment, error)

	// UpdateStatus moves an appointment from one status to another. It fails
	// with CONFLICT when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id string, from, to entities.AppointmentStatus) (*entities.Appointment, error)

	// ListByPatient retrieves appointments for a patient, newest date first
	ListByPatient(ctx context.Context, patientID string, filter AppointmentFilter) ([]*entities.Appointment, error)

	// List retrieves appointments across patients
	List(ctx context.Context, filter AppointmentFilter) ([]*entities.Appointment, error)
}

// AppointmentFilter defines filters for listing appointments
type AppointmentFilter struct {
	DoctorID string
	Date     string
	Status   entities.AppointmentStatus
	Limit    int
	Offset   int
}
