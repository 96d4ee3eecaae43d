package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zatekoja/medifind/internal/domain/entities"
	"github.com/zatekoja/medifind/internal/domain/providers"
	"github.com/zatekoja/medifind/internal/domain/repositories"
	"github.com/zatekoja/medifind/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/medifind/pkg/errors"
	"github.com/zatekoja/medifind/pkg/retry"
)

// BookRequest is a patient's booking request. The patient comes from the session.
type BookRequest struct {
	DoctorID        string `json:"doctor_id"`
	AppointmentDate string `json:"appointment_date"`
	PaymentStatus   string `json:"payment_status"`
}

// TokenPreview is the token and time the next booking would receive
type TokenPreview struct {
	DoctorID        string `json:"doctor_id"`
	AppointmentDate string `json:"appointment_date"`
	TokenNumber     int    `json:"token_number"`
	ScheduledTime   string `json:"scheduled_time"`
}

// BookingService handles appointment booking and administration
type BookingService struct {
	repo        repositories.AppointmentRepository
	doctors     repositories.DoctorRepository
	allocator   *TokenAllocator
	events      providers.EventBus
	metrics     *observability.Metrics
	maxAttempts int
	now         func() time.Time
}

// NewBookingService creates a new booking service. events may be nil.
func NewBookingService(
	repo repositories.AppointmentRepository,
	doctors repositories.DoctorRepository,
	allocator *TokenAllocator,
	events providers.EventBus,
	maxAttempts int,
	metrics *observability.Metrics,
) *BookingService {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &BookingService{
		repo:        repo,
		doctors:     doctors,
		allocator:   allocator,
		events:      events,
		metrics:     metrics,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

// Book creates a confirmed appointment with the next free token
func (s *BookingService) Book(ctx context.Context, session *entities.Session, req BookRequest) (*entities.Appointment, error) {
	if session == nil {
		return nil, apperrors.NewUnauthorizedError("sign in to book an appointment")
	}

	if strings.TrimSpace(req.DoctorID) == "" {
		return nil, apperrors.NewValidationError("doctor_id is required")
	}
	date, err := s.validateDate(req.AppointmentDate)
	if err != nil {
		return nil, err
	}
	payment, ok := entities.ParsePaymentStatus(req.PaymentStatus)
	if !ok {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown payment option %q", req.PaymentStatus))
	}

	doctor, err := s.doctors.GetByID(ctx, req.DoctorID)
	if err != nil {
		return nil, err
	}

	amount, err := s.allocator.PaymentAmount(doctor.ConsultationFee, payment)
	if err != nil {
		return nil, err
	}

	now := s.now()
	appointment := &entities.Appointment{
		ID:              uuid.New().String(),
		DoctorID:        doctor.ID,
		HospitalID:      doctor.HospitalID,
		PatientID:       session.UserID,
		AppointmentDate: date,
		PaymentStatus:   payment,
		PaymentAmount:   amount,
		Status:          entities.AppointmentStatusConfirmed,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	logger := observability.LoggerFromContext(ctx)
	err = retry.Do(ctx, retry.Immediate(s.maxAttempts), func() error {
		err := s.repo.CreateAllocated(ctx, appointment, s.allocator.Assign)
		if err == nil {
			return nil
		}
		if apperrors.IsType(err, apperrors.ErrorTypeConflict) {
			observability.RecordTokenConflict(ctx, s.metrics)
			logger.Warn().Str("doctor_id", doctor.ID).Str("date", date).Msg("Token collision, retrying allocation")
			return err
		}
		return retry.Permanent(err)
	})
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeConflict) {
			return nil, apperrors.NewConflictError("could not allocate a token, please try again", err)
		}
		return nil, err
	}

	logger.Info().
		Str("appointment_id", appointment.ID).
		Str("doctor_id", doctor.ID).
		Str("date", date).
		Int("token", appointment.TokenNumber).
		Msg("Appointment booked")

	s.publish(ctx, entities.QueueEventBooked, appointment)
	return appointment, nil
}

// PreviewNextToken reports the token and time the next booking would receive
func (s *BookingService) PreviewNextToken(ctx context.Context, doctorID, date string) (*TokenPreview, error) {
	date, err := s.validateDate(date)
	if err != nil {
		return nil, err
	}
	if _, err := s.doctors.GetByID(ctx, doctorID); err != nil {
		return nil, err
	}
	token, err := s.allocator.NextToken(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}
	if err := s.allocator.CheckCapacity(token); err != nil {
		return nil, err
	}
	return &TokenPreview{
		DoctorID:        doctorID,
		AppointmentDate: date,
		TokenNumber:     token,
		ScheduledTime:   s.allocator.ScheduledTime(token),
	}, nil
}

// ListMine returns the session user's appointments
func (s *BookingService) ListMine(ctx context.Context, session *entities.Session, filter repositories.AppointmentFilter) ([]*entities.Appointment, error) {
	if session == nil {
		return nil, apperrors.NewUnauthorizedError("sign in to view appointments")
	}
	return s.repo.ListByPatient(ctx, session.UserID, filter)
}

// List returns appointments across patients. Admin only.
func (s *BookingService) List(ctx context.Context, session *entities.Session, filter repositories.AppointmentFilter) ([]*entities.Appointment, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	if filter.Date != "" {
		if _, err := time.Parse(entities.DateLayout, filter.Date); err != nil {
			return nil, apperrors.NewValidationError("date must be YYYY-MM-DD")
		}
	}
	return s.repo.List(ctx, filter)
}

// UpdateStatus moves an appointment to a new status. Admin only.
func (s *BookingService) UpdateStatus(ctx context.Context, session *entities.Session, id, status string) (*entities.Appointment, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	next, ok := entities.ParseAppointmentStatus(status)
	if !ok {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown appointment status %q", status))
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransitionTo(next) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("cannot change appointment from %s to %s", current.Status, next))
	}

	updated, err := s.repo.UpdateStatus(ctx, id, current.Status, next)
	if err != nil {
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info().
		Str("appointment_id", id).
		Str("from", string(current.Status)).
		Str("to", string(next)).
		Str("admin_id", session.UserID).
		Msg("Appointment status changed")

	s.publish(ctx, entities.QueueEventStatusChanged, updated)
	return updated, nil
}

func (s *BookingService) validateDate(date string) (string, error) {
	parsed, err := time.Parse(entities.DateLayout, strings.TrimSpace(date))
	if err != nil {
		return "", apperrors.NewValidationError("appointment_date must be YYYY-MM-DD")
	}
	formatted := parsed.Format(entities.DateLayout)
	if formatted < s.now().Format(entities.DateLayout) {
		return "", apperrors.NewValidationError("cannot book an appointment in the past")
	}
	return formatted, nil
}

// publish notifies queue subscribers. Failures never fail the request.
func (s *BookingService) publish(ctx context.Context, eventType entities.QueueEventType, appointment *entities.Appointment) {
	if s.events == nil {
		return
	}
	channel := providers.GetQueueChannel(appointment.DoctorID, appointment.AppointmentDate)
	if err := s.events.Publish(ctx, channel, entities.NewQueueEvent(eventType, appointment)); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("channel", channel).Msg("Failed to publish queue event")
	}
}

func requireAdmin(session *entities.Session) error {
	if session == nil {
		return apperrors.NewUnauthorizedError("sign in required")
	}
	if !session.IsAdmin() {
		return apperrors.NewForbiddenError("admin access required")
	}
	return nil
}
