package entities

import (
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
)

// PaymentStatus is the payment option chosen at booking time
type PaymentStatus string

const (
	PaymentStatusFull    PaymentStatus = "full"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusPending PaymentStatus = "pending"
)

// DateLayout is the calendar-date format used for appointment dates
const DateLayout = "2006-01-02"

// Appointment is a token booking with a doctor on a calendar date
type Appointment struct {
	ID              string            `json:"id" db:"id"`
	DoctorID        string            `json:"doctor_id" db:"doctor_id"`
	HospitalID      string            `json:"hospital_id" db:"hospital_id"`
	PatientID       string            `json:"patient_id" db:"patient_id"`
	AppointmentDate string            `json:"appointment_date" db:"appointment_date"`
	TokenNumber     int               `json:"token_number" db:"token_number"`
	ScheduledTime   string            `json:"scheduled_time" db:"scheduled_time"`
	PaymentStatus   PaymentStatus     `json:"payment_status" db:"payment_status"`
	PaymentAmount   float64           `json:"payment_amount" db:"payment_amount"`
	Status          AppointmentStatus `json:"status" db:"status"`
	CreatedAt       time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at" db:"updated_at"`
}

// CanTransitionTo reports whether an appointment in status s may move to next.
// Only confirmed appointments change state; completed and cancelled are final.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	if s != AppointmentStatusConfirmed {
		return false
	}
	return next == AppointmentStatusCompleted || next == AppointmentStatusCancelled
}

// ParseAppointmentStatus validates a status string
func ParseAppointmentStatus(s string) (AppointmentStatus, bool) {
	switch st := AppointmentStatus(s); st {
	case AppointmentStatusConfirmed, AppointmentStatusCancelled, AppointmentStatusCompleted:
		return st, true
	}
	return "", false
}

// ParsePaymentStatus validates a payment option
func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	switch ps := PaymentStatus(s); ps {
	case PaymentStatusFull, PaymentStatusPartial, PaymentStatusPending:
		return ps, true
	}
	return "", false
}
