package entities

import (
	"time"

	"github.com/google/uuid"
)

// QueueEventType represents the kind of change to a doctor's daily queue
type QueueEventType string

const (
	QueueEventBooked        QueueEventType = "appointment.booked"
	QueueEventStatusChanged QueueEventType = "appointment.status_changed"
)

// QueueEvent is published whenever a doctor's queue for a date changes
type QueueEvent struct {
	ID              string            `json:"id"`
	Type            QueueEventType    `json:"type"`
	DoctorID        string            `json:"doctor_id"`
	AppointmentDate string            `json:"appointment_date"`
	AppointmentID   string            `json:"appointment_id"`
	TokenNumber     int               `json:"token_number"`
	ScheduledTime   string            `json:"scheduled_time"`
	Status          AppointmentStatus `json:"status"`
	Timestamp       time.Time         `json:"timestamp"`
}

// NewQueueEvent creates an event describing the current state of appt
func NewQueueEvent(eventType QueueEventType, appt *Appointment) *QueueEvent {
	return &QueueEvent{
		ID:              uuid.NewString(),
		Type:            eventType,
		DoctorID:        appt.DoctorID,
		AppointmentDate: appt.AppointmentDate,
		AppointmentID:   appt.ID,
		TokenNumber:     appt.TokenNumber,
		ScheduledTime:   appt.ScheduledTime,
		Status:          appt.Status,
		Timestamp:       time.Now(),
	}
}
