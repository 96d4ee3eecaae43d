package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppointmentStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, AppointmentStatusConfirmed.CanTransitionTo(AppointmentStatusCompleted))
	assert.True(t, AppointmentStatusConfirmed.CanTransitionTo(AppointmentStatusCancelled))
	assert.False(t, AppointmentStatusConfirmed.CanTransitionTo(AppointmentStatusConfirmed))
	assert.False(t, AppointmentStatusCancelled.CanTransitionTo(AppointmentStatusConfirmed))
	assert.False(t, AppointmentStatusCompleted.CanTransitionTo(AppointmentStatusCancelled))
}

func TestParsePaymentStatus(t *testing.T) {
	for _, s := range []string{"full", "partial", "pending"} {
		got, ok := ParsePaymentStatus(s)
		assert.True(t, ok, s)
		assert.Equal(t, PaymentStatus(s), got)
	}

	_, ok := ParsePaymentStatus("installments")
	assert.False(t, ok)
}
