package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/zatekoja/medifind/internal/domain/entities"
	"github.com/zatekoja/medifind/internal/domain/repositories"
	"github.com/zatekoja/medifind/pkg/config"
	apperrors "github.com/zatekoja/medifind/pkg/errors"
)

const minutesPerDay = 24 * 60

// TokenAllocator computes queue tokens, their scheduled times and payment amounts
type TokenAllocator struct {
	repo        repositories.AppointmentRepository
	baseMinutes int
	slotMinutes int
	partialRate float64
}

// NewTokenAllocator creates a token allocator from booking settings
func NewTokenAllocator(repo repositories.AppointmentRepository, cfg config.BookingConfig) (*TokenAllocator, error) {
	base, err := time.Parse("15:04", cfg.BaseTime)
	if err != nil {
		return nil, fmt.Errorf("invalid booking base time %q: %w", cfg.BaseTime, err)
	}
	if cfg.SlotMinutes <= 0 {
		return nil, fmt.Errorf("booking slot minutes must be positive, got %d", cfg.SlotMinutes)
	}
	return &TokenAllocator{
		repo:        repo,
		baseMinutes: base.Hour()*60 + base.Minute(),
		slotMinutes: cfg.SlotMinutes,
		partialRate: cfg.PartialRate,
	}, nil
}

// NextToken returns the token the next booking for doctorID on date would get
func (a *TokenAllocator) NextToken(ctx context.Context, doctorID, date string) (int, error) {
	current, err := a.repo.MaxTokenNumber(ctx, doctorID, date)
	if err != nil {
		return 0, err
	}
	return current + 1, nil
}

// ScheduledTime returns the HH:MM slot for token. Tokens beyond DailyCapacity
// have no slot on the same day; callers check capacity first.
func (a *TokenAllocator) ScheduledTime(token int) string {
	if token < 1 {
		token = 1
	}
	minutes := a.baseMinutes + (token-1)*a.slotMinutes
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// DailyCapacity is the number of tokens whose slot starts before midnight
func (a *TokenAllocator) DailyCapacity() int {
	return (minutesPerDay - a.baseMinutes + a.slotMinutes - 1) / a.slotMinutes
}

// CheckCapacity rejects a token that would be scheduled past the end of the day
func (a *TokenAllocator) CheckCapacity(token int) error {
	if token > a.DailyCapacity() {
		return apperrors.NewValidationError(fmt.Sprintf("doctor is fully booked for this date (%d tokens)", a.DailyCapacity()))
	}
	return nil
}

// Assign is the TokenAssigner used inside the allocation transaction
func (a *TokenAllocator) Assign(currentMax int) (int, string, error) {
	token := currentMax + 1
	if err := a.CheckCapacity(token); err != nil {
		return 0, "", err
	}
	return token, a.ScheduledTime(token), nil
}

// PaymentAmount returns what is charged at booking for the chosen option,
// rounded to the nearest whole currency unit.
func (a *TokenAllocator) PaymentAmount(fee float64, status entities.PaymentStatus) (float64, error) {
	switch status {
	case entities.PaymentStatusFull:
		return math.Round(fee), nil
	case entities.PaymentStatusPartial:
		return math.Round(fee * a.partialRate), nil
	case entities.PaymentStatusPending:
		return 0, nil
	default:
		return 0, apperrors.NewValidationError(fmt.Sprintf("unknown payment option %q", status))
	}
}
