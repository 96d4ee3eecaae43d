package handlers_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
	"github.com/zatekoja/medifind/internal/application/services"
	"github.com/zatekoja/medifind/internal/domain/entities"
	"github.com/zatekoja/medifind/internal/domain/providers"
	"github.com/zatekoja/medifind/internal/domain/repositories"
)

type MockFacilitySearcher struct {
	mock.Mock
}

func (m *MockFacilitySearcher) Resolve(ctx context.Context, req entities.FacilitySearchRequest) (*entities.FacilitySearchResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.FacilitySearchResult), args.Error(1)
}

type MockFacilityReader struct {
	mock.Mock
}

func (m *MockFacilityReader) GetByID(ctx context.Context, id string) (*entities.Facility, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Facility), args.Error(1)
}

type MockAppointmentService struct {
	mock.Mock
}

func (m *MockAppointmentService) Book(ctx context.Context, session *entities.Session, req services.BookRequest) (*entities.Appointment, error) {
	args := m.Called(ctx, session, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Appointment), args.Error(1)
}

func (m *MockAppointmentService) ListMine(ctx context.Context, session *entities.Session, filter repositories.AppointmentFilter) ([]*entities.Appointment, error) {
	args := m.Called(ctx, session, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Appointment), args.Error(1)
}

func (m *MockAppointmentService) List(ctx context.Context, session *entities.Session, filter repositories.AppointmentFilter) ([]*entities.Appointment, error) {
	args := m.Called(ctx, session, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Appointment), args.Error(1)
}

func (m *MockAppointmentService) UpdateStatus(ctx context.Context, session *entities.Session, id, status string) (*entities.Appointment, error) {
	args := m.Called(ctx, session, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Appointment), args.Error(1)
}

type MockDoctorService struct {
	mock.Mock
}

func (m *MockDoctorService) GetByID(ctx context.Context, id string) (*entities.Doctor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Doctor), args.Error(1)
}

func (m *MockDoctorService) List(ctx context.Context, filter repositories.DoctorFilter) ([]*entities.Doctor, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Doctor), args.Error(1)
}

type MockTokenPreviewer struct {
	mock.Mock
}

func (m *MockTokenPreviewer) PreviewNextToken(ctx context.Context, doctorID, date string) (*services.TokenPreview, error) {
	args := m.Called(ctx, doctorID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.TokenPreview), args.Error(1)
}

type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) Create(ctx context.Context, identityToken string) (*entities.Session, error) {
	args := m.Called(ctx, identityToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Session), args.Error(1)
}

func (m *MockSessionService) Refresh(ctx context.Context, token string) (*entities.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Session), args.Error(1)
}

func (m *MockSessionService) Clear(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

type MockMedicineSearcher struct {
	mock.Mock
}

func (m *MockMedicineSearcher) Search(ctx context.Context, query string, limit int) ([]*entities.Medicine, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Medicine), args.Error(1)
}

type MockGeocodingProvider struct {
	mock.Mock
}

func (m *MockGeocodingProvider) Forward(ctx context.Context, query string) (*providers.Coordinates, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providers.Coordinates), args.Error(1)
}

func (m *MockGeocodingProvider) Reverse(ctx context.Context, lat, lon float64) (*providers.GeocodedPlace, error) {
	args := m.Called(ctx, lat, lon)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providers.GeocodedPlace), args.Error(1)
}

// MockEventBus is an in-memory bus that delivers to subscribers synchronously
type MockEventBus struct {
	mu          sync.Mutex
	subscribers map[string][]chan *entities.QueueEvent
	subscribed  chan string
}

func NewMockEventBus() *MockEventBus {
	return &MockEventBus{
		subscribers: make(map[string][]chan *entities.QueueEvent),
		subscribed:  make(chan string, 8),
	}
}

func (m *MockEventBus) Publish(ctx context.Context, channel string, event *entities.QueueEvent) error {
	m.mu.Lock()
	channels := append([]chan *entities.QueueEvent(nil), m.subscribers[channel]...)
	m.mu.Unlock()

	for _, ch := range channels {
		ch <- event
	}
	return nil
}

func (m *MockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.QueueEvent, error) {
	m.mu.Lock()
	ch := make(chan *entities.QueueEvent, 10)
	m.subscribers[channel] = append(m.subscribers[channel], ch)
	m.mu.Unlock()

	m.subscribed <- channel
	return ch, nil
}

func (m *MockEventBus) Unsubscribe(ctx context.Context, channel string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subscribers[channel] {
		close(ch)
	}
	delete(m.subscribers, channel)
	return nil
}

func (m *MockEventBus) Close() error {
	return nil
}
