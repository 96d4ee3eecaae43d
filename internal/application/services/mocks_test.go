package services_test

import (
	"context"
	"strings"
	"sync"

	"github.com/stretchr/testify/mock"
	"github.com/zatekoja/medifind/internal/domain/entities"
	"github.com/zatekoja/medifind/internal/domain/providers"
	"github.com/zatekoja/medifind/internal/domain/repositories"
	apperrors "github.com/zatekoja/medifind/pkg/errors"
)

// Mocks

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

type MockPOIProvider struct {
	mock.Mock
}

func (m *MockPOIProvider) SearchAround(ctx context.Context, center providers.Coordinates, radiusMeters int, types []entities.FacilityType) ([]providers.POIRecord, error) {
	args := m.Called(ctx, center, radiusMeters, types)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]providers.POIRecord), args.Error(1)
}

func (m *MockPOIProvider) SearchInArea(ctx context.Context, areaName string, types []entities.FacilityType) ([]providers.POIRecord, error) {
	args := m.Called(ctx, areaName, types)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]providers.POIRecord), args.Error(1)
}

type MockFacilityRepository struct {
	mock.Mock
}

func (m *MockFacilityRepository) GetByID(ctx context.Context, id string) (*entities.Facility, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Facility), args.Error(1)
}

func (m *MockFacilityRepository) Find(ctx context.Context, query repositories.FacilityQuery) ([]*entities.Facility, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Facility), args.Error(1)
}

func (m *MockFacilityRepository) UpsertMany(ctx context.Context, facilities []*entities.Facility) error {
	args := m.Called(ctx, facilities)
	return args.Error(0)
}

type MockAppointmentRepository struct {
	mock.Mock
}

func (m *MockAppointmentRepository) CreateAllocated(ctx context.Context, appointment *entities.Appointment, assign repositories.TokenAssigner) error {
	args := m.Called(ctx, appointment, assign)
	return args.Error(0)
}

func (m *MockAppointmentRepository) MaxTokenNumber(ctx context.Context, doctorID, date string) (int, error) {
	args := m.Called(ctx, doctorID, date)
	return args.Int(0), args.Error(1)
}

func (m *MockAppointmentRepository) GetByID(ctx context.Context, id string) (*entities.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) UpdateStatus(ctx context.Context, id string, from, to entities.AppointmentStatus) (*entities.Appointment, error) {
	args := m.Called(ctx, id, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) ListByPatient(ctx context.Context, patientID string, filter repositories.AppointmentFilter) ([]*entities.Appointment, error) {
	args := m.Called(ctx, patientID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) List(ctx context.Context, filter repositories.AppointmentFilter) ([]*entities.Appointment, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Appointment), args.Error(1)
}

type MockDoctorRepository struct {
	mock.Mock
}

func (m *MockDoctorRepository) GetByID(ctx context.Context, id string) (*entities.Doctor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Doctor), args.Error(1)
}

func (m *MockDoctorRepository) List(ctx context.Context, filter repositories.DoctorFilter) ([]*entities.Doctor, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Doctor), args.Error(1)
}

type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) Publish(ctx context.Context, channel string, event *entities.QueueEvent) error {
	args := m.Called(ctx, channel, event)
	return args.Error(0)
}

func (m *MockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.QueueEvent, error) {
	args := m.Called(ctx, channel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan *entities.QueueEvent), args.Error(1)
}

func (m *MockEventBus) Unsubscribe(ctx context.Context, channel string) error {
	return m.Called(ctx, channel).Error(0)
}

func (m *MockEventBus) Close() error {
	return m.Called().Error(0)
}

type MockMedicineIndex struct {
	mock.Mock
}

func (m *MockMedicineIndex) EnsureCollection(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockMedicineIndex) Upsert(ctx context.Context, medicines []*entities.Medicine) error {
	return m.Called(ctx, medicines).Error(0)
}

func (m *MockMedicineIndex) Search(ctx context.Context, query string, limit int) ([]*entities.Medicine, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Medicine), args.Error(1)
}

// memoryFacilityStore is a FacilityRepository that keeps rows in memory and
// filters the way the SQL adapter does.
type memoryFacilityStore struct {
	mu   sync.Mutex
	rows map[string]entities.Facility
}

func newMemoryFacilityStore() *memoryFacilityStore {
	return &memoryFacilityStore{rows: make(map[string]entities.Facility)}
}

func (s *memoryFacilityStore) GetByID(_ context.Context, id string) (*entities.Facility, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.rows[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("facility not found")
	}
	return &f, nil
}

func (s *memoryFacilityStore) Find(_ context.Context, q repositories.FacilityQuery) ([]*entities.Facility, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*entities.Facility
	for _, f := range s.rows {
		if !hasType(q.Types, f.Type) {
			continue
		}
		switch {
		case q.District != "":
			if !containsFold(f.District, q.District) {
				continue
			}
		case q.State != "":
			if !containsFold(f.State, q.State) {
				continue
			}
		case q.Bounds != nil:
			if f.Location == nil ||
				f.Location.Latitude < q.Bounds.MinLat || f.Location.Latitude > q.Bounds.MaxLat ||
				f.Location.Longitude < q.Bounds.MinLon || f.Location.Longitude > q.Bounds.MaxLon {
				continue
			}
		}
		c := f
		out = append(out, &c)
	}
	return out, nil
}

func (s *memoryFacilityStore) UpsertMany(_ context.Context, facilities []*entities.Facility) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range facilities {
		s.rows[f.ID] = *f
	}
	return nil
}

func hasType(types []entities.FacilityType, t entities.FacilityType) bool {
	if len(types) == 0 {
		return true
	}
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// fakeIdentityVerifier accepts only the tokens it was given
type fakeIdentityVerifier map[string]providers.Identity

func (f fakeIdentityVerifier) Verify(_ context.Context, token string) (*providers.Identity, error) {
	identity, ok := f[token]
	if !ok {
		return nil, apperrors.NewUnauthorizedError("invalid identity token")
	}
	return &identity, nil
}
