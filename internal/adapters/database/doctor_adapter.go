package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/zatekoja/medifind/internal/domain/entities"
	"github.com/zatekoja/medifind/internal/domain/repositories"
	"github.com/zatekoja/medifind/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/medifind/pkg/errors"
)

const doctorsTable = "doctors"

var doctorColumns = []interface{}{
	"id", "hospital_id", "name", "specialization", "qualification",
	"experience_years", "consultation_fee", "image_url", "is_active",
	"created_at", "updated_at",
}

// DoctorAdapter implements the DoctorRepository interface
type DoctorAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewDoctorAdapter creates a new doctor adapter
func NewDoctorAdapter(client *postgres.Client) repositories.DoctorRepository {
	return &DoctorAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetByID retrieves an active doctor by ID
func (a *DoctorAdapter) GetByID(ctx context.Context, id string) (*entities.Doctor, error) {
	query, args, err := a.db.From(doctorsTable).
		Select(doctorColumns...).
		Where(goqu.Ex{"id": id, "is_active": true}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	doctor, err := scanDoctor(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("doctor with id %s not found", id))
	}
	if err != nil {
		return nil, wrapError("failed to get doctor", err)
	}
	return doctor, nil
}

// List retrieves active doctors
func (a *DoctorAdapter) List(ctx context.Context, filter repositories.DoctorFilter) ([]*entities.Doctor, error) {
	ds := a.db.From(doctorsTable).
		Select(doctorColumns...).
		Where(goqu.Ex{"is_active": true})

	if filter.HospitalID != "" {
		ds = ds.Where(goqu.Ex{"hospital_id": filter.HospitalID})
	}
	if filter.Specialization != "" {
		ds = ds.Where(goqu.C("specialization").ILike(containsPattern(filter.Specialization)))
	}
	ds = ds.Order(goqu.I("name").Asc())
	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapError("failed to list doctors", err)
	}
	defer rows.Close()

	doctors := make([]*entities.Doctor, 0)
	for rows.Next() {
		doctor, err := scanDoctor(rows)
		if err != nil {
			return nil, wrapError("failed to scan doctor", err)
		}
		doctors = append(doctors, doctor)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError("failed to iterate doctors", err)
	}
	return doctors, nil
}

func scanDoctor(row rowScanner) (*entities.Doctor, error) {
	d := &entities.Doctor{}
	var qualification, imageURL sql.NullString

	err := row.Scan(
		&d.ID,
		&d.HospitalID,
		&d.Name,
		&d.Specialization,
		&qualification,
		&d.ExperienceYears,
		&d.ConsultationFee,
		&imageURL,
		&d.IsActive,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.Qualification = qualification.String
	d.ImageURL = imageURL.String
	return d, nil
}
