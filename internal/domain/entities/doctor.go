package entities

import "time"

// Doctor is a practitioner attached to a hospital who accepts token bookings
type Doctor struct {
	ID              string    `json:"id" db:"id"`
	HospitalID      string    `json:"hospital_id" db:"hospital_id"`
	Name            string    `json:"name" db:"name"`
	Specialization  string    `json:"specialization" db:"specialization"`
	Qualification   string    `json:"qualification,omitempty" db:"qualification"`
	ExperienceYears int       `json:"experience_years" db:"experience_years"`
	ConsultationFee float64   `json:"consultation_fee" db:"consultation_fee"`
	ImageURL        string    `json:"image_url,omitempty" db:"image_url"`
	IsActive        bool      `json:"is_active" db:"is_active"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}
