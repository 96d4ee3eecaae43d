package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/medifind/internal/adapters/database"
	"github.com/zatekoja/medifind/internal/domain/entities"
	"github.com/zatekoja/medifind/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/medifind/internal/infrastructure/observability"
	"github.com/zatekoja/medifind/pkg/config"
)

// seedDoctor is a doctor attached to one of the seeded hospitals
type seedDoctor struct {
	id, hospitalID, name, specialization, qualification string
	experience                                          int
	fee                                                 float64
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	observability.InitLogger("medifind-seed", cfg.App.Env)

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to DB")
	}
	defer pgClient.Close()

	ctx := context.Background()

	if os.Getenv("RESET_DB") == "true" {
		log.Info().Msg("RESET_DB=true detected, truncating tables before seeding")
		if _, err := pgClient.DB().ExecContext(ctx, `TRUNCATE TABLE appointments, doctors, facilities`); err != nil {
			log.Fatal().Err(err).Msg("Failed to reset tables")
		}
	}

	hospitals := []*entities.Facility{
		hospital("seed:hosp:pune-ruby", "Ruby Hall Clinic", "40 Sassoon Road, Pune, 411001", "Pune", "Maharashtra", 18.5308, 73.8776),
		hospital("seed:hosp:pune-sahyadri", "Sahyadri Hospital", "Karve Road, Erandwane, Pune, 411004", "Pune", "Maharashtra", 18.5089, 73.8326),
		hospital("seed:hosp:mumbai-kem", "KEM Hospital", "Acharya Donde Marg, Parel, Mumbai, 400012", "Mumbai City", "Maharashtra", 19.0024, 72.8416),
	}

	facilityRepo := database.NewFacilityAdapter(pgClient)
	if err := facilityRepo.UpsertMany(ctx, hospitals); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed hospitals")
	}
	log.Info().Int("hospitals", len(hospitals)).Msg("Seeded hospitals")

	doctors := []seedDoctor{
		{"seed:doc:rao", "seed:hosp:pune-ruby", "Dr. Anil Rao", "Cardiology", "MD, DM", 18, 800},
		{"seed:doc:kulkarni", "seed:hosp:pune-ruby", "Dr. Meera Kulkarni", "Pediatrics", "MD", 11, 500},
		{"seed:doc:joshi", "seed:hosp:pune-sahyadri", "Dr. Sameer Joshi", "Orthopedics", "MS", 15, 700},
		{"seed:doc:shah", "seed:hosp:mumbai-kem", "Dr. Priya Shah", "General Medicine", "MBBS, MD", 8, 300},
	}

	now := time.Now().UTC()
	rows := make([]interface{}, 0, len(doctors))
	for _, d := range doctors {
		rows = append(rows, goqu.Record{
			"id":               d.id,
			"hospital_id":      d.hospitalID,
			"name":             d.name,
			"specialization":   d.specialization,
			"qualification":    d.qualification,
			"experience_years": d.experience,
			"consultation_fee": d.fee,
			"is_active":        true,
			"created_at":       now,
			"updated_at":       now,
		})
	}

	query, args, err := goqu.Dialect("postgres").Insert("doctors").
		Rows(rows...).
		OnConflict(goqu.DoNothing()).
		ToSQL()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build doctor insert")
	}
	if _, err := pgClient.DB().ExecContext(ctx, query, args...); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed doctors")
	}
	log.Info().Int("doctors", len(doctors)).Msg("Seeded doctors")
}

func hospital(id, name, address, district, state string, lat, lon float64) *entities.Facility {
	return &entities.Facility{
		ID:       id,
		Name:     name,
		Type:     entities.FacilityTypeHospital,
		Address:  address,
		Location: &entities.Location{Latitude: lat, Longitude: lon},
		District: district,
		State:    state,
	}
}
