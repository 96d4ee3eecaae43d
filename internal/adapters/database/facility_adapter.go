package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"
	"github.com/zatekoja/medifind/internal/domain/entities"
	"github.com/zatekoja/medifind/internal/domain/repositories"
	"github.com/zatekoja/medifind/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/medifind/pkg/errors"
)

const facilitiesTable = "facilities"

var facilityColumns = []interface{}{
	"id", "name", "type", "address", "latitude", "longitude",
	"phone", "website", "rating", "open_now", "district", "state",
	"image_url", "services", "created_at", "updated_at",
}

// FacilityAdapter implements the FacilityRepository interface
type FacilityAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewFacilityAdapter creates a new facility adapter
func NewFacilityAdapter(client *postgres.Client) repositories.FacilityRepository {
	return &FacilityAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetByID retrieves a facility by ID
func (a *FacilityAdapter) GetByID(ctx context.Context, id string) (*entities.Facility, error) {
	query, args, err := a.db.From(facilitiesTable).
		Select(facilityColumns...).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	facility, err := scanFacility(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("facility with id %s not found", id))
	}
	if err != nil {
		return nil, wrapError("failed to get facility", err)
	}

	return facility, nil
}

// Find returns stored facilities matching the query
func (a *FacilityAdapter) Find(ctx context.Context, q repositories.FacilityQuery) ([]*entities.Facility, error) {
	ds := a.db.From(facilitiesTable).Select(facilityColumns...)

	if len(q.Types) > 0 {
		types := make([]string, len(q.Types))
		for i, t := range q.Types {
			types[i] = string(t)
		}
		ds = ds.Where(goqu.C("type").In(types))
	}

	switch {
	case q.District != "":
		ds = ds.Where(goqu.C("district").ILike(containsPattern(q.District)))
	case q.State != "":
		ds = ds.Where(goqu.C("state").ILike(containsPattern(q.State)))
	case q.Bounds != nil:
		ds = ds.Where(
			goqu.C("latitude").Between(goqu.Range(q.Bounds.MinLat, q.Bounds.MaxLat)),
			goqu.C("longitude").Between(goqu.Range(q.Bounds.MinLon, q.Bounds.MaxLon)),
		)
	}

	ds = ds.Order(goqu.I("name").Asc())
	if q.Limit > 0 {
		ds = ds.Limit(uint(q.Limit))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build search query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapError("failed to query facilities", err)
	}
	defer rows.Close()

	facilities := make([]*entities.Facility, 0)
	for rows.Next() {
		facility, err := scanFacility(rows)
		if err != nil {
			return nil, wrapError("failed to scan facility", err)
		}
		facilities = append(facilities, facility)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError("failed to iterate facilities", err)
	}

	return facilities, nil
}

// UpsertMany inserts facilities or refreshes existing rows with the same ID.
// created_at is preserved on conflict.
func (a *FacilityAdapter) UpsertMany(ctx context.Context, facilities []*entities.Facility) error {
	if len(facilities) == 0 {
		return nil
	}

	now := time.Now().UTC()
	rows := make([]interface{}, 0, len(facilities))
	for _, f := range facilities {
		rows = append(rows, facilityRecord(f, now))
	}

	update := goqu.Record{"updated_at": goqu.L("EXCLUDED.updated_at")}
	for _, col := range []string{
		"name", "type", "address", "latitude", "longitude", "phone", "website",
		"rating", "open_now", "district", "state", "image_url", "services",
	} {
		update[col] = goqu.L("EXCLUDED." + col)
	}

	query, args, err := a.db.Insert(facilitiesTable).
		Rows(rows...).
		OnConflict(goqu.DoUpdate("id", update)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build upsert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return wrapError("failed to upsert facilities", err)
	}
	return nil
}

func facilityRecord(f *entities.Facility, now time.Time) goqu.Record {
	var lat, lon interface{}
	if f.Location != nil {
		lat, lon = f.Location.Latitude, f.Location.Longitude
	}
	var rating, openNow interface{}
	if f.Rating != nil {
		rating = *f.Rating
	}
	if f.OpenNow != nil {
		openNow = *f.OpenNow
	}
	services := f.Services
	if services == nil {
		services = []string{}
	}

	return goqu.Record{
		"id":         f.ID,
		"name":       f.Name,
		"type":       string(f.Type),
		"address":    f.Address,
		"latitude":   lat,
		"longitude":  lon,
		"phone":      f.Phone,
		"website":    f.Website,
		"rating":     rating,
		"open_now":   openNow,
		"district":   f.District,
		"state":      f.State,
		"image_url":  f.ImageURL,
		"services":   pq.Array(services),
		"created_at": now,
		"updated_at": now,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFacility(row rowScanner) (*entities.Facility, error) {
	f := &entities.Facility{}
	var (
		facilityType             string
		lat, lon, rating         sql.NullFloat64
		openNow                  sql.NullBool
		phone, website, district sql.NullString
		state, imageURL          sql.NullString
		services                 pq.StringArray
	)

	err := row.Scan(
		&f.ID,
		&f.Name,
		&facilityType,
		&f.Address,
		&lat,
		&lon,
		&phone,
		&website,
		&rating,
		&openNow,
		&district,
		&state,
		&imageURL,
		&services,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	f.Type = entities.FacilityType(facilityType)
	if lat.Valid && lon.Valid {
		f.Location = &entities.Location{Latitude: lat.Float64, Longitude: lon.Float64}
	}
	if rating.Valid {
		r := rating.Float64
		f.Rating = &r
	}
	if openNow.Valid {
		o := openNow.Bool
		f.OpenNow = &o
	}
	if f.Address == "" {
		f.Address = entities.AddressUnavailable
	}
	f.Phone = phone.String
	f.Website = website.String
	f.District = district.String
	f.State = state.String
	f.ImageURL = imageURL.String
	f.Services = []string(services)

	return f, nil
}
