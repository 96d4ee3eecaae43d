package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
	"github.com/zatekoja/medifind/internal/domain/entities"
	"github.com/zatekoja/medifind/internal/domain/providers"
	tsclient "github.com/zatekoja/medifind/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/medifind/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/medifind/pkg/errors"
)

const (
	medicineQueryBy    = "name,generic_name,composition,tags"
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

// TypesenseAdapter implements the medicine index using Typesense
type TypesenseAdapter struct {
	client     *tsclient.Client
	collection string
}

var _ providers.MedicineIndex = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client, collection: tsclient.MedicinesCollection}
}

// EnsureCollection creates the medicine collection when it does not exist
func (a *TypesenseAdapter) EnsureCollection(ctx context.Context) error {
	if _, err := a.client.Client().Collection(a.collection).Retrieve(ctx); err == nil {
		return nil
	}

	schema := &api.CollectionSchema{
		Name: a.collection,
		Fields: []api.Field{
			{Name: "name", Type: "string"},
			{Name: "generic_name", Type: "string", Optional: pointer.True()},
			{Name: "manufacturer", Type: "string", Facet: pointer.True(), Optional: pointer.True()},
			{Name: "composition", Type: "string", Optional: pointer.True()},
			{Name: "category", Type: "string", Facet: pointer.True(), Optional: pointer.True()},
			{Name: "form", Type: "string", Facet: pointer.True(), Optional: pointer.True()},
			{Name: "price", Type: "float"},
			{Name: "prescription_required", Type: "bool", Facet: pointer.True()},
			{Name: "tags", Type: "string[]", Optional: pointer.True()},
		},
	}

	if _, err := a.client.Client().Collections().Create(ctx, schema); err != nil {
		return apperrors.NewExternalError("failed to create medicine collection", err)
	}

	observability.LoggerFromContext(ctx).Info().Str("collection", a.collection).Msg("Created Typesense collection")
	return nil
}

// Upsert indexes or replaces a batch of medicines
func (a *TypesenseAdapter) Upsert(ctx context.Context, medicines []*entities.Medicine) error {
	for _, m := range medicines {
		if m == nil || strings.TrimSpace(m.ID) == "" {
			return apperrors.NewValidationError("medicine id is required")
		}
		if _, err := a.client.Client().Collection(a.collection).Documents().Upsert(ctx, medicineDocument(m)); err != nil {
			return apperrors.NewExternalError(fmt.Sprintf("failed to index medicine %s", m.ID), err)
		}
	}
	return nil
}

// Search returns medicines matching query, best match first
func (a *TypesenseAdapter) Search(ctx context.Context, query string, limit int) ([]*entities.Medicine, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, apperrors.NewValidationError("search query is required")
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	params := &api.SearchCollectionParams{
		Q:       pointer.String(q),
		QueryBy: pointer.String(medicineQueryBy),
		PerPage: pointer.Int(limit),
	}

	result, err := a.client.Client().Collection(a.collection).Documents().Search(ctx, params)
	if err != nil {
		return nil, apperrors.NewExternalError("medicine search failed", err)
	}

	medicines := []*entities.Medicine{}
	if result.Hits == nil {
		return medicines, nil
	}
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		medicine, err := decodeMedicine(*hit.Document)
		if err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).Msg("Skipping undecodable medicine document")
			continue
		}
		medicines = append(medicines, medicine)
	}
	return medicines, nil
}

func medicineDocument(m *entities.Medicine) map[string]interface{} {
	doc := map[string]interface{}{
		"id":                    m.ID,
		"name":                  m.Name,
		"price":                 m.Price,
		"prescription_required": m.PrescriptionRequired,
	}
	optional := map[string]string{
		"generic_name": m.GenericName,
		"manufacturer": m.Manufacturer,
		"composition":  m.Composition,
		"category":     m.Category,
		"form":         m.Form,
	}
	for k, v := range optional {
		if v != "" {
			doc[k] = v
		}
	}
	if len(m.Tags) > 0 {
		doc["tags"] = m.Tags
	}
	return doc
}

// decodeMedicine maps a hit document back to the entity via its JSON tags
func decodeMedicine(doc map[string]interface{}) (*entities.Medicine, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var m entities.Medicine
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
