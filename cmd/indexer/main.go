package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/medifind/internal/adapters/search"
	"github.com/zatekoja/medifind/internal/application/services"
	"github.com/zatekoja/medifind/internal/domain/entities"
	"github.com/zatekoja/medifind/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/medifind/internal/infrastructure/observability"
	"github.com/zatekoja/medifind/pkg/config"
)

func main() {
	var (
		file         string
		reset        bool
		batchSize    int
		intervalFlag string
	)
	flag.StringVar(&file, "file", os.Getenv("MEDICINE_CATALOG_FILE"), "path to the JSON medicine catalog")
	flag.BoolVar(&reset, "reset", false, "delete the medicine collection before indexing")
	flag.IntVar(&batchSize, "batch", 100, "documents per upsert batch")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	observability.InitLogger("medifind-indexer", cfg.App.Env)

	if strings.TrimSpace(file) == "" {
		log.Fatal().Msg("a catalog file is required (-file or MEDICINE_CATALOG_FILE)")
	}

	var interval time.Duration
	if intervalFlag = strings.TrimSpace(intervalFlag); intervalFlag != "" {
		interval, err = time.ParseDuration(intervalFlag)
		if err != nil || interval <= 0 {
			log.Fatal().Str("interval", intervalFlag).Msg("Invalid interval")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tsClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Typesense client")
	}
	catalog := services.NewMedicineCatalogService(search.NewTypesenseAdapter(tsClient))

	for {
		if reset {
			if _, err := tsClient.Client().Collection(typesense.MedicinesCollection).Delete(ctx); err != nil {
				log.Warn().Err(err).Msg("Failed to delete medicine collection")
			}
			reset = false
		}

		if err := indexOnce(ctx, catalog, file, batchSize); err != nil {
			log.Error().Err(err).Msg("Reindex failed")
		}

		if interval <= 0 {
			return
		}

		log.Info().Dur("next_run_in", interval).Msg("Reindex complete")
		select {
		case <-ctx.Done():
			log.Info().Msg("Indexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func indexOnce(ctx context.Context, catalog *services.MedicineCatalogService, path string, batchSize int) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	medicines, skipped, err := readCatalog(f)
	if err != nil {
		return err
	}
	if skipped > 0 {
		log.Warn().Int("skipped", skipped).Msg("Skipped catalog entries without id or name")
	}

	loaded, err := catalog.Load(ctx, medicines, batchSize)
	if err != nil {
		return fmt.Errorf("indexed %d of %d medicines: %w", loaded, len(medicines), err)
	}
	log.Info().Int("medicines", loaded).Msg("Medicine catalog indexed")
	return nil
}

// readCatalog decodes a JSON array of medicines, dropping entries that
// cannot be indexed and collapsing duplicate ids to the last occurrence.
func readCatalog(r io.Reader) ([]*entities.Medicine, int, error) {
	var raw []*entities.Medicine
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, 0, fmt.Errorf("failed to decode catalog: %w", err)
	}

	skipped := 0
	position := make(map[string]int, len(raw))
	medicines := make([]*entities.Medicine, 0, len(raw))
	for _, m := range raw {
		if m == nil || strings.TrimSpace(m.ID) == "" || strings.TrimSpace(m.Name) == "" {
			skipped++
			continue
		}
		m.ID = strings.TrimSpace(m.ID)
		if i, ok := position[m.ID]; ok {
			medicines[i] = m
			continue
		}
		position[m.ID] = len(medicines)
		medicines = append(medicines, m)
	}
	return medicines, skipped, nil
}
