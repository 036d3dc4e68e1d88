package main

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"vendor-compliance/backend/internal/config"
	"vendor-compliance/backend/internal/logging"
	"vendor-compliance/backend/internal/repository"
	"vendor-compliance/backend/internal/workflow"
	"vendor-compliance/backend/pkg/models"
)

const seedUser = "demo@vendor-compliance.local"

func main() {
	ctx := context.Background()
	logger := logging.NewLogger()

	_ = godotenv.Load()

	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to DB
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.SSLMode,
	)
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pool.Close()

	repo := repository.NewPostgresRepository(pool)

	// The workflow schema drives what a demo application needs: one document
	// per file input, sample values elsewhere.
	schema, err := workflow.NewLoader(cfg.Workflow.SchemaPaths...).Load()
	if err != nil {
		log.Fatalf("Failed to load workflow schema: %v", err)
	}

	app := &models.Application{
		ID:         uuid.New().String(),
		VendorName: "Acme Logistics",
		Status:     models.ApplicationStatusSubmitted,
		Contact: map[string]interface{}{
			"name":  "Dana Reyes",
			"email": "dana.reyes@acme-logistics.example",
			"phone": "+1-555-0134",
		},
		CreatedBy: seedUser,
	}
	if err := repo.CreateApplication(ctx, app); err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}
	logger.Info("Seeded application", "id", app.ID, "vendor", app.VendorName)

	for key, variable := range schema.Inputs {
		if variable == nil || variable.Type != workflow.TypeFile {
			if sample := workflow.SampleValue(variable); sample != nil {
				logger.Debug("Sample value available", "input", key)
			}
			continue
		}

		filename := repository.SanitizeFilename(key + ".pdf")
		doc := &models.ApplicationDocument{
			ID:            uuid.New().String(),
			ApplicationID: app.ID,
			InputKey:      key,
			StoragePath:   repository.BuildDocumentPath(seedUser, app.ID, key, filename),
			Filename:      filename,
			MimeType:      workflow.MimeTypeForFilename(filename),
		}
		if err := repo.AddDocument(ctx, doc); err != nil {
			log.Printf("Failed to seed document for %s: %v", key, err)
			continue
		}
		logger.Info("Seeded document", "input", key, "path", doc.StoragePath)
	}

	logger.Info("Seeding complete!")
}
