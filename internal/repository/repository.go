package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tendermarket/internal/config"
	"tendermarket/internal/models"

	postgres "tendermarket/internal/repository/db"

	"github.com/jmoiron/sqlx"
)

type Repository struct {
	db  *sqlx.DB
	cfg *config.PostgresConfig
}

func NewRepository(db *sqlx.DB, cfg *config.PostgresConfig) (*Repository, error) {
	var err error

	repo := &Repository{
		db:  db,
		cfg: cfg,
	}

	if repo.cfg == nil {
		repo.cfg, err = config.NewPostgresConfig()
		if err != nil {
			return nil, fmt.Errorf("repository.NewRepository: could not load postgres config: %w", err)
		}
	}

	if repo.db == nil {
		repo.db, err = postgres.NewPostgresDB(repo.cfg)
		if err != nil {
			return nil, fmt.Errorf("repository.NewRepository: could not open postgres db: %w", err)
		}
	}

	if repo.cfg.AutoMigrateUp {
		err = repo.MigrateUp()
		if err != nil {
			return nil, err
		}
	}

	return repo, nil
}

func (repo *Repository) MigrateUp() error {
	err := postgres.MigrateUp(repo.db.DB)
	if err != nil {
		return fmt.Errorf("repository.Repository.MigrateUp: %w", err)
	}
	return nil
}

func (repo *Repository) MigrateDown() error {
	err := postgres.MigrateDown(repo.db.DB)
	if err != nil {
		return fmt.Errorf("repository.Repository.MigrateDown: %w", err)
	}
	return nil
}

func (repo *Repository) Close() error {
	var migErr error
	if repo.cfg.AutoMigrateDown {
		migErr = repo.MigrateDown()
	}

	err := repo.db.Close()
	return errors.Join(migErr, err)
}

//// Users and organizations

func (repo *Repository) UserByUsername(ctx context.Context, username string) (models.User, bool, error) {
	var user models.User
	query := `
	SELECT id, username, first_name, last_name, created_at, updated_at
	FROM employee
	WHERE username = $1
	LIMIT 1
	`
	err := repo.db.GetContext(ctx, &user, query, username)
	if errors.Is(err, sql.ErrNoRows) {
		return user, false, nil
	} else if err != nil {
		return user, false, fmt.Errorf("repository.Repository.UserByUsername: %w", err)
	}

	return user, true, nil
}

func (repo *Repository) UserByUUID(ctx context.Context, id string) (models.User, bool, error) {
	var user models.User
	query := `
	SELECT id, username, first_name, last_name, created_at, updated_at
	FROM employee
	WHERE id = $1
	LIMIT 1
	`
	err := repo.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return user, false, nil
	} else if err != nil {
		return user, false, fmt.Errorf("repository.Repository.UserByUUID: %w", err)
	}

	return user, true, nil
}

func (repo *Repository) OrganizationByUUID(ctx context.Context, id string) (models.Organization, bool, error) {
	var org models.Organization
	query := `
	SELECT id, name, description, type, created_at, updated_at
	FROM organization
	WHERE id = $1
	LIMIT 1
	`
	err := repo.db.GetContext(ctx, &org, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return org, false, nil
	} else if err != nil {
		return org, false, fmt.Errorf("repository.Repository.OrganizationByUUID: %w", err)
	}

	return org, true, nil
}

// UserResponsible reports whether the user may act on behalf of the organization.
func (repo *Repository) UserResponsible(ctx context.Context, userId, organizationId string) (bool, error) {
	var count int
	query := `SELECT COUNT(1) FROM organization_responsible WHERE organization_id = $1 AND user_id = $2`

	err := repo.db.GetContext(ctx, &count, query, organizationId, userId)
	if err != nil {
		return false, fmt.Errorf("repository.Repository.UserResponsible: %w", err)
	}
	return count > 0, nil
}

//// Test utils

func (repo *Repository) TestGetDB() *sqlx.DB {
	return repo.db
}
