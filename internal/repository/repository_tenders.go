package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"tendermarket/internal/models"
)

// NoLimit disables the row bound on list filters. An explicit limit of 0
// is a real bound and returns an empty page.
const NoLimit = -1

// TenderFilter narrows tender listings. Zero values mean "no condition",
// except Limit, where 0 bounds the listing to zero rows.
type TenderFilter struct {
	ServiceTypes    []models.ServiceType
	CreatorUsername string
	Limit           int
	Offset          int
}

const tenderColumns = `id, name, description, service_type, status, version, organization_id, creator_username, created_at, updated_at`

func (repo *Repository) AddTender(ctx context.Context, t models.Tender) (models.Tender, error) {
	query := `
	INSERT INTO tenders
		(name, description, service_type, status, version, organization_id, creator_username)
	VALUES
		($1, $2, $3, 'Created', 1, $4, $5)
	RETURNING ` + tenderColumns

	var result models.Tender
	err := repo.db.GetContext(ctx, &result, query,
		t.Name, t.Description, t.ServiceType, t.OrganizationId, t.CreatorUsername)
	if err != nil {
		return result, fmt.Errorf("repository.Repository.AddTender: %w", err)
	}

	return result, nil
}

// GetTenders lists tenders ordered by name ascending. The ordering the API
// guarantees is produced here, in the one query that fetches the rows.
func (repo *Repository) GetTenders(ctx context.Context, filter TenderFilter) ([]models.Tender, error) {
	query := `SELECT ` + tenderColumns + ` FROM tenders`

	args := make([]interface{}, 0, 4)
	conditions := make([]string, 0, 2)

	if len(filter.ServiceTypes) > 0 {
		placeholders := make([]string, len(filter.ServiceTypes))
		for i, st := range filter.ServiceTypes {
			args = append(args, st)
			placeholders[i] = "$" + strconv.Itoa(len(args))
		}
		conditions = append(conditions, "service_type IN ("+strings.Join(placeholders, ", ")+")")
	}

	if filter.CreatorUsername != "" {
		args = append(args, filter.CreatorUsername)
		conditions = append(conditions, "creator_username = $"+strconv.Itoa(len(args)))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY name ASC"

	// a negative limit disables the bound: LIMIT NULL returns every row
	if filter.Limit >= 0 {
		args = append(args, filter.Limit)
	} else {
		args = append(args, nil)
	}
	query += " LIMIT $" + strconv.Itoa(len(args))
	args = append(args, filter.Offset)
	query += " OFFSET $" + strconv.Itoa(len(args))

	tenders := []models.Tender{}
	err := repo.db.SelectContext(ctx, &tenders, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.GetTenders: %w", err)
	}

	return tenders, nil
}

func (repo *Repository) TenderByUUID(ctx context.Context, id string) (models.Tender, bool, error) {
	var tender models.Tender
	query := `SELECT ` + tenderColumns + ` FROM tenders WHERE id = $1 LIMIT 1`

	err := repo.db.GetContext(ctx, &tender, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return tender, false, nil
	} else if err != nil {
		return tender, false, fmt.Errorf("repository.Repository.TenderByUUID: %w", err)
	}

	return tender, true, nil
}

// UpdateTender applies an edit in a single statement so the returned row is
// exactly the post-edit state. The version bump happens in the same statement.
func (repo *Repository) UpdateTender(ctx context.Context, id, name, description string, serviceType models.ServiceType) (models.Tender, bool, error) {
	query := `
	UPDATE tenders
	SET name = $1, description = $2, service_type = $3,
	    version = version + 1, updated_at = CURRENT_TIMESTAMP
	WHERE id = $4
	RETURNING ` + tenderColumns

	var tender models.Tender
	err := repo.db.GetContext(ctx, &tender, query, name, description, serviceType, id)
	if errors.Is(err, sql.ErrNoRows) {
		return tender, false, nil
	} else if err != nil {
		return tender, false, fmt.Errorf("repository.Repository.UpdateTender: %w", err)
	}

	return tender, true, nil
}

// SetTenderStatus changes the lifecycle status without touching the version.
func (repo *Repository) SetTenderStatus(ctx context.Context, id string, status models.TenderStatus) (models.Tender, bool, error) {
	query := `
	UPDATE tenders
	SET status = $1, updated_at = CURRENT_TIMESTAMP
	WHERE id = $2
	RETURNING ` + tenderColumns

	var tender models.Tender
	err := repo.db.GetContext(ctx, &tender, query, status, id)
	if errors.Is(err, sql.ErrNoRows) {
		return tender, false, nil
	} else if err != nil {
		return tender, false, fmt.Errorf("repository.Repository.SetTenderStatus: %w", err)
	}

	return tender, true, nil
}

func (repo *Repository) DeleteTender(ctx context.Context, id string) error {
	_, err := repo.db.ExecContext(ctx, "DELETE FROM tenders WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("repository.Repository.DeleteTender: %w", err)
	}
	return nil
}
