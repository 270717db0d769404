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

// BidFilter narrows bid listings. Zero values mean "no condition",
// except Limit, where 0 bounds the listing to zero rows.
type BidFilter struct {
	AuthorId string
	TenderId string
	Limit    int
	Offset   int
}

const bidColumns = `id, name, description, status, author_type, author_id, version, decision, tender_id, created_at, updated_at`

func (repo *Repository) AddBid(ctx context.Context, b models.Bid) (models.Bid, error) {
	query := `
	INSERT INTO bids
		(name, description, status, author_type, author_id, version, tender_id)
	VALUES
		($1, $2, 'Created', $3, $4, 1, $5)
	RETURNING ` + bidColumns

	var result models.Bid
	err := repo.db.GetContext(ctx, &result, query,
		b.Name, b.Description, b.AuthorType, b.AuthorId, b.TenderId)
	if err != nil {
		return result, fmt.Errorf("repository.Repository.AddBid: %w", err)
	}

	return result, nil
}

// GetBids lists bids ordered by name ascending. Ownership filtering goes
// through author_id only; there is no username join here.
func (repo *Repository) GetBids(ctx context.Context, filter BidFilter) ([]models.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids`

	args := make([]interface{}, 0, 4)
	conditions := make([]string, 0, 2)

	if filter.AuthorId != "" {
		args = append(args, filter.AuthorId)
		conditions = append(conditions, "author_id = $"+strconv.Itoa(len(args)))
	}

	if filter.TenderId != "" {
		args = append(args, filter.TenderId)
		conditions = append(conditions, "tender_id = $"+strconv.Itoa(len(args)))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY name ASC"

	// a negative limit disables the bound, same as the tender listing
	if filter.Limit >= 0 {
		args = append(args, filter.Limit)
	} else {
		args = append(args, nil)
	}
	query += " LIMIT $" + strconv.Itoa(len(args))
	args = append(args, filter.Offset)
	query += " OFFSET $" + strconv.Itoa(len(args))

	bids := []models.Bid{}
	err := repo.db.SelectContext(ctx, &bids, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.GetBids: %w", err)
	}

	return bids, nil
}

func (repo *Repository) BidByUUID(ctx context.Context, id string) (models.Bid, bool, error) {
	var bid models.Bid
	query := `SELECT ` + bidColumns + ` FROM bids WHERE id = $1 LIMIT 1`

	err := repo.db.GetContext(ctx, &bid, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return bid, false, nil
	} else if err != nil {
		return bid, false, fmt.Errorf("repository.Repository.BidByUUID: %w", err)
	}

	return bid, true, nil
}

// UpdateBid edits name/description and bumps the version in one statement.
func (repo *Repository) UpdateBid(ctx context.Context, id, name, description string) (models.Bid, bool, error) {
	query := `
	UPDATE bids
	SET name = $1, description = $2,
	    version = version + 1, updated_at = CURRENT_TIMESTAMP
	WHERE id = $3
	RETURNING ` + bidColumns

	var bid models.Bid
	err := repo.db.GetContext(ctx, &bid, query, name, description, id)
	if errors.Is(err, sql.ErrNoRows) {
		return bid, false, nil
	} else if err != nil {
		return bid, false, fmt.Errorf("repository.Repository.UpdateBid: %w", err)
	}

	return bid, true, nil
}

// SetBidDecision records the verdict. The lifecycle status and version are
// left alone: a decision is not an edit.
func (repo *Repository) SetBidDecision(ctx context.Context, id string, decision models.BidDecision) (models.Bid, bool, error) {
	query := `
	UPDATE bids
	SET decision = $1, updated_at = CURRENT_TIMESTAMP
	WHERE id = $2
	RETURNING ` + bidColumns

	var bid models.Bid
	err := repo.db.GetContext(ctx, &bid, query, decision, id)
	if errors.Is(err, sql.ErrNoRows) {
		return bid, false, nil
	} else if err != nil {
		return bid, false, fmt.Errorf("repository.Repository.SetBidDecision: %w", err)
	}

	return bid, true, nil
}

func (repo *Repository) DeleteBid(ctx context.Context, id string) error {
	_, err := repo.db.ExecContext(ctx, "DELETE FROM bids WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("repository.Repository.DeleteBid: %w", err)
	}
	return nil
}
