package repository

import (
	"context"
	"fmt"

	"tendermarket/internal/models"
)

const reviewColumns = `id, username, description, bid_id, created_at, updated_at`

func (repo *Repository) AddReview(ctx context.Context, review models.BidReview) (models.BidReview, error) {
	query := `
	INSERT INTO bid_reviews (username, description, bid_id)
	VALUES ($1, $2, $3)
	RETURNING ` + reviewColumns

	var result models.BidReview
	err := repo.db.GetContext(ctx, &result, query, review.Username, review.Description, review.BidId)
	if err != nil {
		return result, fmt.Errorf("repository.Repository.AddReview: %w", err)
	}

	return result, nil
}

func (repo *Repository) ReviewsByBid(ctx context.Context, bidId string) ([]models.BidReview, error) {
	query := `SELECT ` + reviewColumns + ` FROM bid_reviews WHERE bid_id = $1 ORDER BY created_at DESC`

	reviews := []models.BidReview{}
	err := repo.db.SelectContext(ctx, &reviews, query, bidId)
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.ReviewsByBid: %w", err)
	}

	return reviews, nil
}

// ReviewsByAuthorForTender returns feedback left on bids a given author
// submitted against a tender, newest first.
func (repo *Repository) ReviewsByAuthorForTender(ctx context.Context, authorId, tenderId string, limit, offset int) ([]models.BidReview, error) {
	query := `
	SELECT r.id, r.username, r.description, r.bid_id, r.created_at, r.updated_at
	FROM bid_reviews r
	JOIN bids b ON r.bid_id = b.id
	WHERE b.author_id = $1 AND b.tender_id = $2
	ORDER BY r.created_at DESC
	LIMIT $3 OFFSET $4
	`

	reviews := []models.BidReview{}
	err := repo.db.SelectContext(ctx, &reviews, query, authorId, tenderId, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.ReviewsByAuthorForTender: %w", err)
	}

	return reviews, nil
}
