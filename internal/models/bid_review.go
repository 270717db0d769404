package models

import "time"

// BidReview is append-only feedback left by a tender owner on a bid.
type BidReview struct {
	Id          string    `db:"id" json:"id"`
	Username    string    `db:"username" json:"username"`
	Description string    `db:"description" json:"description"`
	BidId       string    `db:"bid_id" json:"bidId"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"-"`
}
