package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

type AuthorType string

const (
	AuthorUser         AuthorType = "User"
	AuthorOrganization AuthorType = "Organization"
)

func ValidAuthorType(t AuthorType) bool {
	switch t {
	case AuthorUser, AuthorOrganization:
		return true
	default:
		return false
	}
}

type BidStatus string

const (
	BidCreated   BidStatus = "Created"
	BidPublished BidStatus = "Published"
	BidCanceled  BidStatus = "Canceled"
)

func ValidBidStatus(t BidStatus) bool {
	switch t {
	case BidCreated, BidPublished, BidCanceled:
		return true
	default:
		return false
	}
}

// BidDecision is the owner's verdict on a bid. It lives in its own column
// and never touches the bid's lifecycle status.
type BidDecision string

const (
	DecisionApproved BidDecision = "Approved"
	DecisionRejected BidDecision = "Rejected"
)

func ValidBidDecision(d BidDecision) bool {
	switch d {
	case DecisionApproved, DecisionRejected:
		return true
	default:
		return false
	}
}

type Bid struct {
	Id          string         `db:"id" json:"id"`
	Name        string         `db:"name" json:"name"`
	Description string         `db:"description" json:"description"`
	Status      BidStatus      `db:"status" json:"status"`
	AuthorType  AuthorType     `db:"author_type" json:"authorType"`
	AuthorId    string         `db:"author_id" json:"authorId"`
	Version     int            `db:"version" json:"version"`
	Decision    sql.NullString `db:"decision" json:"-"`
	TenderId    string         `db:"tender_id" json:"tenderId"`
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time      `db:"updated_at" json:"-"`
}

// MarshalJSON renders decision as a plain string or null.
func (b Bid) MarshalJSON() ([]byte, error) {
	type alias Bid
	var decision *string
	if b.Decision.Valid {
		decision = &b.Decision.String
	}
	return json.Marshal(struct {
		alias
		Decision *string `json:"decision"`
	}{alias(b), decision})
}
