package models

import "errors"

var (
	ErrUnknownUser    = errors.New("provided user does not exist")
	ErrForbidden      = errors.New("provided user has no permission for this operation")
	ErrTenderNotFound = errors.New("requested tender does not exist")
	ErrBidNotFound    = errors.New("requested bid does not exist")
	ErrUnknownAuthor  = errors.New("bid author does not exist")
	ErrUnknownOrg     = errors.New("referenced organization does not exist")
)
