package service

import (
	"context"
	"fmt"

	"tendermarket/internal/models"
	"tendermarket/internal/repository"
)

// Storage is the data access surface the service depends on.
type Storage interface {
	UserByUsername(ctx context.Context, username string) (models.User, bool, error)
	UserByUUID(ctx context.Context, id string) (models.User, bool, error)
	OrganizationByUUID(ctx context.Context, id string) (models.Organization, bool, error)
	UserResponsible(ctx context.Context, userId, organizationId string) (bool, error)

	AddTender(ctx context.Context, t models.Tender) (models.Tender, error)
	GetTenders(ctx context.Context, filter repository.TenderFilter) ([]models.Tender, error)
	TenderByUUID(ctx context.Context, id string) (models.Tender, bool, error)
	UpdateTender(ctx context.Context, id, name, description string, serviceType models.ServiceType) (models.Tender, bool, error)
	SetTenderStatus(ctx context.Context, id string, status models.TenderStatus) (models.Tender, bool, error)

	AddBid(ctx context.Context, b models.Bid) (models.Bid, error)
	GetBids(ctx context.Context, filter repository.BidFilter) ([]models.Bid, error)
	BidByUUID(ctx context.Context, id string) (models.Bid, bool, error)
	UpdateBid(ctx context.Context, id, name, description string) (models.Bid, bool, error)
	SetBidDecision(ctx context.Context, id string, decision models.BidDecision) (models.Bid, bool, error)

	AddReview(ctx context.Context, review models.BidReview) (models.BidReview, error)
	ReviewsByAuthorForTender(ctx context.Context, authorId, tenderId string, limit, offset int) ([]models.BidReview, error)
}

type Service struct {
	repo Storage
}

func NewService(repo Storage) *Service {
	return &Service{repo: repo}
}

//// Tenders

func (s *Service) AddTender(ctx context.Context, tender models.Tender) (models.Tender, error) {
	// existence gate on the creator
	_, err := s.userByUsername(ctx, tender.CreatorUsername)
	if err != nil {
		return models.Tender{}, fmt.Errorf("service.Service.AddTender: %w", err)
	}

	_, ok, err := s.repo.OrganizationByUUID(ctx, tender.OrganizationId)
	if err != nil {
		return models.Tender{}, fmt.Errorf("service.Service.AddTender: %w", err)
	}
	if !ok {
		return models.Tender{}, fmt.Errorf("service.Service.AddTender: %w: %s", models.ErrUnknownOrg, tender.OrganizationId)
	}

	tender, err = s.repo.AddTender(ctx, tender)
	if err != nil {
		return models.Tender{}, fmt.Errorf("service.Service.AddTender: %w", err)
	}

	return tender, nil
}

func (s *Service) GetTenders(ctx context.Context, limit, offset int, serviceTypes []models.ServiceType) ([]models.Tender, error) {
	tenders, err := s.repo.GetTenders(ctx, repository.TenderFilter{
		ServiceTypes: serviceTypes,
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		return nil, fmt.Errorf("service.Service.GetTenders: %w", err)
	}
	return tenders, nil
}

func (s *Service) GetUserTenders(ctx context.Context, username string, limit, offset int) ([]models.Tender, error) {
	user, err := s.userByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("service.Service.GetUserTenders: %w", err)
	}

	tenders, err := s.repo.GetTenders(ctx, repository.TenderFilter{
		CreatorUsername: user.Username,
		Limit:           limit,
		Offset:          offset,
	})
	if err != nil {
		return nil, fmt.Errorf("service.Service.GetUserTenders: %w", err)
	}

	return tenders, nil
}

func (s *Service) GetTenderStatus(ctx context.Context, username, tenderId string) (models.TenderStatus, error) {
	_, err := s.userByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("service.Service.GetTenderStatus: %w", err)
	}

	tender, ok, err := s.repo.TenderByUUID(ctx, tenderId)
	if err != nil {
		return "", fmt.Errorf("service.Service.GetTenderStatus: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("service.Service.GetTenderStatus: %w", models.ErrTenderNotFound)
	}

	return tender.Status, nil
}

func (s *Service) SetTenderStatus(ctx context.Context, username, tenderId string, status models.TenderStatus) (models.Tender, error) {
	user, err := s.userByUsername(ctx, username)
	if err != nil {
		return models.Tender{}, fmt.Errorf("service.Service.SetTenderStatus: %w", err)
	}

	tender, ok, err := s.repo.TenderByUUID(ctx, tenderId)
	if err != nil {
		return models.Tender{}, fmt.Errorf("service.Service.SetTenderStatus: %w", err)
	}
	if !ok {
		return models.Tender{}, fmt.Errorf("service.Service.SetTenderStatus: %w", models.ErrTenderNotFound)
	}

	owns, err := s.userOwnsTender(ctx, user, tender)
	if err != nil {
		return models.Tender{}, fmt.Errorf("service.Service.SetTenderStatus: %w", err)
	}
	if !owns {
		return models.Tender{}, models.ErrForbidden
	}

	tender, ok, err = s.repo.SetTenderStatus(ctx, tenderId, status)
	if err != nil {
		return models.Tender{}, fmt.Errorf("service.Service.SetTenderStatus: %w", err)
	}
	if !ok {
		return models.Tender{}, fmt.Errorf("service.Service.SetTenderStatus: %w", models.ErrTenderNotFound)
	}

	return tender, nil
}

func (s *Service) EditTender(ctx context.Context, username, tenderId, name, description string, serviceType models.ServiceType) (models.Tender, error) {
	user, err := s.userByUsername(ctx, username)
	if err != nil {
		return models.Tender{}, fmt.Errorf("service.Service.EditTender: %w", err)
	}

	tender, ok, err := s.repo.TenderByUUID(ctx, tenderId)
	if err != nil {
		return models.Tender{}, fmt.Errorf("service.Service.EditTender: %w", err)
	}
	if !ok {
		return models.Tender{}, fmt.Errorf("service.Service.EditTender: %w", models.ErrTenderNotFound)
	}

	owns, err := s.userOwnsTender(ctx, user, tender)
	if err != nil {
		return models.Tender{}, fmt.Errorf("service.Service.EditTender: %w", err)
	}
	if !owns {
		return models.Tender{}, models.ErrForbidden
	}

	tender, ok, err = s.repo.UpdateTender(ctx, tenderId, name, description, serviceType)
	if err != nil {
		return models.Tender{}, fmt.Errorf("service.Service.EditTender: %w", err)
	}
	if !ok {
		return models.Tender{}, fmt.Errorf("service.Service.EditTender: %w", models.ErrTenderNotFound)
	}

	return tender, nil
}

//// Bids

func (s *Service) AddBid(ctx context.Context, bid models.Bid) (models.Bid, error) {
	err := s.checkBidAuthor(ctx, bid)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service.Service.AddBid: %w", err)
	}

	_, ok, err := s.repo.TenderByUUID(ctx, bid.TenderId)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service.Service.AddBid: %w", err)
	}
	if !ok {
		return models.Bid{}, fmt.Errorf("service.Service.AddBid: %w", models.ErrTenderNotFound)
	}

	bid, err = s.repo.AddBid(ctx, bid)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service.Service.AddBid: %w", err)
	}

	return bid, nil
}

func (s *Service) GetUserBids(ctx context.Context, username string, limit, offset int) ([]models.Bid, error) {
	user, err := s.userByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("service.Service.GetUserBids: %w", err)
	}

	bids, err := s.repo.GetBids(ctx, repository.BidFilter{
		AuthorId: user.Id,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return nil, fmt.Errorf("service.Service.GetUserBids: %w", err)
	}

	return bids, nil
}

func (s *Service) GetTenderBids(ctx context.Context, username, tenderId string, limit, offset int) ([]models.Bid, error) {
	_, err := s.userByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("service.Service.GetTenderBids: %w", err)
	}

	_, ok, err := s.repo.TenderByUUID(ctx, tenderId)
	if err != nil {
		return nil, fmt.Errorf("service.Service.GetTenderBids: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("service.Service.GetTenderBids: %w", models.ErrTenderNotFound)
	}

	bids, err := s.repo.GetBids(ctx, repository.BidFilter{
		TenderId: tenderId,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return nil, fmt.Errorf("service.Service.GetTenderBids: %w", err)
	}

	return bids, nil
}

func (s *Service) GetBidStatus(ctx context.Context, username, bidId string) (models.BidStatus, error) {
	_, err := s.userByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("service.Service.GetBidStatus: %w", err)
	}

	bid, ok, err := s.repo.BidByUUID(ctx, bidId)
	if err != nil {
		return "", fmt.Errorf("service.Service.GetBidStatus: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("service.Service.GetBidStatus: %w", models.ErrBidNotFound)
	}

	return bid.Status, nil
}

func (s *Service) EditBid(ctx context.Context, username, bidId, name, description string) (models.Bid, error) {
	user, err := s.userByUsername(ctx, username)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service.Service.EditBid: %w", err)
	}

	bid, ok, err := s.repo.BidByUUID(ctx, bidId)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service.Service.EditBid: %w", err)
	}
	if !ok {
		return models.Bid{}, fmt.Errorf("service.Service.EditBid: %w", models.ErrBidNotFound)
	}

	owns, err := s.userOwnsBid(ctx, user, bid)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service.Service.EditBid: %w", err)
	}
	if !owns {
		return models.Bid{}, models.ErrForbidden
	}

	bid, ok, err = s.repo.UpdateBid(ctx, bidId, name, description)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service.Service.EditBid: %w", err)
	}
	if !ok {
		return models.Bid{}, fmt.Errorf("service.Service.EditBid: %w", models.ErrBidNotFound)
	}

	return bid, nil
}

// SubmitDecision records a verdict on a bid. Only an owner of the bid's
// tender may decide; the bid's lifecycle status is left untouched.
func (s *Service) SubmitDecision(ctx context.Context, username, bidId string, decision models.BidDecision) (models.Bid, error) {
	user, err := s.userByUsername(ctx, username)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service.Service.SubmitDecision: %w", err)
	}

	bid, ok, err := s.repo.BidByUUID(ctx, bidId)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service.Service.SubmitDecision: %w", err)
	}
	if !ok {
		return models.Bid{}, fmt.Errorf("service.Service.SubmitDecision: %w", models.ErrBidNotFound)
	}

	err = s.checkTenderOwnership(ctx, user, bid.TenderId)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service.Service.SubmitDecision: %w", err)
	}

	bid, ok, err = s.repo.SetBidDecision(ctx, bidId, decision)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service.Service.SubmitDecision: %w", err)
	}
	if !ok {
		return models.Bid{}, fmt.Errorf("service.Service.SubmitDecision: %w", models.ErrBidNotFound)
	}

	return bid, nil
}

// SubmitFeedback appends one review to the bid and echoes the bid back.
// The bid row itself is not mutated.
func (s *Service) SubmitFeedback(ctx context.Context, username, bidId, feedback string) (models.Bid, error) {
	user, err := s.userByUsername(ctx, username)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service.Service.SubmitFeedback: %w", err)
	}

	bid, ok, err := s.repo.BidByUUID(ctx, bidId)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service.Service.SubmitFeedback: %w", err)
	}
	if !ok {
		return models.Bid{}, fmt.Errorf("service.Service.SubmitFeedback: %w", models.ErrBidNotFound)
	}

	err = s.checkTenderOwnership(ctx, user, bid.TenderId)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service.Service.SubmitFeedback: %w", err)
	}

	_, err = s.repo.AddReview(ctx, models.BidReview{
		Username:    user.Username,
		Description: feedback,
		BidId:       bid.Id,
	})
	if err != nil {
		return models.Bid{}, fmt.Errorf("service.Service.SubmitFeedback: %w", err)
	}

	return bid, nil
}

// BidReviews lists feedback on a given author's bids within a tender.
// The requester must own the tender.
func (s *Service) BidReviews(ctx context.Context, tenderId, requesterName, authorName string, limit, offset int) ([]models.BidReview, error) {
	requester, err := s.userByUsername(ctx, requesterName)
	if err != nil {
		return nil, fmt.Errorf("service.Service.BidReviews: %w", err)
	}
	author, err := s.userByUsername(ctx, authorName)
	if err != nil {
		return nil, fmt.Errorf("service.Service.BidReviews: %w", err)
	}

	err = s.checkTenderOwnership(ctx, requester, tenderId)
	if err != nil {
		return nil, fmt.Errorf("service.Service.BidReviews: %w", err)
	}

	reviews, err := s.repo.ReviewsByAuthorForTender(ctx, author.Id, tenderId, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("service.Service.BidReviews: %w", err)
	}

	return reviews, nil
}

//// Service

func (s *Service) userByUsername(ctx context.Context, username string) (models.User, error) {
	user, ok, err := s.repo.UserByUsername(ctx, username)
	if err != nil {
		return models.User{}, fmt.Errorf("service.Service.userByUsername: %w", err)
	}
	if !ok {
		return models.User{}, fmt.Errorf("service.Service.userByUsername: %w: %s", models.ErrUnknownUser, username)
	}
	return user, nil
}

// userOwnsTender: the creator, or anyone responsible for the owning
// organization, counts as an owner.
func (s *Service) userOwnsTender(ctx context.Context, user models.User, tender models.Tender) (bool, error) {
	if tender.CreatorUsername == user.Username {
		return true, nil
	}

	owns, err := s.repo.UserResponsible(ctx, user.Id, tender.OrganizationId)
	if err != nil {
		return false, fmt.Errorf("service.Service.userOwnsTender: %w", err)
	}
	return owns, nil
}

// userOwnsBid: the authoring user, or anyone responsible for the authoring
// organization.
func (s *Service) userOwnsBid(ctx context.Context, user models.User, bid models.Bid) (bool, error) {
	if bid.AuthorType == models.AuthorUser {
		return bid.AuthorId == user.Id, nil
	}

	owns, err := s.repo.UserResponsible(ctx, user.Id, bid.AuthorId)
	if err != nil {
		return false, fmt.Errorf("service.Service.userOwnsBid: %w", err)
	}
	return owns, nil
}

func (s *Service) checkTenderOwnership(ctx context.Context, user models.User, tenderId string) error {
	tender, ok, err := s.repo.TenderByUUID(ctx, tenderId)
	if err != nil {
		return fmt.Errorf("service.Service.checkTenderOwnership: %w", err)
	}
	if !ok {
		return models.ErrTenderNotFound
	}

	owns, err := s.userOwnsTender(ctx, user, tender)
	if err != nil {
		return fmt.Errorf("service.Service.checkTenderOwnership: %w", err)
	}
	if !owns {
		return models.ErrForbidden
	}
	return nil
}

func (s *Service) checkBidAuthor(ctx context.Context, bid models.Bid) error {
	switch bid.AuthorType {
	case models.AuthorUser:
		_, ok, err := s.repo.UserByUUID(ctx, bid.AuthorId)
		if err != nil {
			return fmt.Errorf("service.Service.checkBidAuthor: %w", err)
		}
		if !ok {
			return models.ErrUnknownAuthor
		}
	case models.AuthorOrganization:
		_, ok, err := s.repo.OrganizationByUUID(ctx, bid.AuthorId)
		if err != nil {
			return fmt.Errorf("service.Service.checkBidAuthor: %w", err)
		}
		if !ok {
			return models.ErrUnknownAuthor
		}
	default:
		return models.ErrUnknownAuthor
	}
	return nil
}
