package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"tendermarket/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	AddTender(ctx context.Context, tender models.Tender) (models.Tender, error)
	GetTenders(ctx context.Context, limit, offset int, serviceTypes []models.ServiceType) ([]models.Tender, error)
	GetUserTenders(ctx context.Context, username string, limit, offset int) ([]models.Tender, error)
	GetTenderStatus(ctx context.Context, username, tenderId string) (models.TenderStatus, error)
	SetTenderStatus(ctx context.Context, username, tenderId string, status models.TenderStatus) (models.Tender, error)
	EditTender(ctx context.Context, username, tenderId, name, description string, serviceType models.ServiceType) (models.Tender, error)

	AddBid(ctx context.Context, bid models.Bid) (models.Bid, error)
	GetUserBids(ctx context.Context, username string, limit, offset int) ([]models.Bid, error)
	GetTenderBids(ctx context.Context, username, tenderId string, limit, offset int) ([]models.Bid, error)
	GetBidStatus(ctx context.Context, username, bidId string) (models.BidStatus, error)
	EditBid(ctx context.Context, username, bidId, name, description string) (models.Bid, error)
	SubmitDecision(ctx context.Context, username, bidId string, decision models.BidDecision) (models.Bid, error)
	SubmitFeedback(ctx context.Context, username, bidId, feedback string) (models.Bid, error)
	BidReviews(ctx context.Context, tenderId, requesterName, authorName string, limit, offset int) ([]models.BidReview, error)
}

type Controller struct {
	service Service
	log     *zap.Logger
}

func NewController(service Service, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{service: service, log: log}
}

// GET /api/ping
func (c *Controller) Ping(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ok")
}

//// Tenders

// POST /api/tenders/new
func (c *Controller) NewTender(w http.ResponseWriter, r *http.Request) {
	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read request body")
		return
	}

	req, err := ParseNewTenderReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	tender, err := c.service.AddTender(r.Context(), models.Tender{
		Name:            req.Name,
		Description:     req.Description,
		ServiceType:     req.ServiceType,
		OrganizationId:  req.OrganizationId,
		CreatorUsername: req.CreatorUsername,
	})
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, tender)
}

// GET /api/tenders
func (c *Controller) GetTenders(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit, offset, ok := c.pagination(w, query, "limit", "offset")
	if !ok {
		return
	}

	var serviceTypes []models.ServiceType
	for _, str := range query["service_type"] {
		t := models.ServiceType(str)
		if !models.ValidServiceType(t) {
			c.errorResponse(w, http.StatusBadRequest, "invalid service type supplied: "+str)
			return
		}
		serviceTypes = append(serviceTypes, t)
	}

	tenders, err := c.service.GetTenders(r.Context(), limit, offset, serviceTypes)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}
	if len(tenders) == 0 {
		c.errorResponse(w, http.StatusNotFound, "no tenders found")
		return
	}

	c.marshalResponse(w, tenders)
}

// GET /api/tenders/my
func (c *Controller) MyTenders(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit, offset, ok := c.pagination(w, query, "limit", "offset")
	if !ok {
		return
	}

	username, ok := c.requiredQuery(w, query, "username")
	if !ok {
		return
	}

	tenders, err := c.service.GetUserTenders(r.Context(), username, limit, offset)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}
	if len(tenders) == 0 {
		c.errorResponse(w, http.StatusNotFound, "no tenders found")
		return
	}

	c.marshalResponse(w, tenders)
}

// GET /api/tenders/{tenderId}/status
func (c *Controller) TenderStatus(w http.ResponseWriter, r *http.Request) {
	username, ok := c.requiredQuery(w, r.URL.Query(), "username")
	if !ok {
		return
	}

	tenderId, ok := c.pathUUID(w, r, "tenderId")
	if !ok {
		return
	}

	status, err := c.service.GetTenderStatus(r.Context(), username, tenderId)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	fmt.Fprint(w, status)
}

// PUT /api/tenders/{tenderId}/status
func (c *Controller) SetTenderStatus(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	username, ok := c.requiredQuery(w, query, "username")
	if !ok {
		return
	}

	tenderId, ok := c.pathUUID(w, r, "tenderId")
	if !ok {
		return
	}

	status := models.TenderStatus(query.Get("status"))
	if !models.ValidTenderStatus(status) {
		c.errorResponse(w, http.StatusBadRequest, "empty or invalid status supplied")
		return
	}

	tender, err := c.service.SetTenderStatus(r.Context(), username, tenderId, status)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, tender)
}

// PATCH /api/tenders/{tenderId}/edit
func (c *Controller) EditTender(w http.ResponseWriter, r *http.Request) {
	username, ok := c.requiredQuery(w, r.URL.Query(), "username")
	if !ok {
		return
	}

	tenderId, ok := c.pathUUID(w, r, "tenderId")
	if !ok {
		return
	}

	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read request body")
		return
	}

	req, err := ParseEditTenderReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	tender, err := c.service.EditTender(r.Context(), username, tenderId, req.Name, req.Description, req.ServiceType)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, tender)
}

//// Bids

// POST /api/bids/new
func (c *Controller) NewBid(w http.ResponseWriter, r *http.Request) {
	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read request body")
		return
	}

	req, err := ParseNewBidReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	bid, err := c.service.AddBid(r.Context(), models.Bid{
		Name:        req.Name,
		Description: req.Description,
		TenderId:    req.TenderId,
		AuthorType:  req.AuthorType,
		AuthorId:    req.AuthorId,
	})
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, bid)
}

// GET /api/bids/my
func (c *Controller) MyBids(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit, offset, ok := c.pagination(w, query, "paginationLimit", "paginationOffset")
	if !ok {
		return
	}

	username, ok := c.requiredQuery(w, query, "username")
	if !ok {
		return
	}

	bids, err := c.service.GetUserBids(r.Context(), username, limit, offset)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}
	if len(bids) == 0 {
		c.errorResponse(w, http.StatusNotFound, "no bids found")
		return
	}

	c.marshalResponse(w, bids)
}

// GET /api/bids/{tenderId}/list
func (c *Controller) TenderBids(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit, offset, ok := c.pagination(w, query, "paginationLimit", "paginationOffset")
	if !ok {
		return
	}

	username, ok := c.requiredQuery(w, query, "username")
	if !ok {
		return
	}

	tenderId, ok := c.pathUUID(w, r, "tenderId")
	if !ok {
		return
	}

	bids, err := c.service.GetTenderBids(r.Context(), username, tenderId, limit, offset)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}
	if len(bids) == 0 {
		c.errorResponse(w, http.StatusNotFound, "no bids found")
		return
	}

	c.marshalResponse(w, bids)
}

// GET /api/bids/{bidId}/status
func (c *Controller) BidStatus(w http.ResponseWriter, r *http.Request) {
	username, ok := c.requiredQuery(w, r.URL.Query(), "username")
	if !ok {
		return
	}

	bidId, ok := c.pathUUID(w, r, "bidId")
	if !ok {
		return
	}

	status, err := c.service.GetBidStatus(r.Context(), username, bidId)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	fmt.Fprint(w, status)
}

// PATCH /api/bids/{bidId}/edit
func (c *Controller) EditBid(w http.ResponseWriter, r *http.Request) {
	username, ok := c.requiredQuery(w, r.URL.Query(), "username")
	if !ok {
		return
	}

	bidId, ok := c.pathUUID(w, r, "bidId")
	if !ok {
		return
	}

	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read request body")
		return
	}

	req, err := ParseEditBidReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	bid, err := c.service.EditBid(r.Context(), username, bidId, req.Name, req.Description)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, bid)
}

// PUT /api/bids/{bidId}/submit_decision
func (c *Controller) BidDecision(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	username, ok := c.requiredQuery(w, query, "username")
	if !ok {
		return
	}

	bidId, ok := c.pathUUID(w, r, "bidId")
	if !ok {
		return
	}

	// validated before any storage call
	decision := models.BidDecision(query.Get("bidDecision"))
	if !models.ValidBidDecision(decision) {
		c.errorResponse(w, http.StatusBadRequest, "empty or invalid bidDecision supplied")
		return
	}

	bid, err := c.service.SubmitDecision(r.Context(), username, bidId, decision)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, bid)
}

// PUT /api/bids/{bidId}/feedback
func (c *Controller) BidFeedback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	username, ok := c.requiredQuery(w, query, "username")
	if !ok {
		return
	}

	bidId, ok := c.pathUUID(w, r, "bidId")
	if !ok {
		return
	}

	feedback, ok := c.requiredQuery(w, query, "bidFeedback")
	if !ok {
		return
	}

	bid, err := c.service.SubmitFeedback(r.Context(), username, bidId, feedback)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, bid)
}

// GET /api/bids/{tenderId}/reviews
func (c *Controller) BidReviews(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit, offset, ok := c.pagination(w, query, "limit", "offset")
	if !ok {
		return
	}

	requesterUsername, ok := c.requiredQuery(w, query, "requesterUsername")
	if !ok {
		return
	}

	authorUsername, ok := c.requiredQuery(w, query, "authorUsername")
	if !ok {
		return
	}

	tenderId, ok := c.pathUUID(w, r, "tenderId")
	if !ok {
		return
	}

	reviews, err := c.service.BidReviews(r.Context(), tenderId, requesterUsername, authorUsername, limit, offset)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}
	if len(reviews) == 0 {
		c.errorResponse(w, http.StatusNotFound, "no reviews found")
		return
	}

	c.marshalResponse(w, reviews)
}

//// Service

type ErrorResponse struct {
	Reason string `json:"reason"`
}

const (
	defaultLimit  = 5
	defaultOffset = 0
)

// pagination parses limit/offset under the given keys, applying the
// defaults and rejecting negative or malformed values with 400.
func (c *Controller) pagination(w http.ResponseWriter, query url.Values, limitKey, offsetKey string) (limit, offset int, ok bool) {
	limit = defaultLimit
	offset = defaultOffset

	if str := query.Get(limitKey); str != "" {
		n, err := strconv.Atoi(str)
		if err != nil || n < 0 {
			c.errorResponse(w, http.StatusBadRequest, "invalid value of '"+limitKey+"' query parameter: "+str)
			return 0, 0, false
		}
		limit = n
	}

	if str := query.Get(offsetKey); str != "" {
		n, err := strconv.Atoi(str)
		if err != nil || n < 0 {
			c.errorResponse(w, http.StatusBadRequest, "invalid value of '"+offsetKey+"' query parameter: "+str)
			return 0, 0, false
		}
		offset = n
	}

	return limit, offset, true
}

func (c *Controller) requiredQuery(w http.ResponseWriter, query url.Values, key string) (string, bool) {
	val := query.Get(key)
	if len(val) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty "+key+" supplied")
		return "", false
	}
	return val, true
}

func (c *Controller) pathUUID(w http.ResponseWriter, r *http.Request, key string) (string, bool) {
	val := chi.URLParam(r, key)
	if len(val) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty "+key+" supplied")
		return "", false
	}
	if _, err := uuid.Parse(val); err != nil {
		c.errorResponse(w, http.StatusBadRequest, "malformed "+key+" supplied: "+val)
		return "", false
	}
	return val, true
}

func (c *Controller) errorResponse(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	data, err := json.Marshal(ErrorResponse{Reason: text})
	if err != nil {
		c.log.Error("could not marshal error response", zap.Error(err))
		return
	}

	_, err = w.Write(data)
	if err != nil {
		c.log.Error("could not write error response", zap.Error(err))
	}
}

func (c *Controller) serviceErrorResponse(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrUnknownUser):
		c.errorResponse(w, http.StatusUnauthorized, "user does not exist or invalid")
	case errors.Is(err, models.ErrUnknownAuthor):
		c.errorResponse(w, http.StatusUnauthorized, "bid author does not exist or invalid")
	case errors.Is(err, models.ErrForbidden):
		c.errorResponse(w, http.StatusForbidden, "user has no permission for requested action")
	case errors.Is(err, models.ErrTenderNotFound):
		c.errorResponse(w, http.StatusNotFound, "requested tender does not exist")
	case errors.Is(err, models.ErrBidNotFound):
		c.errorResponse(w, http.StatusNotFound, "requested bid does not exist")
	case errors.Is(err, models.ErrUnknownOrg):
		c.errorResponse(w, http.StatusBadRequest, "referenced organization does not exist")
	default:
		c.log.Error("service error", zap.Error(err))
		c.errorResponse(w, http.StatusInternalServerError, "internal server error")
	}
}

func (c *Controller) marshalResponse(w http.ResponseWriter, data any) {
	d, err := json.Marshal(data)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not marshal response data")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(d)
	if err != nil {
		c.log.Error("could not write response", zap.Error(err))
	}
}

func (c *Controller) readBody(src io.ReadCloser) ([]byte, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	src.Close()
	return data, nil
}
