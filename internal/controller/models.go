package controller

import (
	"encoding/json"
	"fmt"

	"tendermarket/internal/models"

	"github.com/google/uuid"
)

// New tender request

type NewTenderReq struct {
	Name            string              `json:"name"`
	Description     string              `json:"description"`
	ServiceType     models.ServiceType  `json:"serviceType"`
	Status          models.TenderStatus `json:"status"`
	OrganizationId  string              `json:"organizationId"`
	CreatorUsername string              `json:"creatorUsername"`
}

func ParseNewTenderReq(data []byte) (*NewTenderReq, error) {
	t := &NewTenderReq{}

	err := json.Unmarshal(data, t)
	if err != nil {
		return nil, err
	}

	if len(t.Name) == 0 {
		return nil, fmt.Errorf("missing field: name")
	}
	if len(t.CreatorUsername) == 0 {
		return nil, fmt.Errorf("missing field: creatorUsername")
	}
	if !models.ValidServiceType(t.ServiceType) {
		return nil, fmt.Errorf("invalid service type supplied: %s, should be one of: %s, %s, %s",
			string(t.ServiceType), models.STConstruction, models.STDelivery, models.STManufacture)
	}
	// status is fixed to Created on creation; anything else in the body is a client error
	if len(t.Status) > 0 && t.Status != models.TenderCreated {
		return nil, fmt.Errorf("status must be '%s' on creation", models.TenderCreated)
	}
	if err = checkUUIDField(t.OrganizationId, "organizationId"); err != nil {
		return nil, err
	}
	if err = checkLengthLimit(t.Name, "name", 100); err != nil {
		return nil, err
	}
	if err = checkLengthLimit(t.Description, "description", 500); err != nil {
		return nil, err
	}

	return t, nil
}

// Edit tender request

type EditTenderReq struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	ServiceType models.ServiceType `json:"serviceType"`
}

func ParseEditTenderReq(data []byte) (*EditTenderReq, error) {
	t := &EditTenderReq{}

	err := json.Unmarshal(data, t)
	if err != nil {
		return nil, err
	}

	if len(t.Name) == 0 {
		return nil, fmt.Errorf("missing field: name")
	}
	if !models.ValidServiceType(t.ServiceType) {
		return nil, fmt.Errorf("invalid service type supplied: %s", string(t.ServiceType))
	}
	if err = checkLengthLimit(t.Name, "name", 100); err != nil {
		return nil, err
	}
	if err = checkLengthLimit(t.Description, "description", 500); err != nil {
		return nil, err
	}

	return t, nil
}

// New bid request

type NewBidReq struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	TenderId    string            `json:"tenderId"`
	AuthorType  models.AuthorType `json:"authorType"`
	AuthorId    string            `json:"authorId"`
}

func ParseNewBidReq(data []byte) (*NewBidReq, error) {
	b := &NewBidReq{}

	err := json.Unmarshal(data, b)
	if err != nil {
		return nil, err
	}

	if len(b.Name) == 0 {
		return nil, fmt.Errorf("missing field: name")
	}
	if !models.ValidAuthorType(b.AuthorType) {
		return nil, fmt.Errorf("invalid author type supplied: %s, should be one of: %s, %s",
			string(b.AuthorType), models.AuthorOrganization, models.AuthorUser)
	}
	if err = checkUUIDField(b.TenderId, "tenderId"); err != nil {
		return nil, err
	}
	if err = checkUUIDField(b.AuthorId, "authorId"); err != nil {
		return nil, err
	}
	if err = checkLengthLimit(b.Name, "name", 100); err != nil {
		return nil, err
	}
	if err = checkLengthLimit(b.Description, "description", 500); err != nil {
		return nil, err
	}

	return b, nil
}

// Edit bid request

type EditBidReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func ParseEditBidReq(data []byte) (*EditBidReq, error) {
	b := &EditBidReq{}

	err := json.Unmarshal(data, b)
	if err != nil {
		return nil, err
	}

	if len(b.Name) == 0 {
		return nil, fmt.Errorf("missing field: name")
	}
	if err = checkLengthLimit(b.Name, "name", 100); err != nil {
		return nil, err
	}
	if err = checkLengthLimit(b.Description, "description", 500); err != nil {
		return nil, err
	}

	return b, nil
}

// Service

func checkLengthLimit(str, fieldName string, limit int) error {
	if len(str) > limit {
		return fmt.Errorf("field '%s' exceeds length limit: %d / %d", fieldName, len(str), limit)
	}
	return nil
}

func checkUUIDField(str, fieldName string) error {
	if len(str) == 0 {
		return fmt.Errorf("missing field: %s", fieldName)
	}
	if _, err := uuid.Parse(str); err != nil {
		return fmt.Errorf("field '%s' is not a valid uuid: %s", fieldName, str)
	}
	return nil
}
