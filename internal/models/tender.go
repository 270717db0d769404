package models

import "time"

type TenderStatus string

const (
	TenderCreated   TenderStatus = "Created"
	TenderPublished TenderStatus = "Published"
	TenderClosed    TenderStatus = "Closed"
)

func ValidTenderStatus(t TenderStatus) bool {
	switch t {
	case TenderCreated, TenderPublished, TenderClosed:
		return true
	default:
		return false
	}
}

type ServiceType string

const (
	STConstruction ServiceType = "Construction"
	STDelivery     ServiceType = "Delivery"
	STManufacture  ServiceType = "Manufacture"
)

func ValidServiceType(t ServiceType) bool {
	switch t {
	case STConstruction, STDelivery, STManufacture:
		return true
	default:
		return false
	}
}

type Tender struct {
	Id              string       `db:"id" json:"id"`
	Name            string       `db:"name" json:"name"`
	Description     string       `db:"description" json:"description"`
	ServiceType     ServiceType  `db:"service_type" json:"serviceType"`
	Status          TenderStatus `db:"status" json:"status"`
	Version         int          `db:"version" json:"version"`
	OrganizationId  string       `db:"organization_id" json:"organizationId"`
	CreatorUsername string       `db:"creator_username" json:"creatorUsername"`
	CreatedAt       time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time    `db:"updated_at" json:"-"`
}
