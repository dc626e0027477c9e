package domain

import (
	"github.com/shopspring/decimal"
)

type OwnerKind string

const (
	OwnerMerchant OwnerKind = "MERCHANT"
	OwnerBank     OwnerKind = "BANK"
)

func (k OwnerKind) Valid() bool { return k == OwnerMerchant || k == OwnerBank }

// Letter is the owner-kind token used in deal codes.
func (k OwnerKind) Letter() string {
	if k == OwnerBank {
		return "B"
	}
	return "M"
}

type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "PENDING"
	StatusApproved ApprovalStatus = "APPROVED"
	StatusRejected ApprovalStatus = "REJECTED"
)

type DeductionType string

const (
	DeductionPercentage DeductionType = "PERCENTAGE"
	DeductionAmount     DeductionType = "AMOUNT"
)

type CategoryType string

const (
	CategoryNormal   CategoryType = "NORMAL"
	CategorySeasonal CategoryType = "SEASONAL"
)

// Deal is an offer owned by a merchant or a bank. Both owner kinds share one table.
type Deal struct {
	ID                  string              `db:"id" json:"id"`
	OwnerKind           OwnerKind           `db:"owner_kind" json:"ownerKind"`
	OwnerID             string              `db:"owner_id" json:"ownerId"`
	Title               string              `db:"title" json:"title"`
	Subtitle            string              `db:"subtitle" json:"subtitle"`
	Description         string              `db:"description" json:"description"`
	Terms               string              `db:"terms" json:"terms"`
	ImagesJSON          string              `db:"images_json" json:"-"`
	Images              []string            `db:"-" json:"images"`
	Price               decimal.Decimal     `db:"price" json:"price"`
	DeductionType       DeductionType       `db:"deduction_type" json:"deductionType"`
	DeductionAmount     decimal.NullDecimal `db:"deduction_amount" json:"deductionAmount"`
	DeductionPercentage decimal.NullDecimal `db:"deduction_percentage" json:"deductionPercentage"`
	ValidFrom           Time                `db:"valid_from" json:"validFrom"`
	ExpiredOn           Time                `db:"expired_on" json:"expiredOn"`
	ApprovalStatus      ApprovalStatus      `db:"approval_status" json:"approvalStatus"`
	Comment             string              `db:"comment" json:"comment,omitempty"`
	IsDeleted           bool                `db:"is_deleted" json:"-"`
	DealCode            string              `db:"deal_code" json:"dealCode"`
	OfferTypeID         string              `db:"offer_type_id" json:"offerTypeId,omitempty"`
	CreatedBy           string              `db:"created_by" json:"createdBy"`
	CreatedAt           Time                `db:"created_at" json:"createdAt"`
	UpdatedAt           Time                `db:"updated_at" json:"updatedAt"`
	CategoryIDs         []string            `db:"-" json:"categoryIds"`
	BrandIDs            []string            `db:"-" json:"brandIds"`
}

type Category struct {
	ID          string       `db:"id" json:"id"`
	Name        string       `db:"name" json:"name"`
	Description string       `db:"description" json:"description"`
	Type        CategoryType `db:"type" json:"type"`
	ExpiryDate  *Time        `db:"expiry_date" json:"expiryDate,omitempty"`
	IsPopular   bool         `db:"is_popular" json:"isPopular"`
	CreatedAt   Time         `db:"created_at" json:"createdAt"`
	UpdatedAt   Time         `db:"updated_at" json:"updatedAt"`
	RelatedIDs  []string     `db:"-" json:"relatedCategoryIds"`
}

type Brand struct {
	ID          string `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	Image       string `db:"image" json:"image"`
	CreatedAt   Time   `db:"created_at" json:"createdAt"`
	UpdatedAt   Time   `db:"updated_at" json:"updatedAt"`
}

type OfferType struct {
	ID          string `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	CreatedAt   Time   `db:"created_at" json:"createdAt"`
}

// MerchantMapping is the CategoryBrandMerchant association, one row per merchant id.
type MerchantMapping struct {
	ID                     string    `db:"id" json:"id"`
	MerchantID             string    `db:"merchant_id" json:"merchantId"`
	OwnerKind              OwnerKind `db:"owner_kind" json:"ownerKind"`
	MerchantActive         bool      `db:"merchant_active" json:"merchantActive"`
	MerchantApprovalStatus string    `db:"merchant_approval_status" json:"merchantApprovalStatus"`
	CreatedBy              string    `db:"created_by" json:"createdBy"`
	CreatedAt              Time      `db:"created_at" json:"createdAt"`
	UpdatedAt              Time      `db:"updated_at" json:"updatedAt"`
	CategoryIDs            []string  `db:"-" json:"categoryIds"`
	BrandIDs               []string  `db:"-" json:"brandIds"`
}

type CreditCardRequest struct {
	ID             string          `db:"id" json:"id"`
	UserID         string          `db:"user_id" json:"userId"`
	BankID         string          `db:"bank_id" json:"bankId"`
	FullName       string          `db:"full_name" json:"fullName"`
	Email          string          `db:"email" json:"email"`
	MobileNo       string          `db:"mobile_no" json:"mobileNo"`
	MonthlyIncome  decimal.Decimal `db:"monthly_income" json:"monthlyIncome"`
	EmploymentType string          `db:"employment_type" json:"employmentType"`
	CardType       string          `db:"card_type" json:"cardType"`
	CreatedAt      Time            `db:"created_at" json:"createdAt"`
}

// DealRequest is a buyer's RequestADeal submission aimed at one merchant or bank.
type DealRequest struct {
	ID             string    `db:"id" json:"id"`
	RequesterID    string    `db:"requester_id" json:"requesterId"`
	CategoryID     string    `db:"category_id" json:"categoryId"`
	BrandID        string    `db:"brand_id" json:"brandId,omitempty"`
	OfferTypeID    string    `db:"offer_type_id" json:"offerTypeId,omitempty"`
	TargetUserType OwnerKind `db:"target_user_type" json:"targetUserType"`
	TargetOwnerID  string    `db:"target_owner_id" json:"targetOwnerId"`
	Description    string    `db:"description" json:"description"`
	IsDeleted      bool      `db:"is_deleted" json:"-"`
	CreatedAt      Time      `db:"created_at" json:"createdAt"`
	UpdatedAt      Time      `db:"updated_at" json:"updatedAt"`
}

type DealCode struct {
	DealDate            string `db:"deal_date" json:"dealDate"`
	DealNumberForTheDay int    `db:"deal_number_for_the_day" json:"dealNumberForTheDay"`
	DealType            string `db:"deal_type" json:"dealType"`
	Code                string `db:"code" json:"code"`
	CreatedAt           Time   `db:"created_at" json:"createdAt"`
}

type DealOfTheDay struct {
	ID        string    `db:"id" json:"id"`
	DealID    string    `db:"deal_id" json:"dealId"`
	OwnerKind OwnerKind `db:"owner_kind" json:"ownerKind"`
	DealDate  string    `db:"deal_date" json:"dealDate"`
	IsActive  bool      `db:"is_active" json:"isActive"`
	CreatedAt Time      `db:"created_at" json:"createdAt"`
}
