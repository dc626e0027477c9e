package domain

import "github.com/shopspring/decimal"

// Index rows are denormalized read models. Multi-value columns hold ",a,b," so
// a single id can be matched with LIKE.

type DealIndex struct {
	OwnerDisplay

	ID                  string              `db:"id" json:"id"`
	OwnerKind           OwnerKind           `db:"owner_kind" json:"ownerKind"`
	OwnerID             string              `db:"owner_id" json:"ownerId"`
	Title               string              `db:"title" json:"title"`
	Subtitle            string              `db:"subtitle" json:"subtitle"`
	Price               decimal.Decimal     `db:"price" json:"price"`
	DeductionType       DeductionType       `db:"deduction_type" json:"deductionType"`
	DeductionAmount     decimal.NullDecimal `db:"deduction_amount" json:"deductionAmount"`
	DeductionPercentage decimal.NullDecimal `db:"deduction_percentage" json:"deductionPercentage"`
	ValidFrom           Time                `db:"valid_from" json:"validFrom"`
	ExpiredOn           Time                `db:"expired_on" json:"expiredOn"`
	ApprovalStatus      ApprovalStatus      `db:"approval_status" json:"approvalStatus"`
	Comment             string              `db:"comment" json:"comment,omitempty"`
	DealCode            string              `db:"deal_code" json:"dealCode"`
	CategoryIDs         string              `db:"category_ids" json:"categoryIds"`
	CategoryNames       string              `db:"category_names" json:"categoryNames"`
	BrandIDs            string              `db:"brand_ids" json:"brandIds"`
	BrandNames          string              `db:"brand_names" json:"brandNames"`
	IsDeleted           bool                `db:"is_deleted" json:"-"`
	CreatedAt           Time                `db:"created_at" json:"createdAt"`
	UpdatedAt           Time                `db:"updated_at" json:"updatedAt"`
}

type DealOfTheDayIndex struct {
	OwnerDisplay

	ID                  string              `db:"id" json:"id"`
	DealID              string              `db:"deal_id" json:"dealId"`
	DealDate            string              `db:"deal_date" json:"dealDate"`
	OwnerKind           OwnerKind           `db:"owner_kind" json:"ownerKind"`
	OwnerID             string              `db:"owner_id" json:"ownerId"`
	Title               string              `db:"title" json:"title"`
	Subtitle            string              `db:"subtitle" json:"subtitle"`
	Price               decimal.Decimal     `db:"price" json:"price"`
	DeductionType       DeductionType       `db:"deduction_type" json:"deductionType"`
	DeductionAmount     decimal.NullDecimal `db:"deduction_amount" json:"deductionAmount"`
	DeductionPercentage decimal.NullDecimal `db:"deduction_percentage" json:"deductionPercentage"`
	ExpiredOn           Time                `db:"expired_on" json:"expiredOn"`
	DealCode            string              `db:"deal_code" json:"dealCode"`
	CategoryIDs         string              `db:"category_ids" json:"categoryIds"`
	CategoryNames       string              `db:"category_names" json:"categoryNames"`
	UpdatedAt           Time                `db:"updated_at" json:"updatedAt"`
}

type MerchantIndex struct {
	OwnerDisplay

	ID            string    `db:"id" json:"id"`
	OwnerID       string    `db:"owner_id" json:"merchantId"`
	OwnerKind     OwnerKind `db:"owner_kind" json:"ownerKind"`
	CategoryIDs   string    `db:"category_ids" json:"categoryIds"`
	CategoryNames string    `db:"category_names" json:"categoryNames"`
	BrandIDs      string    `db:"brand_ids" json:"brandIds"`
	BrandNames    string    `db:"brand_names" json:"brandNames"`
	UpdatedAt     Time      `db:"updated_at" json:"updatedAt"`
}

// BankMerchantIndex aggregates a bank's live approved deals; keyed by bank id.
type BankMerchantIndex struct {
	OwnerDisplay

	ID            string `db:"id" json:"bankId"`
	OwnerID       string `db:"owner_id" json:"-"`
	DealCount     int    `db:"deal_count" json:"dealCount"`
	CategoryIDs   string `db:"category_ids" json:"categoryIds"`
	CategoryNames string `db:"category_names" json:"categoryNames"`
	UpdatedAt     Time   `db:"updated_at" json:"updatedAt"`
}

type DealRequestIndex struct {
	OwnerDisplay

	ID             string    `db:"id" json:"id"`
	RequesterID    string    `db:"requester_id" json:"requesterId"`
	RequesterName  string    `db:"requester_name" json:"requesterName"`
	CategoryID     string    `db:"category_id" json:"categoryId"`
	CategoryName   string    `db:"category_name" json:"categoryName"`
	BrandID        string    `db:"brand_id" json:"brandId,omitempty"`
	BrandName      string    `db:"brand_name" json:"brandName,omitempty"`
	OfferTypeID    string    `db:"offer_type_id" json:"offerTypeId,omitempty"`
	OfferTypeName  string    `db:"offer_type_name" json:"offerTypeName,omitempty"`
	TargetUserType OwnerKind `db:"target_user_type" json:"targetUserType"`
	OwnerID        string    `db:"owner_id" json:"targetOwnerId"`
	Description    string    `db:"description" json:"description"`
	IsDeleted      bool      `db:"is_deleted" json:"-"`
	CreatedAt      Time      `db:"created_at" json:"createdAt"`
	UpdatedAt      Time      `db:"updated_at" json:"updatedAt"`
}

// CombinedDealRequest groups live deal requests by their target.
type CombinedDealRequest struct {
	OwnerID        string    `db:"owner_id" json:"ownerId"`
	TargetUserType OwnerKind `db:"target_user_type" json:"targetUserType"`
	OwnerName      string    `db:"owner_name" json:"ownerName"`
	RequestCount   int       `db:"request_count" json:"requestCount"`
	LatestAt       string    `db:"latest_at" json:"latestAt"`
}

// CombinedCreditCardRequest groups credit-card requests by bank.
type CombinedCreditCardRequest struct {
	BankID       string `db:"bank_id" json:"bankId"`
	RequestCount int    `db:"request_count" json:"requestCount"`
	LatestAt     string `db:"latest_at" json:"latestAt"`
}
