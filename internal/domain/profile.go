package domain

// OwnerDisplay is the merchant/bank snapshot cached on every index row.
type OwnerDisplay struct {
	Name           string `db:"owner_name" json:"ownerName"`
	Image          string `db:"owner_image" json:"ownerImage"`
	ApprovalStatus string `db:"owner_approval_status" json:"ownerApprovalStatus"`
	Active         bool   `db:"owner_active" json:"ownerActive"`
}

// Profile is a merchant or bank as returned by the profile service.
type Profile struct {
	BusinessID     string `json:"businessId"`
	MerchantID     string `json:"merchantId"`
	Name           string `json:"name"`
	ImageURL       string `json:"imageUrl"`
	ApprovalStatus string `json:"approvalStatus"`
	Active         bool   `json:"active"`
	CreatedAt      string `json:"createdAt"`
	ProfileType    string `json:"profileType"`
}

func (p Profile) Display() OwnerDisplay {
	return OwnerDisplay{Name: p.Name, Image: p.ImageURL, ApprovalStatus: p.ApprovalStatus, Active: p.Active}
}

// User is an end user as returned by the profile service.
type User struct {
	ID             string `json:"id"`
	FullName       string `json:"fullName"`
	Email          string `json:"email"`
	MobileNo       string `json:"mobileNo"`
	ApprovalStatus string `json:"approvalStatus"`
	Active         bool   `json:"active"`
	Locale         string `json:"locale,omitempty"`
}

// TodaySummary is the profile service's per-user activity summary.
type TodaySummary struct {
	UserID   string         `json:"userId"`
	UserType string         `json:"userType"`
	Counters map[string]int `json:"counters"`
}
