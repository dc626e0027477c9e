package domain

import "fmt"

// Error is an expected domain failure rendered to clients as a 400 envelope.
type Error struct {
	Status  int
	Code    int
	Message string
}

func (e *Error) Error() string { return e.Message }

// With attaches a client-safe detail while keeping errors.Is/As working.
func (e *Error) With(format string, args ...any) error {
	return fmt.Errorf("%w: %s", e, fmt.Sprintf(format, args...))
}

func newErr(code int, msg string) *Error { return &Error{Status: 400, Code: code, Message: msg} }

// Validation
var (
	ErrValidation        = newErr(1000, "request validation failed")
	ErrInvalidPagination = newErr(1001, "page must be >= 0 and size between 1 and 250")
	ErrMissingHeader     = newErr(1002, "required header missing or malformed")
	ErrInvalidDates      = newErr(1003, "validFrom must be in the future and before expiredOn")
	ErrInvalidDeduction  = newErr(1004, "exactly one of deductionAmount or deductionPercentage must match deductionType")
	ErrInvalidPrice      = newErr(1005, "price must be non-negative")
	ErrInvalidDateRange  = newErr(1006, "date range is invalid")
	ErrInvalidSearchTerm = newErr(1007, "searchTerm contains unsupported characters")
)

// Invalid references
var (
	ErrInvalidCategory    = newErr(1100, "invalid category id")
	ErrInvalidBrand       = newErr(1101, "invalid brand id")
	ErrInvalidDeal        = newErr(1102, "invalid deal id")
	ErrInvalidUser        = newErr(1103, "invalid user or merchant")
	ErrInvalidBank        = newErr(1104, "invalid bank")
	ErrInvalidOfferType   = newErr(1105, "invalid offer type id")
	ErrInvalidDealRequest = newErr(1106, "invalid deal request id")
	ErrInvalidCardRequest = newErr(1107, "invalid credit card request id")
	ErrInvalidMapping     = newErr(1108, "no category/brand mapping for merchant")
)

// Unsupported actions
var (
	ErrUnsupportedUpdate   = newErr(1200, "deal can only be updated while PENDING")
	ErrCannotDelete        = newErr(1201, "entity is still referenced and cannot be deleted")
	ErrUnsupportedUserType = newErr(1202, "action is not allowed for this user type")
	ErrAlreadyExists       = newErr(1203, "entity already exists")
	ErrUnsupportedApproval = newErr(1204, "only PENDING deals can be approved or rejected")
	ErrNotOwner            = newErr(1205, "caller does not own this entity")
)

// CodeInternal is reported for every failure that is not a domain Error.
const CodeInternal = 5000
