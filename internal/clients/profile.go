package clients

import (
	"context"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"

	"dealcore/internal/domain"
)

// ProfileClient talks to the profile service, the system of record for
// merchant, bank and user identity.
type ProfileClient struct{ base }

func NewProfileClient(baseURL string, timeout time.Duration) *ProfileClient {
	return &ProfileClient{base{service: "profile", url: baseURL, timeout: timeout}}
}

func (c *ProfileClient) MerchantByID(ctx context.Context, token, id string) (domain.Profile, error) {
	var p domain.Profile
	err := c.do(ctx, fiber.Get(c.url+"/merchants/"+url.PathEscape(id)), map[string]string{"Auth-Token": token}, &p)
	if IsBadRequest(err) {
		return p, domain.ErrInvalidUser.With("merchant %s", id)
	}
	return p, err
}

func (c *ProfileClient) BankByID(ctx context.Context, token, id string) (domain.Profile, error) {
	var p domain.Profile
	err := c.do(ctx, fiber.Get(c.url+"/banks/"+url.PathEscape(id)), map[string]string{"Auth-Token": token}, &p)
	if IsBadRequest(err) {
		return p, domain.ErrInvalidBank.With("bank %s", id)
	}
	return p, err
}

// BulkMerchantInfo returns the profiles it knows, keyed by merchant id.
func (c *ProfileClient) BulkMerchantInfo(ctx context.Context, ids []string, toUserType domain.OwnerKind) (map[string]domain.Profile, error) {
	out := map[string]domain.Profile{}
	a := fiber.Post(c.url + "/merchants/bulk").JSON(map[string]any{"ids": ids, "toUserType": toUserType})
	if err := c.do(ctx, a, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ProfileClient) UserByID(ctx context.Context, token, id string) (domain.User, error) {
	var u domain.User
	err := c.do(ctx, fiber.Get(c.url+"/users/"+url.PathEscape(id)), map[string]string{"Auth-Token": token}, &u)
	if IsBadRequest(err) {
		return u, domain.ErrInvalidUser.With("user %s", id)
	}
	if u.ID == "" {
		u.ID = id
	}
	return u, err
}

func (c *ProfileClient) BulkUserInfo(ctx context.Context, ids []string) (map[string]domain.User, error) {
	out := map[string]domain.User{}
	a := fiber.Post(c.url + "/users/bulk").JSON(map[string]any{"ids": ids})
	if err := c.do(ctx, a, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ProfileClient) TodaySummary(ctx context.Context, userID, userType string) (domain.TodaySummary, error) {
	var s domain.TodaySummary
	q := url.Values{"userId": {userID}, "userType": {userType}}
	err := c.do(ctx, fiber.Get(c.url+"/summary/today?"+q.Encode()), nil, &s)
	if IsBadRequest(err) {
		return s, domain.ErrInvalidUser.With("user %s", userID)
	}
	return s, err
}
