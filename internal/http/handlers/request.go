package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"dealcore/internal/domain"
	applog "dealcore/internal/log"
	"dealcore/internal/services"
	"dealcore/internal/validate"
)

const (
	HeaderUserID    = "User-Id"
	HeaderTimeZone  = "Time-Zone"
	HeaderAuthToken = "Auth-Token"
)

// writeCaller reads the identity headers every write endpoint requires.
func writeCaller(c *fiber.Ctx, needToken bool) (services.Caller, error) {
	uid, ok := validate.ID(c.Get(HeaderUserID))
	if !ok {
		applog.Security(c, "header.missing", map[string]any{"header": HeaderUserID})
		return services.Caller{}, domain.ErrMissingHeader.With(HeaderUserID)
	}
	loc, ok := validate.TimeZone(c.Get(HeaderTimeZone))
	if !ok {
		applog.Security(c, "header.missing", map[string]any{"header": HeaderTimeZone})
		return services.Caller{}, domain.ErrMissingHeader.With(HeaderTimeZone)
	}
	token := strings.TrimSpace(c.Get(HeaderAuthToken))
	if needToken && token == "" {
		applog.Security(c, "header.missing", map[string]any{"header": HeaderAuthToken})
		return services.Caller{}, domain.ErrMissingHeader.With(HeaderAuthToken)
	}
	return services.Caller{UserID: uid, AuthToken: token, Location: loc}, nil
}

// readCaller is writeCaller for reads: only User-Id is required.
func readCaller(c *fiber.Ctx) (services.Caller, error) {
	uid, ok := validate.ID(c.Get(HeaderUserID))
	if !ok {
		return services.Caller{}, domain.ErrMissingHeader.With(HeaderUserID)
	}
	return services.Caller{
		UserID:    uid,
		AuthToken: strings.TrimSpace(c.Get(HeaderAuthToken)),
		Location:  displayLoc(c),
	}, nil
}

// displayLoc is the caller's zone for display dates; UTC when absent or unknown.
func displayLoc(c *fiber.Ctx) *time.Location {
	if loc, ok := validate.TimeZone(c.Get(HeaderTimeZone)); ok {
		return loc
	}
	return time.UTC
}

func pageRequest(c *fiber.Ctx) (domain.PageRequest, error) {
	page, size, ok := validate.Page(c.Query("page"), c.Query("size"))
	if !ok {
		return domain.PageRequest{}, domain.ErrInvalidPagination
	}
	return domain.PageRequest{Page: page, Size: size}, nil
}

func searchTerm(c *fiber.Ctx) (string, error) {
	raw := c.Query("searchTerm")
	q, ok := validate.SearchTerm(raw)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "searchTerm"})
		return "", domain.ErrInvalidSearchTerm
	}
	return q, nil
}

// optionalID reads a query parameter that is either ALL, absent, or an id.
func optionalID(c *fiber.Ctx, key string) (string, error) {
	v, ok := validate.OptionalID(c.Query(key))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": key})
		return "", domain.ErrValidation.With("%s", key)
	}
	return v, nil
}

func pathID(c *fiber.Ctx, key string, invalid *domain.Error) (string, error) {
	id, ok := validate.ID(c.Params(key))
	if !ok {
		return "", invalid.With("%s %q", key, c.Params(key))
	}
	return id, nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return domain.ErrValidation.With("malformed body")
	}
	return nil
}

// sendPage writes a page with the display date in the caller's zone.
func sendPage[T any](c *fiber.Ctx, p domain.Page[T]) error {
	p.DisplayDate = time.Now().In(displayLoc(c)).Format("02 Jan 2006")
	return c.JSON(p)
}
