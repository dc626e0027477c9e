// Package clients holds the HTTP clients for the profile, notification and
// analytics services. They share fiber's fasthttp Agent.
package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

// StatusError is a non-2xx response from a downstream service.
type StatusError struct {
	Service string
	Status  int
	Body    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s responded %d: %s", e.Service, e.Status, e.Body)
}

type base struct {
	service string
	url     string
	timeout time.Duration
}

// timeoutFor clamps the client timeout to ctx's deadline.
func (b base) timeoutFor(ctx context.Context) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	t := b.timeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < t {
			t = left
		}
	}
	return t, nil
}

// do sends a (and its optional JSON body), then decodes a 2xx response into out.
func (b base) do(ctx context.Context, a *fiber.Agent, headers map[string]string, out any) error {
	t, err := b.timeoutFor(ctx)
	if err != nil {
		fiber.ReleaseAgent(a)
		return err
	}
	a.Timeout(t)
	a.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	for k, v := range headers {
		if v != "" {
			a.Set(k, v)
		}
	}
	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)
		return fmt.Errorf("%s request: %w", b.service, err)
	}
	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("%s request: %w", b.service, errors.Join(errs...))
	}
	if code < 200 || code > 299 {
		msg := string(body)
		if len(msg) > 200 {
			msg = msg[:200]
		}
		return &StatusError{Service: b.service, Status: code, Body: msg}
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s decode: %w", b.service, err)
	}
	return nil
}

// IsBadRequest reports whether err is a downstream 400 or 404.
func IsBadRequest(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && (se.Status == fiber.StatusBadRequest || se.Status == fiber.StatusNotFound)
}
