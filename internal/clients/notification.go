package clients

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

type NotificationClient struct{ base }

func NewNotificationClient(baseURL string, timeout time.Duration) *NotificationClient {
	return &NotificationClient{base{service: "notification", url: baseURL, timeout: timeout}}
}

func (c *NotificationClient) SendMail(ctx context.Context, to, subject, body string) error {
	a := fiber.Post(c.url + "/send-mail").JSON(map[string]string{"to": to, "subject": subject, "body": body})
	return c.do(ctx, a, nil, nil)
}

func (c *NotificationClient) SendSMS(ctx context.Context, mobileNo, message string) error {
	a := fiber.Post(c.url + "/send-sms").JSON(map[string]string{"mobileNo": mobileNo, "message": message})
	return c.do(ctx, a, nil, nil)
}
