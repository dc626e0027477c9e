package clients

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// ReportRequest mirrors the analytics service's runReport contract.
type ReportRequest struct {
	StartDate  string            `json:"startDate"`
	EndDate    string            `json:"endDate"`
	Dimensions []string          `json:"dimensions"`
	Metrics    []string          `json:"metrics"`
	Filters    map[string]string `json:"filters,omitempty"`
	Limit      int               `json:"limit"`
	Offset     int               `json:"offset"`
	OrderBy    string            `json:"orderBy,omitempty"`
}

type ReportRow struct {
	Dimensions map[string]string `json:"dimensions"`
	Metrics    map[string]int64  `json:"metrics"`
}

type AnalyticsClient struct{ base }

func NewAnalyticsClient(baseURL string, timeout time.Duration) *AnalyticsClient {
	return &AnalyticsClient{base{service: "analytics", url: baseURL, timeout: timeout}}
}

func (c *AnalyticsClient) RunReport(ctx context.Context, req ReportRequest) ([]ReportRow, error) {
	var out struct {
		Rows []ReportRow `json:"rows"`
	}
	if err := c.do(ctx, fiber.Post(c.url+"/reports:run").JSON(req), nil, &out); err != nil {
		return nil, err
	}
	return out.Rows, nil
}
