package services

import (
	"context"

	"github.com/bytedance/sonic"
)

// Health of a backend as seen from the panel
type Health string

const (
	HealthOnline  Health = "online"
	HealthError   Health = "error"
	HealthOffline Health = "offline"
)

// StatusReport is the result of probing a service root
type StatusReport struct {
	Service  Service
	Health   Health
	Response any    // decoded body, or the raw text when it is not JSON
	Err      string // set when offline
}

// Status probes GET / of a service
func (c *Client) Status(ctx context.Context, s Service) StatusReport {
	report := StatusReport{Service: s}

	resp, err := c.http.R().SetContext(ctx).Get(c.origins[s] + "/")
	if err != nil {
		report.Health = HealthOffline
		report.Err = err.Error()
		return report
	}

	var body any
	if err := sonic.Unmarshal(resp.Body(), &body); err != nil {
		body = string(resp.Body())
	}
	report.Response = body

	if resp.IsError() {
		report.Health = HealthError
	} else {
		report.Health = HealthOnline
	}
	return report
}

// CheckAll probes every service in order
func (c *Client) CheckAll(ctx context.Context) []StatusReport {
	reports := make([]StatusReport, 0, len(AllServices))
	for _, s := range AllServices {
		reports = append(reports, c.Status(ctx, s))
	}
	return reports
}
