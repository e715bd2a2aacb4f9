package accrual

import (
	"context"
	"fmt"

	"github.com/investrahq/investra-backend/pkg/types"
)

const jobName = "monthly_accrual"

// Job adapts the accrual sweep to the cron worker's Job contract.
type Job struct {
	service Service
}

// NewJob wraps the accrual service for the scheduler.
func NewJob(service Service) (*Job, error) {
	if service == nil {
		return nil, fmt.Errorf("accrual service required")
	}
	return &Job{service: service}, nil
}

// Name identifies the job in logs and metrics.
func (j *Job) Name() string { return jobName }

// Run accrues the current calendar period.
func (j *Job) Run(ctx context.Context) error {
	return j.service.RunForPeriod(ctx, types.CurrentPeriod())
}
