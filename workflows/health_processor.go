// workflows/health_processor.go
package workflows

import (
	"context"
	"fmt"

	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"

	"github.com/brandlens/brandlens-workflows/services"
)

type HealthProcessor struct {
	healthService services.HealthCheckService
	client        inngestgo.Client
}

func NewHealthProcessor(healthService services.HealthCheckService) *HealthProcessor {
	return &HealthProcessor{
		healthService: healthService,
	}
}

func (p *HealthProcessor) SetClient(client inngestgo.Client) {
	p.client = client
}

func (p *HealthProcessor) HealthCheckModels() inngestgo.ServableFunction {
	fn, err := inngestgo.CreateFunction(
		p.client,
		inngestgo.FunctionOpts{
			ID:      "health-check-models",
			Name:    "Health Check AI Models - Auto-disable Failing Providers",
			Retries: inngestgo.IntPtr(1),
		},
		inngestgo.CronTrigger("0 * * * *"), // Every hour
		func(ctx context.Context, input inngestgo.Input[any]) (any, error) {
			report, err := step.Run(ctx, "check-all-models", func(ctx context.Context) (*services.HealthCheckReport, error) {
				return p.healthService.CheckAllModels(ctx)
			})
			if err != nil {
				return nil, fmt.Errorf("health check sweep failed: %w", err)
			}

			return map[string]interface{}{
				"checked":  report.Checked,
				"healthy":  report.Healthy,
				"failed":   report.Failed,
				"disabled": report.Disabled,
			}, nil
		},
	)
	if err != nil {
		fmt.Printf("Failed to create health-check-models function: %v\n", err)
	}

	return fn
}
