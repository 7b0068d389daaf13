package engine

import (
	"github.com/google/uuid"
	"github.com/piwi3910/LayCut/internal/model"
)

// Plan runs allocation and analysis for a request and assembles the response.
// The request priority, when set, overrides the optimizer's configured one.
func (o *Optimizer) Plan(req model.PlanRequest) (model.PlanResponse, error) {
	settings := o.Settings.WithPriority(req.Priority)
	opt := New(settings)

	constraints := req.Constraints()
	plan, err := opt.Allocate(req.Orders, constraints)
	if err != nil {
		return model.PlanResponse{}, err
	}
	metrics, err := Analyze(req.Orders, plan, constraints)
	if err != nil {
		return model.PlanResponse{}, err
	}
	return model.NewPlanResponse(uuid.NewString(), settings.Priority, req.Orders, constraints, plan, metrics), nil
}
