package engine

import (
	"fmt"

	"github.com/piwi3910/LayCut/internal/model"
)

// ComparisonScenario defines a named set of settings and constraints to compare.
type ComparisonScenario struct {
	Name        string             `json:"name"`
	Settings    model.PlanSettings `json:"settings"`
	Constraints model.Constraints  `json:"constraints"`
}

// ComparisonResult holds the plan and headline statistics for a single scenario.
type ComparisonResult struct {
	Scenario               ComparisonScenario `json:"scenario"`
	Plan                   model.CuttingPlan  `json:"cuttingPlan"`
	TotalCuts              int                `json:"totalCuts"`
	TotalWaste             int                `json:"totalWaste"`
	ClothEfficiencyPercent int                `json:"clothEfficiencyPercent"`
	BlockUtilization       int                `json:"blockUtilizationPercent"`
	StackUtilization       int                `json:"stackUtilizationPercent"`
}

// CompareScenarios plans the same orders under each scenario and returns the
// results in scenario order. This gives a side-by-side view of what a different
// priority or cutting-room capacity would change.
func CompareScenarios(scenarios []ComparisonScenario, orders model.OrderSet) ([]ComparisonResult, error) {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		opt := New(scenario.Settings)
		plan, err := opt.Allocate(orders, scenario.Constraints)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
		}
		metrics, err := Analyze(orders, plan, scenario.Constraints)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
		}

		results = append(results, ComparisonResult{
			Scenario:               scenario,
			Plan:                   plan,
			TotalCuts:              len(plan),
			TotalWaste:             metrics.TotalWaste,
			ClothEfficiencyPercent: metrics.ClothEfficiencyPercent,
			BlockUtilization:       metrics.BlockUtilizationPercent,
			StackUtilization:       metrics.StackUtilizationPercent,
		})
	}

	return results, nil
}

// BuildDefaultScenarios generates comparison scenarios around the current
// settings: the other priority, one more block per cut, and half the stack height.
func BuildDefaultScenarios(base model.PlanSettings, c model.Constraints) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{
			Name:        "Current Settings",
			Settings:    base,
			Constraints: c,
		},
	}

	// Scenario: the other priority
	alt := base
	if base.Priority == model.PriorityMinCuts {
		alt.Priority = model.PriorityMinWaste
		scenarios = append(scenarios, ComparisonScenario{
			Name:        "Minimize Waste",
			Settings:    alt,
			Constraints: c,
		})
	} else {
		alt.Priority = model.PriorityMinCuts
		scenarios = append(scenarios, ComparisonScenario{
			Name:        "Minimize Cuts",
			Settings:    alt,
			Constraints: c,
		})
	}

	// Scenario: one extra cutting block
	moreBlocks := c
	moreBlocks.MaxBlocksPerCut++
	scenarios = append(scenarios, ComparisonScenario{
		Name:        fmt.Sprintf("%d blocks per cut", moreBlocks.MaxBlocksPerCut),
		Settings:    base,
		Constraints: moreBlocks,
	})

	// Scenario: lower stacking (e.g. heavier cloth)
	if c.MaxStackingCloth > 1 {
		halfStack := c
		halfStack.MaxStackingCloth = c.MaxStackingCloth / 2
		scenarios = append(scenarios, ComparisonScenario{
			Name:        fmt.Sprintf("Stack %d (half)", halfStack.MaxStackingCloth),
			Settings:    base,
			Constraints: halfStack,
		})
	}

	return scenarios
}
