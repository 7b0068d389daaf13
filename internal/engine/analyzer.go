package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/piwi3910/LayCut/internal/model"
)

// Analyze computes production totals, waste, utilization and cloth efficiency
// for a plan, and verifies that every ordered size is fulfilled.
//
// A shortfall means the plan is wrong, so it is reported as an error and no
// metrics are returned.
func Analyze(orders model.OrderSet, plan model.CuttingPlan, c model.Constraints) (model.Metrics, error) {
	if err := ValidateConstraints(c); err != nil {
		return model.Metrics{}, err
	}

	sizes := planSizes(orders, plan)

	production := make(model.OrderSet, len(sizes))
	var totalBlocks, totalStack, totalCloth int
	for i, size := range sizes {
		production[i].Size = size
	}
	for _, cut := range plan {
		for _, bc := range cut.Blocks {
			production[indexOf(sizes, bc.Size)].Quantity += bc.Blocks * cut.StackSize
		}
		totalBlocks += cut.Blocks.Total()
		totalStack += cut.StackSize
		totalCloth += cut.Cloth()
	}

	var (
		waste     int
		shortages []string
	)
	verification := make([]model.SizeVerification, len(sizes))
	for i, size := range sizes {
		ordered := orders.Quantity(size)
		produced := production[i].Quantity
		excess := max(0, produced-ordered)
		waste += excess
		verification[i] = model.SizeVerification{
			Size:      size,
			Ordered:   ordered,
			Produced:  produced,
			Excess:    excess,
			Fulfilled: produced >= ordered,
		}
		if produced < ordered {
			shortages = append(shortages, fmt.Sprintf("%s: produced %d of %d", size, produced, ordered))
		}
	}
	if len(shortages) > 0 {
		return model.Metrics{}, fmt.Errorf("%w: %s", ErrShortfallDetected, strings.Join(shortages, "; "))
	}

	clothEfficiency := 100
	if totalCloth > 0 {
		clothEfficiency = percent(totalCloth-waste, totalCloth)
	}

	return model.Metrics{
		Production:              production,
		TotalWaste:              waste,
		TotalBlocksUsed:         totalBlocks,
		TotalClothUsed:          totalCloth,
		BlockUtilizationPercent: percent(totalBlocks, len(plan)*c.MaxBlocksPerCut),
		StackUtilizationPercent: percent(totalStack, len(plan)*c.MaxStackingCloth),
		ClothEfficiencyPercent:  clothEfficiency,
		Summary:                 summarize(orders, sizes, plan),
		Verification:            verification,
	}, nil
}

// summarize lists, per size, the cuts the size appears in and its block count there.
func summarize(orders model.OrderSet, sizes []string, plan model.CuttingPlan) []model.SizeSummary {
	summary := make([]model.SizeSummary, len(sizes))
	for i, size := range sizes {
		refs := []model.CutRef{}
		for _, cut := range plan {
			if blocks := cut.Blocks.Blocks(size); blocks > 0 {
				refs = append(refs, model.CutRef{CutNumber: cut.CutNumber, Blocks: blocks})
			}
		}
		summary[i] = model.SizeSummary{
			Size:     size,
			Quantity: orders.Quantity(size),
			Cuts:     refs,
		}
	}
	return summary
}

// planSizes returns the ordered sizes followed by any size that appears only in the plan.
func planSizes(orders model.OrderSet, plan model.CuttingPlan) []string {
	sizes := orders.Sizes()
	for _, cut := range plan {
		for _, bc := range cut.Blocks {
			if indexOf(sizes, bc.Size) == -1 {
				sizes = append(sizes, bc.Size)
			}
		}
	}
	return sizes
}

func indexOf(sizes []string, size string) int {
	for i, s := range sizes {
		if s == size {
			return i
		}
	}
	return -1
}

// percent returns round(100 * num / den), or 0 when den is 0.
func percent(num, den int) int {
	if den == 0 {
		return 0
	}
	return int(math.Round(100 * float64(num) / float64(den)))
}
