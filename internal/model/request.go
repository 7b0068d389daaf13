package model

// PlanRequest is the body accepted by the optimize endpoint and the CLI.
type PlanRequest struct {
	Orders           OrderSet `json:"orders"`
	MaxBlocksPerCut  int      `json:"maxBlocksPerCut"`
	MaxStackingCloth int      `json:"maxStackingCloth"`
	Priority         Priority `json:"priority,omitempty"` // Empty means the configured default
}

// Constraints returns the capacity limits carried by the request.
func (r PlanRequest) Constraints() Constraints {
	return Constraints{
		MaxBlocksPerCut:  r.MaxBlocksPerCut,
		MaxStackingCloth: r.MaxStackingCloth,
	}
}

// PlanResponse is the serialised result of one optimization.
type PlanResponse struct {
	PlanID                  string             `json:"planId"`
	Priority                Priority           `json:"priority"`
	Orders                  OrderSet           `json:"orders"`
	Constraints             Constraints        `json:"constraints"`
	TotalOrderQuantity      int                `json:"totalOrderQuantity"`
	TotalCuts               int                `json:"totalCuts"`
	CuttingPlan             CuttingPlan        `json:"cuttingPlan"`
	BlockUtilizationPercent int                `json:"blockUtilizationPercent"`
	StackUtilizationPercent int                `json:"stackUtilizationPercent"`
	ClothEfficiencyPercent  int                `json:"clothEfficiencyPercent"`
	TotalWaste              int                `json:"totalWaste"`
	TotalClothUsed          int                `json:"totalClothUsed"`
	Summary                 []SizeSummary      `json:"summary"`
	ProductionVerification  []SizeVerification `json:"productionVerification"`
}

// NewPlanResponse assembles a response from a plan and its metrics.
func NewPlanResponse(id string, priority Priority, orders OrderSet, c Constraints, plan CuttingPlan, m Metrics) PlanResponse {
	if plan == nil {
		plan = CuttingPlan{}
	}
	return PlanResponse{
		PlanID:                  id,
		Priority:                priority,
		Orders:                  orders,
		Constraints:             c,
		TotalOrderQuantity:      orders.Total(),
		TotalCuts:               len(plan),
		CuttingPlan:             plan,
		BlockUtilizationPercent: m.BlockUtilizationPercent,
		StackUtilizationPercent: m.StackUtilizationPercent,
		ClothEfficiencyPercent:  m.ClothEfficiencyPercent,
		TotalWaste:              m.TotalWaste,
		TotalClothUsed:          m.TotalClothUsed,
		Summary:                 m.Summary,
		ProductionVerification:  m.Verification,
	}
}
