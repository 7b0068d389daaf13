package engine

import (
	"fmt"
	"sort"

	"github.com/piwi3910/LayCut/internal/model"
)

// Optimizer builds cutting plans with a greedy one-cut-per-iteration heuristic.
// It holds no mutable state and is safe for concurrent use.
type Optimizer struct {
	Settings model.PlanSettings
}

// stepFunc computes one cut from a snapshot. Allocate always uses nextCut.
type stepFunc func(s planState, c model.Constraints, priority model.Priority, cutNumber int) (model.Cut, planState)

func New(settings model.PlanSettings) *Optimizer {
	return &Optimizer{Settings: settings}
}

// Allocate produces a cutting plan that fulfills every size in orders
// without exceeding either capacity constraint in any cut.
//
// Each iteration picks a stack height, hands out blocks to the sizes with the
// most outstanding demand and records one cut. The loop is capped at the total
// ordered quantity, since every cut reduces outstanding demand by at least one.
func (o *Optimizer) Allocate(orders model.OrderSet, c model.Constraints) (model.CuttingPlan, error) {
	if err := ValidateOrders(orders); err != nil {
		return nil, err
	}
	if err := ValidateConstraints(c); err != nil {
		return nil, err
	}
	if !o.Settings.Priority.Valid() {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, o.Settings.Priority)
	}
	if limit := o.Settings.MaxTotalQuantity; limit > 0 && orders.Total() > limit {
		return nil, fmt.Errorf("%w: total order quantity %d exceeds the limit of %d", ErrInvalidInput, orders.Total(), limit)
	}
	return run(orders, c, o.Settings.Priority, nextCut)
}

// run drives step until no demand is left. The loop is capped at the total
// ordered quantity and every step must lower the outstanding demand.
func run(orders model.OrderSet, c model.Constraints, priority model.Priority, step stepFunc) (model.CuttingPlan, error) {
	state := newPlanState(orders)
	maxIterations := orders.Total()

	var plan model.CuttingPlan
	for state.pending() {
		if len(plan) >= maxIterations {
			return nil, fmt.Errorf("%w: %d cuts left %d pieces unallocated", ErrNonConvergence, len(plan), state.totalRemaining())
		}
		cut, next := step(state, c, priority, len(plan)+1)
		if next.totalRemaining() >= state.totalRemaining() {
			return nil, fmt.Errorf("%w: cut %d made no progress", ErrNonConvergence, cut.CutNumber)
		}
		plan = append(plan, cut)
		state = next
	}
	return plan, nil
}

// planState is an immutable snapshot of the outstanding demand between cuts.
// Items stay in input order.
type planState []model.OrderItem

func newPlanState(orders model.OrderSet) planState {
	state := make(planState, len(orders))
	for i, line := range orders {
		state[i] = model.OrderItem{
			Size:      line.Size,
			Quantity:  line.Quantity,
			Remaining: line.Quantity,
		}
	}
	return state
}

func (s planState) pending() bool {
	for _, item := range s {
		if item.Remaining > 0 {
			return true
		}
	}
	return false
}

func (s planState) totalRemaining() int {
	total := 0
	for _, item := range s {
		total += item.Remaining
	}
	return total
}

func (s planState) largestRemaining() int {
	largest := 0
	for _, item := range s {
		largest = max(largest, item.Remaining)
	}
	return largest
}

// ranked returns item indices by remaining demand, largest first.
// Equal demand keeps input order.
func (s planState) ranked() []int {
	idx := make([]int, len(s))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return s[idx[a]].Remaining > s[idx[b]].Remaining
	})
	return idx
}

// smallestPending returns the index of the item with the smallest positive
// remaining demand, or -1 when nothing is outstanding.
func (s planState) smallestPending() int {
	best := -1
	for i, item := range s {
		if item.Remaining <= 0 {
			continue
		}
		if best == -1 || item.Remaining < s[best].Remaining {
			best = i
		}
	}
	return best
}

// allocation is one size's share of a cut, tied back to its state index.
type allocation struct {
	index  int
	blocks int
}

// nextCut computes one cut from the given snapshot and returns it together
// with the snapshot that remains after it. The input snapshot is not modified.
func nextCut(s planState, c model.Constraints, priority model.Priority, cutNumber int) (model.Cut, planState) {
	stackSize := min(c.MaxStackingCloth, s.largestRemaining())

	allocs := allocateBlocks(s, stackSize, c.MaxBlocksPerCut)
	if len(allocs) == 0 {
		i := s.smallestPending()
		allocs = []allocation{{index: i, blocks: 1}}
		stackSize = min(s[i].Remaining, c.MaxStackingCloth)
	} else if priority == model.PriorityMinWaste {
		stackSize = trimStack(s, allocs, stackSize)
	}

	next := make(planState, len(s))
	copy(next, s)

	cut := model.Cut{
		CutNumber: cutNumber,
		StackSize: stackSize,
		Blocks:    make(model.BlockAllocation, 0, len(allocs)),
	}
	for _, a := range allocs {
		item := &next[a.index]
		if a.blocks >= ceilDiv(item.Remaining, stackSize) {
			item.Remaining = 0
		} else {
			item.Remaining -= a.blocks * stackSize
		}
		cut.Blocks = append(cut.Blocks, model.BlockCount{Size: item.Size, Blocks: a.blocks})
	}
	return cut, next
}

// allocateBlocks hands out the block budget to sizes in rank order. Each size
// asks for enough blocks to cover its remaining demand at the given stack height.
func allocateBlocks(s planState, stackSize, budget int) []allocation {
	if stackSize < 1 {
		return nil
	}
	var allocs []allocation
	for _, i := range s.ranked() {
		if budget == 0 {
			break
		}
		if s[i].Remaining <= 0 {
			continue
		}
		blocks := min(ceilDiv(s[i].Remaining, stackSize), budget)
		allocs = append(allocs, allocation{index: i, blocks: blocks})
		budget -= blocks
	}
	return allocs
}

// trimStack lowers the stack height to the smallest value that still lets at
// least one allocated size finish in this cut: min over sizes of
// ceil(remaining / blocks). No size overshoots by more than blocks-1 pieces.
func trimStack(s planState, allocs []allocation, stackSize int) int {
	trimmed := stackSize
	for _, a := range allocs {
		trimmed = min(trimmed, ceilDiv(s[a.index].Remaining, a.blocks))
	}
	return max(1, trimmed)
}

// ceilDiv returns ceil(a/b) for b > 0 without overflowing near MaxInt.
func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a-1)/b + 1
}
