package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// OrderLine is a single garment size and its ordered quantity.
type OrderLine struct {
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

// OrderSet holds the ordered quantities per size, in request order.
// The order matters: it breaks ties between sizes with equal demand.
// It encodes to and decodes from a JSON object keyed by size.
type OrderSet []OrderLine

// Total returns the sum of all ordered quantities.
func (o OrderSet) Total() int {
	total := 0
	for _, line := range o {
		total += line.Quantity
	}
	return total
}

// Quantity returns the ordered quantity for a size, or 0 when absent.
func (o OrderSet) Quantity(size string) int {
	for _, line := range o {
		if line.Size == size {
			return line.Quantity
		}
	}
	return 0
}

// Sizes returns the size labels in order.
func (o OrderSet) Sizes() []string {
	sizes := make([]string, len(o))
	for i, line := range o {
		sizes[i] = line.Size
	}
	return sizes
}

// MarshalJSON encodes the set as {"S": 5, "M": 3}, keeping order.
func (o OrderSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, line := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(line.Size)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		fmt.Fprintf(&buf, "%d", line.Quantity)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object into the set, keeping key order.
// Duplicate keys are kept so validation can reject them.
func (o *OrderSet) UnmarshalJSON(data []byte) error {
	pairs, err := decodeOrderedObject(data)
	if err != nil {
		return err
	}
	set := make(OrderSet, 0, len(pairs))
	for _, p := range pairs {
		set = append(set, OrderLine{Size: p.key, Quantity: p.value})
	}
	*o = set
	return nil
}

// Constraints are the two physical capacity limits of the cutting room.
type Constraints struct {
	MaxBlocksPerCut  int `json:"maxBlocksPerCut"`
	MaxStackingCloth int `json:"maxStackingCloth"`
}

// OrderItem is the per-size working state of one optimization call.
type OrderItem struct {
	Size      string
	Quantity  int
	Remaining int
}

// BlockCount is the number of blocks one size receives in a cut.
type BlockCount struct {
	Size   string `json:"size"`
	Blocks int    `json:"blocks"`
}

// BlockAllocation lists the blocks of a cut in allocation order.
// It encodes to a JSON object keyed by size.
type BlockAllocation []BlockCount

// Total returns the number of blocks used.
func (b BlockAllocation) Total() int {
	total := 0
	for _, bc := range b {
		total += bc.Blocks
	}
	return total
}

// Blocks returns the block count for a size, or 0 when absent.
func (b BlockAllocation) Blocks(size string) int {
	for _, bc := range b {
		if bc.Size == size {
			return bc.Blocks
		}
	}
	return 0
}

func (b BlockAllocation) MarshalJSON() ([]byte, error) {
	set := make(OrderSet, len(b))
	for i, bc := range b {
		set[i] = OrderLine{Size: bc.Size, Quantity: bc.Blocks}
	}
	return set.MarshalJSON()
}

func (b *BlockAllocation) UnmarshalJSON(data []byte) error {
	pairs, err := decodeOrderedObject(data)
	if err != nil {
		return err
	}
	alloc := make(BlockAllocation, 0, len(pairs))
	for _, p := range pairs {
		alloc = append(alloc, BlockCount{Size: p.key, Blocks: p.value})
	}
	*b = alloc
	return nil
}

// Cut is one execution of the cutting process: every block in the cut
// is stacked to the same height.
type Cut struct {
	CutNumber int             `json:"cutNumber"`
	StackSize int             `json:"stackSize"`
	Blocks    BlockAllocation `json:"blocks"`
}

// Pieces returns the garments this cut produces for a size.
func (c Cut) Pieces(size string) int {
	return c.Blocks.Blocks(size) * c.StackSize
}

// Cloth returns the layers of cloth consumed by the cut across all blocks.
func (c Cut) Cloth() int {
	return c.StackSize * c.Blocks.Total()
}

// CuttingPlan is the ordered sequence of cuts fulfilling an order set.
type CuttingPlan []Cut

// Priority selects which objective the optimizer favours when trimming
// the stack height of a cut.
type Priority string

const (
	PriorityMinWaste Priority = "min-waste" // Trim stack height to the minimum feasible value
	PriorityMinCuts  Priority = "min-cuts"  // Keep the tallest stack the demand allows
)

// Valid reports whether p names a known priority.
func (p Priority) Valid() bool {
	return p == PriorityMinWaste || p == PriorityMinCuts
}

func (p Priority) String() string {
	return string(p)
}

// CutRef points at the blocks a size received in one cut.
type CutRef struct {
	CutNumber int `json:"cutNumber"`
	Blocks    int `json:"blocks"`
}

// SizeSummary lists the cuts in which a size appears.
type SizeSummary struct {
	Size     string   `json:"size"`
	Quantity int      `json:"quantity"`
	Cuts     []CutRef `json:"cuts"`
}

// SizeVerification compares ordered and produced quantities for a size.
type SizeVerification struct {
	Size      string `json:"size"`
	Ordered   int    `json:"ordered"`
	Produced  int    `json:"produced"`
	Excess    int    `json:"excess"`
	Fulfilled bool   `json:"fulfilled"`
}

// Metrics is the analysis of a cutting plan against its orders.
type Metrics struct {
	Production              OrderSet           `json:"production"`
	TotalWaste              int                `json:"totalWaste"`
	TotalBlocksUsed         int                `json:"totalBlocksUsed"`
	TotalClothUsed          int                `json:"totalClothUsed"`
	BlockUtilizationPercent int                `json:"blockUtilizationPercent"`
	StackUtilizationPercent int                `json:"stackUtilizationPercent"`
	ClothEfficiencyPercent  int                `json:"clothEfficiencyPercent"`
	Summary                 []SizeSummary      `json:"summary"`
	Verification            []SizeVerification `json:"productionVerification"`
}
