// LayCut: garment cutting lay planner.
//
// Plans how many lays (cuts) a cutting room needs to fulfil a size-run order,
// how high to stack the cloth on each lay and how many marker blocks each size
// gets, within the table's block and stacking limits.
//
// Build:
//   go build -o laycut ./cmd/laycut
//
// Run the HTTP API:
//   laycut serve --config ~/.laycut/config.yaml
//
// Plan from an order sheet:
//   laycut plan --orders orders.csv --max-blocks 6 --max-stack 40 --pdf plan.pdf
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
