// Deascope analyzes the robustness of DEA efficiency results: ranges,
// distributions and pairwise relations of efficiency indicators over all
// admissible weight vectors.
package main

import (
	"fmt"
	"os"

	"github.com/deatools/deascope/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
