// Mutafriches CLI - parcel enrichment and mutability scoring
//
// Usage:
//
//	mutafriches enrich --identifier 25056000HZ0346
//	mutafriches evaluate --identifier 25056000HZ0346 --answers answers.json --export out.xlsx
//	mutafriches evaluate --parcel parcel.json
//	mutafriches matrix --format table
package main

import (
	"fmt"
	"os"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
