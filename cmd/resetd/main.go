// Command resetd serves the test-only endpoint that empties the
// application's database and cache between test runs.
package main

import (
	"fmt"
	"os"

	"resetd/pkg/common/logger"
)

func main() {
	if err := logger.Init(logger.DefaultConfig()); err != nil {
		panic(err)
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
