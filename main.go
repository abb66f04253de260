// main is the entry point for the repotrend CLI.
package main

import (
	"fmt"
	"os"

	"github.com/huangsam/repotrend/cmd"
	"github.com/huangsam/repotrend/internal/iocache"
)

func main() {
	cmd.SetCacheManager(iocache.Manager)
	os.Exit(run())
}

// run executes the root command so deferred cleanup happens before exit.
func run() int {
	defer iocache.CloseCaching()
	defer func() {
		if err := cmd.StopProfiling(); err != nil {
			_, _ = fmt.Fprintln(os.Stderr, "⚠️ ", err)
		}
	}()

	if err := cmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "❌", err)
		return 1
	}
	return 0
}
