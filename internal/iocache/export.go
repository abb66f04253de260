package iocache

import (
	"errors"
	"fmt"

	"github.com/huangsam/repotrend/internal/contract"
	"github.com/huangsam/repotrend/internal/parquet"
)

// ExecuteRunExport exports tracked runs and job outcomes to two Parquet files
// named after outputFile.
func ExecuteRunExport(store contract.RunStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("run tracking is not enabled: set --run-backend")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run data found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total runs: %d\n", status.TotalRuns)
	fmt.Printf("Total job outcomes: %d\n", status.TableSizes[jobOutcomesTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	outcomes, err := store.GetAllOutcomes()
	if err != nil {
		return fmt.Errorf("failed to retrieve job outcomes: %w", err)
	}

	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRunsParquet(parquet.ConvertRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	fmt.Printf("Exported %d runs to: %s\n", len(runs), runsFile)

	outcomesFile := outputFile + ".job_outcomes.parquet"
	if err := parquet.WriteOutcomesParquet(parquet.ConvertOutcomeRecords(outcomes), outcomesFile); err != nil {
		return fmt.Errorf("failed to write job outcomes: %w", err)
	}
	fmt.Printf("Exported %d job outcomes to: %s\n", len(outcomes), outcomesFile)

	fmt.Println("\nExport complete! The Parquet files can be used with DuckDB, Pandas, Spark or any Parquet-compatible tool.")
	return nil
}
