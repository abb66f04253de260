package outwriter

import (
	"os"

	"github.com/huangsam/repotrend/internal/contract"
	"golang.org/x/term"
)

// GetMaxTableNameWidth calculates the maximum width for repository names in table
// output based on terminal width and the number of numeric columns shown.
func GetMaxTableNameWidth(cfg *contract.Config, numericColumns int) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 {
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Each numeric column takes about ten cells with borders and padding
	baseWidth := numericColumns*10 + 10

	available := termWidth - baseWidth
	if available < 20 {
		return 20
	}
	if available > 60 {
		return 60
	}
	return available
}
