package classify

import (
	"context"
	"log/slog"

	"github.com/bff-tools/receipts-pipeline/constants"
	"github.com/bff-tools/receipts-pipeline/internal/llm"
)

// OracleClassifier resolves the strict seven-member ledger category through
// the category oracle and enforces its exact-text contract.
type OracleClassifier struct {
	Oracle llm.CategoryOracle
	Logger *slog.Logger
}

func NewOracleClassifier(oracle llm.CategoryOracle, logger *slog.Logger) *OracleClassifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &OracleClassifier{Oracle: oracle, Logger: logger}
}

// Classify returns a ledger enum member. Any oracle failure or off-contract
// response (case mismatch, extra text, unknown label) degrades to Other with
// a warning; this is a fail-safe default, not a retry condition.
func (c *OracleClassifier) Classify(ctx context.Context, vendor, notes, filename string) constants.LedgerCategory {
	resp, err := c.Oracle.Categorize(ctx, llm.CategoryRequest{
		Vendor:     vendor,
		Notes:      notes,
		Filename:   filename,
		Categories: constants.LedgerCategories(),
	})
	if err != nil {
		c.Logger.Warn("classify.oracle.error", "vendor", vendor, "error", err)
		return constants.Other
	}
	if !constants.IsLedgerCategory(resp) {
		c.Logger.Warn("classify.oracle.off_contract", "vendor", vendor, "response", resp)
		return constants.Other
	}
	return constants.LedgerCategory(resp)
}
