package constants

// LedgerCategory is the strict category enum used on the expense-report
// ledger. The category oracle must return exactly one of these values;
// anything else is treated as a contract violation and mapped to Other.
type LedgerCategory string

const (
	Personnel        LedgerCategory = "Personnel"
	Travel           LedgerCategory = "Travel"
	Contracts        LedgerCategory = "Contracts"
	Materials        LedgerCategory = "Materials"
	Overhead         LedgerCategory = "Overhead"
	FiscalSponsorFee LedgerCategory = "Fiscal sponsor fee"
	Other            LedgerCategory = "Other"
)

var allLedgerCategories = []LedgerCategory{
	Personnel,
	Travel,
	Contracts,
	Materials,
	Overhead,
	FiscalSponsorFee,
	Other,
}

func LedgerCategories() []string {
	result := make([]string, len(allLedgerCategories))
	for i, cat := range allLedgerCategories {
		result[i] = string(cat)
	}
	return result
}

// IsLedgerCategory reports whether s is an exact member of the ledger enum.
// Case mismatches do NOT qualify; the oracle contract is exact-text.
func IsLedgerCategory(s string) bool {
	for _, cat := range allLedgerCategories {
		if s == string(cat) {
			return true
		}
	}
	return false
}

// LineItemCategories is the looser five-member variant used by the extraction
// prompt and the rule classifier, paired with a free-form expense description.
var LineItemCategories = []string{"Materials", "Contracts", "Personnel", "Other", "Overhead"}

// Defaults assigned by the record parser when the extraction text carries no
// Category/Description lines; the rule classifier only runs while these hold.
const (
	DefaultCategory    = "Materials"
	DefaultDescription = "Farm Supplies"
)
