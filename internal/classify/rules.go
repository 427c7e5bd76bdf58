// Package classify assigns expense categories: an ordered keyword ruleset
// for the loose line-item variant, and an oracle-backed classifier for the
// strict ledger enum.
package classify

import (
	"strings"

	"github.com/bff-tools/receipts-pipeline/constants"
)

// Result pairs a line-item category with its expense description.
type Result struct {
	Category    string
	Description string
}

// vendorRule matches a vendor name against a keyword group. Groups are
// evaluated in order; the first match wins.
type vendorRule struct {
	keywords []string
	result   Result
}

var vendorRules = []vendorRule{
	// Staff meals
	{
		keywords: []string{
			"whole bowl", "new seasons", "thai sunflower", "super torta",
			"grocery outlet", "7/11", "oui presse", "observatory",
		},
		result: Result{Category: "Materials", Description: "Staff Meal"},
	},
	// Hardware and supplies
	{
		keywords: []string{"home depot", "hardware", "amazon", "do it best", "woodstock"},
		result:   Result{Category: "Materials", Description: "Farm Supplies"},
	},
	// Nursery and garden supplies
	{
		keywords: []string{"nursery", "portland nursery", "xera plants"},
		result:   Result{Category: "Materials", Description: "Farm Supplies"},
	},
	// Feed and supplies
	{
		keywords: []string{"wichita feed", "feed", "supplies"},
		result:   Result{Category: "Materials", Description: "Farm Supplies"},
	},
	// Office supplies and services
	{
		keywords: []string{"office depot", "office max", "quickbooks", "fli social ink"},
		result:   Result{Category: "Other", Description: "Office Supplies"},
	},
	// Postal services
	{
		keywords: []string{"usps", "postal", "mail"},
		result:   Result{Category: "Materials", Description: "Farm Supplies"},
	},
	// Testing and quality assurance
	{
		keywords: []string{"matrix sciences", "testing", "quality"},
		result:   Result{Category: "Other", Description: "Quality Assurance"},
	},
}

// ByRules maps (vendor, notes) onto a line-item category and description.
// Vendor keyword groups run first; notes containing "meal" or "supplies"
// override the vendor result. Nothing matching keeps the defaults.
func ByRules(vendor, notes string) Result {
	vendorLower := strings.ToLower(vendor)
	out := Result{Category: constants.DefaultCategory, Description: constants.DefaultDescription}

	for _, rule := range vendorRules {
		if containsAny(vendorLower, rule.keywords) {
			out = rule.result
			break
		}
	}

	// Notes take precedence over vendor keywords.
	if notes != "" && !strings.EqualFold(notes, "none") {
		notesLower := strings.ToLower(notes)
		if strings.Contains(notesLower, "meal") {
			out = Result{Category: "Materials", Description: "Staff Meal"}
		} else if strings.Contains(notesLower, "supplies") {
			out = Result{Category: "Materials", Description: "Farm Supplies"}
		}
	}
	return out
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
