package llm

import (
	"fmt"
	"strings"
)

// System messages for the two oracle roles.
const (
	ExtractionSystemPrompt = "You are a document parser that extracts structured data from receipt images."
	CategorySystemPrompt   = "You are an expert financial analyst who categorizes business expenses accurately and consistently."
)

// BuildExtractionPrompt composes the instruction sent with every document.
// The four-field variant feeds the rename pipeline; withCategory adds the
// line-item category and expense description used by the report flow.
func BuildExtractionPrompt(withCategory bool, lineItemCategories []string) string {
	var b strings.Builder
	b.WriteString("Extract the following from this receipt image:\n")
	b.WriteString("- Vendor/store name (the business that issued the receipt)\n")
	b.WriteString("- Total cost (currency and amount)\n")
	b.WriteString("- Date of purchase\n")
	b.WriteString("- Any handwritten notes or markings\n")
	if withCategory {
		b.WriteString("- Line item category (" + strings.Join(lineItemCategories, ", ") + ")\n")
		b.WriteString("- Expense description (e.g., Farm Supplies, Staff Meal, etc.)\n")
	}
	b.WriteString("\nFormat the result as:\n")
	b.WriteString("Vendor: <vendor/store name>\n")
	b.WriteString("Date: <date>\n")
	b.WriteString("Total: <amount>\n")
	if withCategory {
		b.WriteString("Category: <line item category>\n")
		b.WriteString("Description: <expense description>\n")
	}
	b.WriteString("Notes: <handwritten notes or 'None'>")
	return b.String()
}

// BuildCategoryPrompt asks for exactly one member of the closed list, and
// nothing else, so the response can be validated by exact string match.
func BuildCategoryPrompt(req CategoryRequest) string {
	return fmt.Sprintf(
		"Categorize this expense into one of the following categories:\n%s\n\n"+
			"Expense details:\n- Vendor: %s\n- Notes: %s\n- Filename: %s\n\n"+
			"Please respond with ONLY the category name from the list above.\n"+
			"Do not include any explanation or additional text.",
		strings.Join(req.Categories, ", "), req.Vendor, req.Notes, req.Filename)
}
