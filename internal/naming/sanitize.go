package naming

import (
	"regexp"
	"strings"
)

// UnknownVendor is the sentinel token used when a vendor name sanitizes to
// nothing at all.
const UnknownVendor = "Unknown-Vendor"

const maxVendorLen = 50

// Corporate suffixes stripped from the end of a vendor name. At most one is
// removed, checked in this order.
var vendorSuffixes = []string{" Inc", " LLC", " Ltd", " Corp", " Corporation", " Company", " Co"}

var (
	reSpecial = regexp.MustCompile(`[^\w\s-]`)
	reRuns    = regexp.MustCompile(`[-\s]+`)
)

// SanitizeVendor turns a free-text vendor name into a filename-safe token:
// only word characters and hyphens, no leading/trailing/duplicate hyphens,
// at most 50 characters. Idempotent.
func SanitizeVendor(name string) string {
	vendor := strings.TrimSpace(name)

	for _, suffix := range vendorSuffixes {
		if strings.HasSuffix(vendor, suffix) {
			vendor = vendor[:len(vendor)-len(suffix)]
			break
		}
	}

	vendor = reSpecial.ReplaceAllString(vendor, "")
	vendor = reRuns.ReplaceAllString(vendor, "-")
	vendor = strings.Trim(vendor, "-")

	if vendor == "" {
		return UnknownVendor
	}
	if len(vendor) > maxVendorLen {
		vendor = strings.TrimRight(vendor[:maxVendorLen], "-")
	}
	return vendor
}
