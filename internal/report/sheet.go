package report

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

var invalidSheetChars = strings.NewReplacer(":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "(", "]", ")")

func cleanSheetText(value string) string {
	cleaned := invalidSheetChars.Replace(strings.TrimSpace(value))
	return strings.Trim(cleaned, "' ")
}

// truncateUnits cuts value to at most limit UTF-16 code units, the unit sheet name
// limits are counted in.
func truncateUnits(value string, limit int) string {
	units := 0
	for i, r := range value {
		size := 1
		if r >= 0x10000 {
			size = 2
		}
		if units+size > limit {
			return value[:i]
		}
		units += size
	}
	return value
}

func sheetName(value string) string {
	name := strings.Trim(truncateUnits(cleanSheetText(value), excelize.MaxSheetNameLength), "' ")
	if name == "" {
		return "Sheet"
	}
	return name
}

// uniqueSheetName appends a counter when name is taken. Sheet names compare
// case-insensitively.
func uniqueSheetName(name string, used map[string]struct{}) string {
	candidate := name
	for n := 2; ; n++ {
		key := strings.ToLower(candidate)
		if _, taken := used[key]; !taken {
			used[key] = struct{}{}
			return candidate
		}
		suffix := fmt.Sprintf(" (%d)", n)
		candidate = strings.TrimRight(truncateUnits(name, excelize.MaxSheetNameLength-len(suffix)), "' ") + suffix
	}
}
