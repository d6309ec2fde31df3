package files

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ArchiveName builds the zip name for a product download: "Rose_Garden_DST.zip",
// or "Rose_Garden_all.zip" when format is empty. Names with nothing usable
// get a random one.
func ArchiveName(product, format string) string {
	base := strings.Trim(unsafeChars.ReplaceAllString(strings.TrimSpace(product), "_"), "_.")
	if base == "" {
		base = "design-" + uuid.NewString()[:8]
	}
	if format == "" {
		format = "all"
	}
	return base + "_" + format + ".zip"
}
