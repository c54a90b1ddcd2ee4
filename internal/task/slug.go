package task

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/twiced-technology-gmbh/fvp/internal/date"
)

const maxSlugLength = 30

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// GenerateSlug converts a mode name to a filename-safe slug.
func GenerateSlug(name string) string {
	slug := strings.ToLower(name)
	slug = nonAlphanumeric.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")

	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(slug[:maxSlugLength], "-")
	}

	return slug
}

// StoreFilename returns the store file name for a mode.
func StoreFilename(mode string) string {
	return "tasks-" + GenerateSlug(mode) + ".json"
}

// ExportFilename returns the default export file name for a mode on day d.
func ExportFilename(d date.Date, mode string) string {
	return fmt.Sprintf("%s_FVP_tasks_%s.json", d, GenerateSlug(mode))
}
