// internal/utils/files.go
package utils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var invalidFileChars = regexp.MustCompile(`[<>:"/\\|?*\s]+`)

// CleanFileName replaces characters that are invalid in file names.
func CleanFileName(name string) string {
	cleaned := invalidFileChars.ReplaceAllString(strings.TrimSpace(name), "_")
	cleaned = strings.Trim(cleaned, "._")

	if len(cleaned) > 200 {
		cleaned = cleaned[:200]
	}
	if cleaned == "" {
		cleaned = "output"
	}
	return cleaned
}

// GenerateOutputFileName names the output of one profile run, e.g.
// "creator_20240101_120000.xlsx". ext may be given with or without the dot.
func GenerateOutputFileName(username, ext string, at time.Time) string {
	name := CleanFileName(strings.TrimPrefix(username, "@"))
	return fmt.Sprintf("%s_%s.%s", name, at.Format("20060102_150405"), strings.TrimPrefix(ext, "."))
}
