package rendering

import (
	"regexp"
	"strings"

	"github.com/jonathan/jobfit/internal/types"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slug lowercases s and replaces each run of characters outside [a-z0-9] with a
// single dash. Leading and trailing dashes are dropped.
func Slug(s string) string {
	return strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// FilenameFor returns the download name for a document, for example
// "ada-lovelace-full-stack-developer-tech-startup-resume.pdf". Components that
// sanitize to nothing are left out.
func FilenameFor(kind types.DocumentKind, job types.JobDetails, name string) string {
	parts := make([]string, 0, 4)
	for _, component := range []string{name, job.Title, job.Company, string(kind)} {
		if s := Slug(component); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "-") + ".pdf"
}
