package client

import (
	"fmt"
	"io"

	"application-generator/internal/domain"
)

// Render writes the result as Markdown under its two section headings.
func Render(w io.Writer, r domain.ApplicationResult) error {
	_, err := fmt.Fprintf(w, "# Generated Content\n\n## Tailored Resume\n\n%s\n\n## Cover Letter\n\n%s\n", r.Resume, r.CoverLetter)
	return err
}
