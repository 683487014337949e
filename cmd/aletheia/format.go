package main

import "fmt"

// FormatSubject renders a subject_name/subject_id pair for human-facing
// output. Certificates here carry a flat id/name pair rather than an
// RFC 4514 Distinguished Name, so there's no attribute list to parse —
// just one fixed shape to print.
func FormatSubject(subjectName, subjectID string) string {
	return fmt.Sprintf("%s <%s>", subjectName, subjectID)
}
