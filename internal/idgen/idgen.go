// Package idgen produces the human-readable unique codes stamped on
// organizations and verification cases.
package idgen

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// OrgCode returns a code like "ORG-3F2A9C41". Uniqueness comes from the
// UUID entropy; the short form is what reviewers read out loud.
func OrgCode() string {
	return "ORG-" + shortID(8)
}

// CaseCode returns a code like "CASE-20260115-A81F3C", dated so reviewers
// can eyeball submission recency in the queue.
func CaseCode() string {
	return fmt.Sprintf("CASE-%s-%s", time.Now().UTC().Format("20060102"), shortID(6))
}

func shortID(n int) string {
	id := uuid.New()
	hex := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))
	return hex[:n]
}
