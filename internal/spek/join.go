// ABOUTME: compressJoin drops blank parts before joining with a separator
// ABOUTME: Shared by package_name, named_version, labeled_version, labeled_summary, banner

package spek

import "strings"

// compressJoin joins the parts that are not blank with sep.
func compressJoin(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, sep)
}
