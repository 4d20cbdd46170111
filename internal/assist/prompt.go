package assist

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/hygieneops/internal/core"
)

// BuildPrompt renders the user message for one mapping request.
func BuildPrompt(req core.MappingRequest) string {
	var cols strings.Builder
	for _, f := range req.Fields {
		desc := f.Description
		if desc == "" {
			desc = "No description"
		}
		fmt.Fprintf(&cols, "- %s: %s\n", f.Name, desc)
	}

	example := exampleMapping(req.Fields)

	return fmt.Sprintf(`Map CSV column headers to database columns based on semantic similarity.

CSV Headers to map: %s

Available Database Columns:
%s
RULES:
1. Match columns based on meaning, not just exact text match
2. Handle variations in case and abbreviation, like "ServiceID" -> "service_id"
3. Handle spaces and underscores: "SITE NAME" -> "site_name"
4. If a CSV header matches these excluded terms, ALWAYS map to "%s": %s
5. If no good semantic match exists, map to "%s"

Return ONLY a JSON object mapping each CSV header to its best database column match.
Format: {"CSV_Header": "database_column_or_%s"}

Example: %s`,
		strings.Join(req.Headers, ", "),
		cols.String(),
		core.Skip, strings.Join(req.Ignored, ", "),
		core.Skip,
		core.Skip,
		example,
	)
}

func exampleMapping(fields []core.FieldDescriptor) string {
	if len(fields) == 0 {
		return `{"ServiceID": "service_id"}`
	}
	f := fields[0]
	return fmt.Sprintf(`{"%s": "%s", "Unrelated": "%s"}`, strings.ReplaceAll(f.Label, " ", ""), f.Name, core.Skip)
}
