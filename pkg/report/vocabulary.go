package report

import (
	"strings"

	"github.com/OFFIS-RIT/osint/pkg/common"
)

// VocabularyType picks the linked-data type of an entity. A known subtype
// named by the type hint wins. Free-form hints only select the government
// variants of organizations and policies.
func VocabularyType(e common.Entity) string {
	k := e.Kind()
	if t, ok := common.SchemaSubtype(k, e.TypeHint); ok {
		return t
	}

	hint := strings.ToLower(e.TypeHint)
	switch k {
	case common.KindOrganization:
		if strings.Contains(hint, "government") || strings.Contains(hint, "public") {
			return common.SchemaGovernmentOrganization
		}
	case common.KindPolicy:
		if strings.Contains(hint, "service") {
			return common.SchemaGovernmentService
		}
	}
	return common.SchemaType(k)
}
