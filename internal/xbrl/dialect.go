package xbrl

import (
	"sort"
	"strings"

	"github.com/ternarybob/scrutor/internal/models"
)

type dialectMarker struct {
	dialect  models.Dialect
	uriParts []string
	prefixes []string
}

// Ordered newest first so a document importing both taxonomies resolves to
// the newer one.
var dialectMarkers = []dialectMarker{
	{
		dialect:  models.DialectSEBI2025,
		uriParts: []string{"sebi.gov.in/xbrl/2025", "sebi.gov.in/xbrl/in-capmkt/2025"},
		prefixes: []string{"in-capmkt"},
	},
	{
		dialect:  models.DialectBSE2020,
		uriParts: []string{"bseindia.com/xbrl/fin/2020", "bseindia.com/xbrl/2020"},
		prefixes: []string{"in-bse-fin"},
	},
}

// DetectDialect identifies the taxonomy version from the declared namespaces.
// Unrecognized documents return DialectUnknown and false.
func DetectDialect(namespaces map[string]string) (models.Dialect, bool) {
	prefixes := make([]string, 0, len(namespaces))
	for p := range namespaces {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)

	for _, m := range dialectMarkers {
		for _, p := range prefixes {
			uri := strings.ToLower(namespaces[p])
			for _, part := range m.uriParts {
				if strings.Contains(uri, part) {
					return m.dialect, true
				}
			}
		}
	}
	for _, m := range dialectMarkers {
		for _, p := range m.prefixes {
			if _, ok := namespaces[p]; ok {
				return m.dialect, true
			}
		}
	}
	return models.DialectUnknown, false
}
