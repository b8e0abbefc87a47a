package gateway

import "strings"

// ExportPaths are the report downloads the API serves without credentials so
// they can be shared as plain links.
var ExportPaths = []string{
	"/products/export/csv",
	"/products/export/excel",
	"/products/export/pdf",
	"/orders/export/csv",
	"/orders/export/excel",
	"/orders/export/pdf",
	"/analytics/export/csv",
	"/analytics/export/excel",
	"/analytics/export/pdf",
}

// IsExportPath reports whether path contains one of the export endpoints.
// Matching is by substring so both "/products/export/pdf" and
// "/api/products/export/pdf?x=1" qualify.
func IsExportPath(path string) bool {
	for _, p := range ExportPaths {
		if strings.Contains(path, p) {
			return true
		}
	}
	return false
}

// ExportURL returns the shareable link for an export endpoint. Export links are
// opened directly, never fetched through the gateway.
func (g *Gateway) ExportURL(path string) string {
	return g.baseURL + path
}
