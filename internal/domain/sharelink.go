package domain

import "strings"

const shareRoute = "/#/order/"

// BuildShareLink returns the hash-router URL that opens baseURL with orderID selected.
// A base that already points at an order route is reduced to its root first.
func BuildShareLink(baseURL, orderID string) string {
	base := strings.TrimSpace(baseURL)
	if i := strings.Index(base, "/#/order"); i >= 0 {
		base = base[:i]
	}
	base = strings.TrimRight(base, "/#")
	return base + shareRoute + orderID
}
