// Package shared holds utilities used by multiple packages that belong to
// no specific layer. Keep it free of business logic and of dependencies on
// other internal packages.
package shared
