// Package version provides version information for the pricetracker application.
package version

// Version is the current version of the pricetracker application.
const Version = "0.3.1"

// AgentString returns the full agent string with versioning.
// Used as the User-Agent when fetching product pages.
func AgentString() string {
	return "pricetracker/v" + Version
}
