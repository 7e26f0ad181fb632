// Package utils provides bespoke, one off utils that don't make sense to be
// their own package
package utils

// Set at build time through -ldflags "-X".
var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "dev"
)

// UserAgent is sent on every outbound request to integrations and Space.
func UserAgent() string {
	return "chatspace/" + Version
}
