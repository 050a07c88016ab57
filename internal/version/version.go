// Package version exposes build metadata injected via -ldflags.
package version

var (
	AppName        = "Luna"
	AppDescription = "A Discord companion bot with a short memory and a long patience"
	AppVersion     = "dev"
	BuildDate      = ""
	GoVersion      = ""
)
