package app

import "runtime"

const (
	Name = "shellauth"

	// Reported in log records and the demo CLI version output.
	Version = "1.4.2"

	Platform = runtime.GOOS

	// filenames
	LogFileName      = "shellauth.log"
	SettingsFileName = "local.json"
)
