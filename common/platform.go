package common

import "runtime"

// PlatformFamily groups operating systems by the cancellation-timing behavior
// of their web-view surfaces. Apple web views only report a close after
// navigation has fully settled; everywhere else a close can race a redirect.
type PlatformFamily string

const (
	FamilyApple PlatformFamily = "apple"
	FamilyOther PlatformFamily = "other"
)

func IsAndroid() bool {
	return runtime.GOOS == "android"
}

func IsIOS() bool {
	return runtime.GOOS == "ios"
}
func IsWindows() bool {
	return runtime.GOOS == "windows"
}
func IsLinux() bool {
	return runtime.GOOS == "linux"
}
func IsMac() bool {
	return runtime.GOOS == "darwin"
}

// IsNativeShell reports whether the process is embedded in a mobile shell,
// where login must go through the native authorization handshake instead of a
// browser redirect the host page can observe.
func IsNativeShell() bool {
	return IsAndroid() || IsIOS()
}

// Family returns the platform family for the current GOOS.
func Family() PlatformFamily {
	if IsIOS() {
		return FamilyApple
	}
	return FamilyOther
}
