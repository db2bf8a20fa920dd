package roam

import (
	"strconv"
	"strings"
)

// ExpectedAPIVersion is the local API contract this build of rook speaks.
// It is sent with every call; the app rejects calls whose expectation it
// cannot satisfy.
const ExpectedAPIVersion = "1.2.0"

// versionMismatchError builds the fatal VERSION_MISMATCH error, advising
// whichever side is behind. A server whose major or minor version exceeds the
// expected one means this rook binary is outdated; anything else means the
// desktop app is.
func versionMismatchError(serverVersion string) *Error {
	if serverVersion == "" {
		serverVersion = "unknown"
	}
	err := Errorf(ErrCodeVersionMismatch,
		"Roam's local API speaks version %s but rook expects %s", serverVersion, ExpectedAPIVersion)
	if majorMinorNewer(serverVersion, ExpectedAPIVersion) {
		err.Suggestion = "This build of rook is outdated. Update rook to a release that supports API " + serverVersion + "."
	} else {
		err.Suggestion = "The Roam desktop app is outdated. Update Roam to a release that serves API " + ExpectedAPIVersion + "."
	}
	return err.WithContext("server_version", serverVersion).
		WithContext("expected_version", ExpectedAPIVersion)
}

// majorMinorNewer reports whether a's (major, minor) pair exceeds b's.
// Patch differences never count: the API contract is defined by major.minor.
func majorMinorNewer(a, b string) bool {
	aMaj, aMin := majorMinor(a)
	bMaj, bMin := majorMinor(b)
	if aMaj != bMaj {
		return aMaj > bMaj
	}
	return aMin > bMin
}

func majorMinor(v string) (major, minor int) {
	parts := strings.SplitN(strings.TrimSpace(v), ".", 3)
	if len(parts) > 0 {
		major, _ = strconv.Atoi(parts[0])
	}
	if len(parts) > 1 {
		minor, _ = strconv.Atoi(parts[1])
	}
	return major, minor
}
