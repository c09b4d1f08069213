package common

import (
	"fmt"
	"strconv"
)

const (
	major = 0
	minor = 1
	patch = 0

	// Versions from which an upgrade of persisted ledgers is supported.
	prevMajor = 0
	prevMinor = 1
	prevPatch = 0

	Version = major*1_000_000 + minor*1_000 + patch

	PrevVersion = prevMajor*1_000_000 + prevMinor*1_000 + prevPatch
)

// VersionString returns Version in the dotted form.
func VersionString() string {
	return strconv.Itoa(major) + "." + strconv.Itoa(minor) + "." + strconv.Itoa(patch)
}

// CheckVersion checks that the version persisted data was written with can
// be read by the current one.
func CheckVersion(from int) error {
	if from < PrevVersion || from > Version {
		return fmt.Errorf("unsupported version %d: expected [%d, %d]", from, PrevVersion, Version)
	}
	return nil
}
