package cvar

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// IsSemverString is a String-CVar validator usable as Spec.StringValidator:
// it rejects any value that does not parse as a semantic version, so a
// "min-server-version"-style CVar can only ever hold a well-formed version
// string.
func IsSemverString(value string) error {
	if _, err := semver.NewVersion(value); err != nil {
		return fmt.Errorf("cvar: %q is not a valid semantic version: %w", value, err)
	}
	return nil
}
