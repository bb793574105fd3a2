// Package upgrade implements the version-compatibility guard shared by
// components whose resource layout changed incompatibly between majors. The
// guard compares the version recorded at last deployment against the
// component's current major and refuses to cross a breaking boundary unless
// the caller opts in explicitly.
package upgrade

import (
	"fmt"
	"strings"

	"github.com/coreos/go-semver/semver"
	"github.com/pkg/errors"
)

type Guard struct {
	// Component is the user-facing component name, used in error messages.
	Component string
	// Current is the component's current version.
	Current *semver.Version
	// Recorded is the version string from the deployment state, empty when
	// the component has never been deployed (or predates version recording).
	Recorded string
	// ForceMajor is the user's explicit acknowledgement of a breaking
	// upgrade. The guard only proceeds when it equals Current's major.
	ForceMajor int64
	// MigrationDoc points the user at the upgrade instructions.
	MigrationDoc string
}

// Check validates the transition. The allowed transitions are:
//
//	unrecorded            -> proceed (fresh deployment)
//	same major            -> proceed
//	older major + forced  -> proceed (force must name the current major)
//	older major, unforced -> fail with migration instructions
//	newer major           -> fail (state written by a newer library)
func (g Guard) Check() error {
	if g.Current == nil {
		return errors.Errorf("%s: current version is not set", g.Component)
	}
	if g.Recorded == "" {
		return nil
	}
	recorded, err := semver.NewVersion(strings.TrimPrefix(g.Recorded, "v"))
	if err != nil {
		return errors.Wrapf(err, "%s: recorded deployment version %q is not parseable", g.Component, g.Recorded)
	}

	switch {
	case recorded.Major == g.Current.Major:
		return nil

	case recorded.Major > g.Current.Major:
		return errors.Errorf(
			"%s: deployment state was written by v%d but this library is v%d; upgrade the library instead of downgrading the deployment",
			g.Component, recorded.Major, g.Current.Major)

	case g.ForceMajor == g.Current.Major:
		return nil

	default:
		msg := fmt.Sprintf(
			"%s: upgrading from v%d to v%d is a breaking change; set forceUpgrade to %d after following the migration steps",
			g.Component, recorded.Major, g.Current.Major, g.Current.Major)
		if g.MigrationDoc != "" {
			msg += " (see " + g.MigrationDoc + ")"
		}
		return errors.New(msg)
	}
}
