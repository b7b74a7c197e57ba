// Package cliutil holds the small pieces of ambient infrastructure shared
// by every cmd/* entry point: a console logger that colorizes only when
// attached to a real terminal, and the --min-engine-version compatibility
// check. Grounded on the teacher's cmd/compile.printUsage-style plain CLI
// dispatch, generalized with the logging/versioning libraries named in
// SPEC_FULL.md's DOMAIN STACK.
package cliutil

import (
	"fmt"
	"os"

	"github.com/blang/semver/v4"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// EngineVersion is this module's own version, checked against a caller's
// --min-engine-version flag by CheckMinVersion.
var EngineVersion = semver.MustParse("0.1.0")

// SetupLogger installs a zerolog console writer as the global logger,
// colorized when stderr is a real terminal and plain otherwise (e.g. when
// output is piped into a log collector).
func SetupLogger() {
	out := os.Stderr
	writer := zerolog.ConsoleWriter{Out: out, NoColor: !isatty.IsTerminal(out.Fd())}
	if writer.NoColor {
		writer.Out = colorable.NewNonColorable(out)
	} else {
		writer.Out = colorable.NewColorable(out)
	}
	log.Logger = zerolog.New(writer).With().Timestamp().Logger()
}

// CheckMinVersion parses want as a single semver version and fails if
// EngineVersion is older. An empty want is always satisfied.
func CheckMinVersion(want string) error {
	if want == "" {
		return nil
	}
	v, err := semver.Parse(want)
	if err != nil {
		return fmt.Errorf("cliutil: invalid --min-engine-version %q: %w", want, err)
	}
	if EngineVersion.LT(v) {
		return fmt.Errorf("cliutil: this build is engine v%s, caller requires >= v%s", EngineVersion, v)
	}
	return nil
}
