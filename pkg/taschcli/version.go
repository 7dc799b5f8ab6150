package taschcli

import (
	"fmt"
	"io"
	"os"
)

// VersionCheckEnv disables the version mismatch warning when set.
const VersionCheckEnv = "TASCHED_SUPPRESS_VERSION_CHECK"

// CheckVersionMismatch warns on stderr when the daemon runs a different
// version than expectedVersion. It never fails the caller.
func (c *Client) CheckVersionMismatch(expectedVersion string) {
	c.checkVersion(os.Stderr, expectedVersion)
}

func (c *Client) checkVersion(w io.Writer, expectedVersion string) {
	if expectedVersion == "" || os.Getenv(VersionCheckEnv) != "" {
		return
	}
	daemonVersion, err := c.GetDaemonVersion()
	if err != nil {
		fmt.Fprintf(w, "Warning: could not verify daemon version: %v\n", err)
		return
	}
	if daemonVersion.Version != expectedVersion {
		fmt.Fprintf(w, "Warning: CLI version (%s) differs from daemon version (%s)\n",
			expectedVersion, daemonVersion.Version)
		fmt.Fprintln(w, "Run 'tasched stop-daemon' to restart the daemon with the new version.")
	}
}
