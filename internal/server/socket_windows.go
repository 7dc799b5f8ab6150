//go:build windows

package server

import (
	"github.com/tasched/tasched/common"
)

// pipePath returns the Windows named pipe path.
func pipePath() string {
	return common.PipePath()
}

func forceTCP() bool {
	return common.ForceTCP()
}
