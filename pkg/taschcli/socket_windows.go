//go:build windows

package taschcli

import "github.com/tasched/tasched/common"

func pipePath() string {
	return common.PipePath()
}
