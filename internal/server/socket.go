package server

import "github.com/tasched/tasched/common"

func socketPath() string {
	return common.SocketPath()
}
