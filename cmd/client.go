package cmd

import (
	"github.com/tasched/tasched/common"
	"github.com/tasched/tasched/pkg/taschcli"
	"github.com/urfave/cli"
)

var daemonURI string

var globalFlags = []cli.Flag{
	cli.StringFlag{
		Name:        "daemon-uri",
		Usage:       "daemon URI to connect to (e.g., tcp://localhost:4849, unix:///tmp/tasched.sock)",
		Destination: &daemonURI,
		EnvVar:      common.DaemonURIEnv,
	},
}

// newClient is replaced in tests.
var newClient = func() (*taschcli.Client, error) {
	if daemonURI != "" {
		return taschcli.NewClientWithURI(daemonURI)
	}
	return taschcli.NewClient()
}

// connect opens a client and warns when the daemon runs another version.
func connect() (*taschcli.Client, error) {
	client, err := newClient()
	if err != nil {
		return nil, err
	}
	client.CheckVersionMismatch(currentBuildArgs.Version)
	return client, nil
}
