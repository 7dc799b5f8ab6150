// Command taschd runs only the tasched daemon. It accepts the flags of
// "tasched daemon".
package main

import (
	"fmt"
	"os"

	"github.com/tasched/tasched/cmd"
)

var (
	version   string
	commit    string
	date      string
	buildType string = "unclassified"
)

func main() {
	args := append([]string{"tasched", "daemon"}, os.Args[1:]...)
	err := cmd.Execute(args, cmd.BuildArgs{
		Version:   version,
		Commit:    commit,
		Date:      date,
		BuildType: buildType,
	})
	if err != nil {
		fmt.Println("taschd:", err.Error())
		os.Exit(1)
	}
}
