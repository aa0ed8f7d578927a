package main

import (
	"os"

	"github.com/go-delve/leb128/cmd/leb128/cmds"
	"github.com/go-delve/leb128/pkg/logflags"
)

func main() {
	err := cmds.New().Execute()
	logflags.Close()
	if err != nil {
		os.Exit(1)
	}
}
