package main

import (
	"os"

	"github.com/userhub/userhub/cmd/jobsctl/cli"
)

func main() {
	os.Exit(cli.Execute())
}
