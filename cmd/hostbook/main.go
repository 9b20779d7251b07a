package main

import (
	"fmt"
	"os"

	"hostbook/internal/cli"
)

func main() {
	if err := cli.NewRoot(cli.FileServiceFactory).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", cli.Describe(err))
		os.Exit(1)
	}
}
