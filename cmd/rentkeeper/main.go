package main

import (
	"fmt"
	"os"

	"github.com/dmitrijs2005/rentkeeper/internal/buildinfo"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
