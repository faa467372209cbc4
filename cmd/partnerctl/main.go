package main

import (
	"os"

	"github.com/partnerdesk/platform/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
