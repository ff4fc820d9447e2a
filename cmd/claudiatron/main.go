package main

import "claudiatron/internal/cli"

// Version info - set by ldflags during build
var Version = "dev"

func main() {
	cli.Version = Version
	cli.Execute()
}
