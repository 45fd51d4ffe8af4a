package main

import "github.com/wardenbot/warden/cmd"

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	cmd.Execute(version, commit)
}
