package main

import "github.com/KaramelBytes/afmtool-cli/cmd"

func main() {
	cmd.Execute()
}
