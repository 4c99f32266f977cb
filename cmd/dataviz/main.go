package main

import "github.com/KaramelBytes/dataviz-cli/cmd"

func main() {
	cmd.Execute()
}
