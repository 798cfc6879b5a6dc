package main

import "github.com/KaramelBytes/adbudget-cli/cmd"

func main() {
	cmd.Execute()
}
