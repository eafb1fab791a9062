package main

import "github.com/agrisure/portal/cmd"

func main() {
	cmd.Execute()
}
