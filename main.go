package main

import "github.com/twiced-technology-gmbh/fvp/cmd"

func main() {
	cmd.Execute()
}
