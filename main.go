package main

import "github.com/deploymenttheory/go-minifs/cmd"

func main() {
	cmd.Execute()
}
