package main

import "github.com/kubeship/kubeship/cmd"

func main() {
	cmd.Execute()
}
