package main

import "github.com/examgate/examgate/cmd"

func main() {
	cmd.Execute()
}
