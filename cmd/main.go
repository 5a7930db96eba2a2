package main

import "github.com/tola-lang/tola/pkg/cmd"

func main() {
	cmd.Execute()
}
