package main

import "github.com/pinmine/pincli/cmd"

func main() {
	cmd.Execute()
}
