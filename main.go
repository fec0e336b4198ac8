package main

import "dat-manager/cmd"

func main() {
	cmd.Execute()
}
