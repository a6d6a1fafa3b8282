package main

import "github.com/mj1618/android-cli/cmd"

func main() {
	cmd.Execute()
}
