package main

import "github.com/jsphweid/fretwise/cmd"

func main() {
	cmd.Execute()
}
