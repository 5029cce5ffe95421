package main

import "github.com/robmazan/CodeAnalyzer/cmd"

func main() {
	cmd.Run()
}
