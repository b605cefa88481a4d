package main

import "github.com/selimozcann/PhishHunter/cmd"

func main() {
	cmd.Execute()
}
