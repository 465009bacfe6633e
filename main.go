package main

import "github.com/serenease/notify/cmd"

func main() {
	cmd.Execute()
}
