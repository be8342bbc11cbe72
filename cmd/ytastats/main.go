package main

import "ytabot/internal/cli"

func main() {
	cli.Execute()
}
