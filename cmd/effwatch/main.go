package main

import "github.com/mbellini/effwatch/internal/cli"

func main() {
	cli.Execute()
}
