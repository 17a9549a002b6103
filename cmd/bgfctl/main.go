package main

import "github.com/bgf/dashboard-api/internal/cli"

func main() {
	cli.Execute()
}
