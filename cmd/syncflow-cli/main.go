package main

import (
	"github.com/syncflow/syncflow/internal/cli"
)

func main() {
	cli.Execute()
}
