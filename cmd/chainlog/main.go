package main

import (
	"github.com/chainlog-project/chainlog/internal/cli"
)

func main() {
	cli.Execute()
}
