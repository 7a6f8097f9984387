package main

import (
	"github.com/tsiemens/lotbook/cmd"
)

func main() {
	cmd.Execute()
}
