package main

import (
	"github.com/MeKo-Tech/taggo/cmd/taggo/cmd"
)

func main() {
	cmd.Execute()
}
