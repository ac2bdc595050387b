package main

import (
	"github.com/shellpm/spm/src/cmd"
)

func main() {
	cmd.Execute()
}
