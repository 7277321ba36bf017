package main

import (
	"os"

	"github.com/gnolang/errfix/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
