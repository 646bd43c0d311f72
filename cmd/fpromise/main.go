package main

import (
	"github.com/sage/fpromise/cmd"
)

func main() {
	cmd.Execute()
}
