// The main package for the pricewatch executable.
package main

import (
	"github.com/pricewatch-it/pricewatch/cmd"
)

func main() {
	cmd.Execute()
}
