package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newApp().rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
