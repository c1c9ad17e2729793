package main

import (
	"fmt"
	"os"
)

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  cinder lower <file.cnd.json ...>")
	fmt.Fprintln(os.Stderr, "  cinder lower <directory>")
	fmt.Fprintln(os.Stderr, "  cinder check <file.cnd.json ...>")
	fmt.Fprintln(os.Stderr, "  cinder check <directory>")
	fmt.Fprintln(os.Stderr, "  cinder repl")
	fmt.Fprintln(os.Stderr, "  cinder deps install")
	fmt.Fprintln(os.Stderr, "  cinder deps update [dependency ...]")
}
