package main

import (
	"os"
	sys "os"
)

func exit(code int) {
	os.Exit(code)
}

func main() {
	defer exit(0)
	os.Exit(1)  // want "avoid direct os.Exit call in main function of main package"
	sys.Exit(2) // want "avoid direct os.Exit call in main function of main package"
}
