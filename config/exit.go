package config

import (
	"fmt"
	"os"
)

// Exitf reports a startup failure of senro on stderr and exits with status 1.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
