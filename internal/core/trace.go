package core

import (
	"errors"
	"fmt"
	"strings"
)

// Trace renders the chain of wrapped errors, outermost first, one per line.
// Joined errors are expanded as nested branches.
func Trace(err error) string {
	if err == nil {
		return ""
	}
	var b strings.Builder
	trace(&b, err, 0)
	return strings.TrimRight(b.String(), "\n")
}

func trace(b *strings.Builder, err error, depth int) {
	for err != nil {
		fmt.Fprintf(b, "%s%T: %s\n", strings.Repeat("  ", depth), err, err.Error())
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			for _, e := range joined.Unwrap() {
				trace(b, e, depth+1)
			}
			return
		}
		err = errors.Unwrap(err)
		depth++
	}
}
