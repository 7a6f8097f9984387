package util

import (
	"fmt"
	"os"
	"runtime/debug"
)

// AssertsPanic makes failed asserts panic with their message instead of
// exiting. Tests set it to catch broken invariants.
var AssertsPanic bool = false

// Asserts guard internal invariants only. Bad input is reported as an error.
func assertFailed(msg string) {
	if AssertsPanic {
		panic(msg)
	}
	fmt.Fprintf(os.Stderr, "Internal error: %s\n%s", msg, debug.Stack())
	os.Exit(2)
}

func Assert(cond bool, o ...interface{}) {
	if !cond {
		assertFailed(fmt.Sprint(o...))
	}
}

func Assertf(cond bool, fmtstr string, o ...interface{}) {
	if !cond {
		assertFailed(fmt.Sprintf(fmtstr, o...))
	}
}
