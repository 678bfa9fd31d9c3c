package util

import (
	"fmt"
)

var debug bool = false

func SetDebug(on bool) {
	debug = on
}

func Debug[T any](s T) {
	if debug {
		fmt.Println(s)
	}
}
