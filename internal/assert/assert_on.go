//go:build verify

package assert

import "fmt"

func soft(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("soft assert failed: "+format, args...))
	}
}
