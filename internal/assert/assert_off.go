//go:build !verify

package assert

func soft(cond bool, format string, args ...any) {}
