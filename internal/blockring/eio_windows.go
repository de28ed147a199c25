//go:build windows

package blockring

func isEIO(err error) bool { return false }
