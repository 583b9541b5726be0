//go:build windows

package tty

func watchResize(func()) func() {
	return func() {}
}
