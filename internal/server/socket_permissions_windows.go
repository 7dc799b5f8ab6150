//go:build windows

package server

// setSocketPermissions is a no-op on Windows; the named pipe is guarded by
// its security descriptor.
func setSocketPermissions(path string) {}
