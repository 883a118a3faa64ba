//go:build unix

package filehandle

import "golang.org/x/sys/unix"

func checkAccess(path string) error {
	return unix.Access(path, unix.R_OK|unix.W_OK)
}

func checkDirAccess(dir string) error {
	return unix.Access(dir, unix.W_OK|unix.X_OK)
}
