//go:build !unix

package filehandle

import "os"

func checkAccess(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	return f.Close()
}

func checkDirAccess(dir string) error {
	f, err := os.CreateTemp(dir, ".access-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
