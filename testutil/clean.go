package testutil

import (
	"os"
	"path/filepath"
)

// CleanDir removes everything in dirname except for the entries named by keeps; dirname
// is created if it does not exist.
func CleanDir(dirname string, keeps ...string) error {
	ents, err := os.ReadDir(dirname)
	if os.IsNotExist(err) {
		return os.MkdirAll(dirname, 0755)
	} else if err != nil {
		return err
	}

	for _, ent := range ents {
		if contains(keeps, ent.Name()) {
			continue
		}
		err = os.RemoveAll(filepath.Join(dirname, ent.Name()))
		if err != nil {
			return err
		}
	}
	return nil
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
