package test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
)

// TmpFile returns the path of an SQLite database file for the test.
//
// The file lives in the test's temporary directory and is removed with it.
// Its name starts with the test name so that files of subtests can be told apart.
func TmpFile(t *testing.T) string {
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	return filepath.Join(t.TempDir(), name+"-"+uuid.NewString()+".db")
}
