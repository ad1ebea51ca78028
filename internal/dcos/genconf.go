package dcos

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrMissingFile matches every *MissingFileError.
var ErrMissingFile = errors.New("required genconf file is missing")

// MissingFileError names a file the operator must place in genconf.
type MissingFileError struct {
	Path string
	Hint string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("%s is missing (%s)", e.Path, e.Hint)
}

func (e *MissingFileError) Is(target error) bool {
	return target == ErrMissingFile
}

var required = []struct {
	name string
	hint string
}{
	{IPDetectFile, "details: https://dcos.io/docs/1.7/administration/installing/custom/advanced/"},
	{SSHKeyFile, "private key to ssh into nodes"},
}

// CheckPreconditions verifies that dir holds the ip-detect script and the
// ssh private key. It reports the first missing file.
func CheckPreconditions(dir string) error {
	for _, f := range required {
		path := filepath.Join(dir, f.name)
		info, err := os.Stat(path)
		if errors.Is(err, os.ErrNotExist) || (err == nil && info.IsDir()) {
			return &MissingFileError{Path: path, Hint: f.hint}
		}
		if err != nil {
			return fmt.Errorf("failed to check %s: %w", path, err)
		}
	}
	return nil
}

// ReadSSHKey returns the private key used to reach the cluster's hosts.
func ReadSSHKey(dir string) ([]byte, error) {
	path := filepath.Join(dir, SSHKeyFile)
	key, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &MissingFileError{Path: path, Hint: "private key to ssh into nodes"}
		}
		return nil, fmt.Errorf("failed to read ssh key: %w", err)
	}
	return key, nil
}
