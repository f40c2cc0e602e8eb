package assembler

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

var (
	invalidFilenameChars = regexp.MustCompile(`[:<>"/\\|?*\n\r\t]`)
	spaces               = regexp.MustCompile(`\s+`)
)

// maxCollisionSuffix bounds the -N search in ReserveName.
const maxCollisionSuffix = 10000

// Sanitize makes a candidate name safe to use as a file name. Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(name string) string {
	name = invalidFilenameChars.ReplaceAllString(strings.TrimSpace(name), "_")
	return strings.TrimSpace(spaces.ReplaceAllString(name, " "))
}

// BaseName is the sanitized candidate name, or Person_<row> when nothing usable is left.
func BaseName(candidate string, row int) string {
	name := Sanitize(candidate)
	if name == "" || name == "." || name == ".." {
		return fmt.Sprintf("Person_%d", row)
	}
	return name
}

// ReserveName atomically creates an empty file dir/base+ext, or dir/base-1+ext,
// dir/base-2+ext ... when taken, and returns its path. Existing files are never reused.
func ReserveName(dir, base, ext string) (string, error) {
	paths, err := ReserveNames(dir, base, ext)
	if err != nil {
		return "", err
	}
	return paths[0], nil
}

// ReserveNames is ReserveName for several extensions sharing one suffix: the first -N
// where every base-N+ext is free wins, so a docx and its pdf always carry the same name.
func ReserveNames(dir, base string, exts ...string) ([]string, error) {
	for n := 0; n < maxCollisionSuffix; n++ {
		name := base
		if n > 0 {
			name = fmt.Sprintf("%s-%d", base, n)
		}
		paths, taken, err := reserveAll(dir, name, exts)
		if err != nil {
			return nil, err
		}
		if !taken {
			return paths, nil
		}
	}
	return nil, errors.Errorf("no free output name for %s", base)
}

// reserveAll creates dir/name+ext for every ext. When one is taken the files created so
// far are removed and taken is true.
func reserveAll(dir, name string, exts []string) (paths []string, taken bool, err error) {
	release := func() {
		for _, path := range paths {
			os.Remove(path)
		}
	}
	for _, ext := range exts {
		path := filepath.Join(dir, name+ext)
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err != nil {
			release()
			if os.IsExist(err) {
				return nil, true, nil
			}
			return nil, false, errors.Wrapf(err, "unable to reserve output name %s", name+ext)
		}
		if err = f.Close(); err != nil {
			paths = append(paths, path)
			release()
			return nil, false, errors.Wrapf(err, "unable to reserve output name %s", name+ext)
		}
		paths = append(paths, path)
	}
	return paths, false, nil
}
