package eval

import (
	"os"
	"path/filepath"
	"strings"
)

// Like os/exec.LookPath, but
//
//   - Distinguishes "no such command" from "found but not executable" by
//     returning [StatusCommandNotFound] or [StatusCommandNotExecutable] in the
//     second argument.
//   - Uses the PATH value given in the argument.
//
// A name containing a slash is used as given, absolute or relative to the
// working directory, and PATH is not consulted.
func lookPath(file, paths string) (string, int) {
	if strings.Contains(file, "/") {
		return file, checkExecutable(file)
	}
	retStatus := StatusCommandNotFound
	for _, dir := range searchDirs(paths) {
		fullpath := filepath.Join(dir, file)
		status := checkExecutable(fullpath)
		if status == 0 {
			return fullpath, 0
		} else if status == StatusCommandNotExecutable {
			retStatus = StatusCommandNotExecutable
		}
	}
	return "", retStatus
}

// lookPathAll returns every executable match of file across paths, in PATH
// order. Used by the where builtin.
func lookPathAll(file, paths string) []string {
	var matches []string
	for _, dir := range searchDirs(paths) {
		fullpath := filepath.Join(dir, file)
		if checkExecutable(fullpath) == 0 {
			matches = append(matches, fullpath)
		}
	}
	return matches
}

// searchDirs splits a PATH value into directories. Unix shell semantics: an
// empty element means ".", and so does an entirely empty value, which
// filepath.SplitList turns into no elements at all.
func searchDirs(paths string) []string {
	dirs := filepath.SplitList(paths)
	if len(dirs) == 0 {
		return []string{"."}
	}
	for i, dir := range dirs {
		if dir == "" {
			dirs[i] = "."
		}
	}
	return dirs
}

func checkExecutable(file string) int {
	info, err := os.Stat(file)
	if err == nil && !info.IsDir() {
		if info.Mode()&0o111 != 0 {
			return 0
		}
		return StatusCommandNotExecutable
	}
	return StatusCommandNotFound
}
