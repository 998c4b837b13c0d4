package spec_test

import (
	"embed"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"
)

type spec struct {
	suite string
	name  string
	code  string

	wantStatus  int
	checkStdout bool
	wantStdout  string
	checkStderr bool
	wantStderr  string
}

func parseSpecFilesInFS(fsys embed.FS, dir string) []spec {
	var specs []spec
	entries, _ := fsys.ReadDir(dir)
	for _, entry := range entries {
		filename := path.Join(dir, entry.Name())
		content, _ := fsys.ReadFile(filename)
		specs = append(specs, parseSpecFile(filename, string(content))...)
	}
	return specs
}

const (
	namePrefix     = "#### "
	metadataPrefix = "## "
)

// parseSpecFile parses one spec file. The format:
//
//	#### name of the case
//	shell input, one or more lines
//	## status: 2
//	## STDOUT:
//	expected stdout
//	## END
//	## STDERR:
//	expected stderr
//	## END
//
// All metadata lines are optional; status defaults to 0, and stdout or stderr
// is only checked when the corresponding block is present.
func parseSpecFile(filename, content string) []spec {
	var specs []spec
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	i := 0

	warn := func(msg string) {
		fmt.Fprintf(os.Stderr, "%v:%v: %v: %v\n", filename, i+1, msg, lines[i])
	}
	readMultiLine := func() string {
		var b strings.Builder
		for i++; i < len(lines) && lines[i] != "## END"; i++ {
			b.WriteString(lines[i])
			b.WriteByte('\n')
		}
		return b.String()
	}

	// Skip empty and comment lines before the first case.
	for ; i < len(lines) && !strings.HasPrefix(lines[i], namePrefix); i++ {
		if lines[i] != "" && !strings.HasPrefix(lines[i], "#") {
			warn("non-empty, non-comment line before first spec")
		}
	}

	for i < len(lines) {
		// lines[i] starts with namePrefix here.
		sp := spec{suite: filename, name: lines[i][len(namePrefix):]}
		var code strings.Builder
		for i++; i < len(lines) && !strings.HasPrefix(lines[i], namePrefix) &&
			!strings.HasPrefix(lines[i], metadataPrefix); i++ {
			code.WriteString(lines[i])
			code.WriteByte('\n')
		}
		sp.code = code.String()
		for ; i < len(lines) && strings.HasPrefix(lines[i], metadataPrefix); i++ {
			metadata := lines[i][len(metadataPrefix):]
			key, value, _ := strings.Cut(metadata, ":")
			value = strings.TrimLeft(value, " ")
			switch key {
			case "status":
				n, err := strconv.Atoi(value)
				if err != nil {
					warn("can't parse status as number")
				} else {
					sp.wantStatus = n
				}
			case "STDOUT":
				sp.checkStdout = true
				sp.wantStdout = readMultiLine()
			case "STDERR":
				sp.checkStderr = true
				sp.wantStderr = readMultiLine()
			default:
				warn("unknown key " + key)
			}
		}
		// Discard blank separator lines before the next case.
		for ; i < len(lines) && lines[i] == ""; i++ {
		}
		specs = append(specs, sp)
	}
	return specs
}
