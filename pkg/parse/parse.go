// Package parse turns one line of shell input into the chain of pipelines
// executed by pkg/eval.
//
// The grammar is deliberately small, csh-like rather than POSIX:
//
//	Line     = Pipeline { (";" | "&") Pipeline } [ ";" | "&" ]
//	Pipeline = Command { ("|" | "|&") Command }
//	Command  = { word | "<" word | ">" word | ">>" word | ">&" word | ">>&" word }
//
// Quoting and field splitting follow go-shlex rules; there is no variable,
// tilde or glob expansion.
package parse

import (
	"fmt"
	"strings"

	shlex "github.com/anmitsu/go-shlex"
)

// RedirMode describes how a command's input or output stream is rebound.
type RedirMode int

const (
	RedirNone RedirMode = iota
	RedirIn             // < file
	RedirOut            // > file, truncate
	RedirApp            // >> file, append
	RedirOutErr         // >& file, stdout and stderr, truncate
	RedirAppErr         // >>& file, stdout and stderr, append
	RedirPipe           // | next command
	RedirPipeErr        // |& next command, stdout and stderr
)

// Command is one stage of a pipeline. Args is never empty for a Command
// returned by Parse.
type Command struct {
	Args    []string
	In      RedirMode // RedirNone or RedirIn
	InFile  string
	Out     RedirMode
	OutFile string
	Next    *Command // next stage of the same pipeline
}

// Pipeline is a chain of commands connected by pipes, plus its position in
// the line. Every non-last command of a pipeline has Out set to RedirPipe or
// RedirPipeErr; this invariant is established here and relied on, not
// re-checked, by the executor.
type Pipeline struct {
	Head  *Command
	Async bool // launched with &; the shell does not wait for it
	Next  *Pipeline
}

// Parse parses one line of input. It returns the first pipeline of the line,
// or nil for a blank line. On a syntax error the returned error is an [Error]
// carrying byte positions into line.
func Parse(line string) (*Pipeline, error) {
	p := &parser{}
	toks := p.lex(line)
	var head *Pipeline
	if len(p.err.Errors) == 0 {
		p.toks = toks
		head = p.line()
	}
	if len(p.err.Errors) > 0 {
		return nil, p.err
	}
	return head, nil
}

type tokenKind int

const (
	wordToken tokenKind = iota
	opToken
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

type parser struct {
	toks []token
	i    int
	err  Error
}

func (p *parser) errorf(pos int, format string, args ...any) {
	p.err.Errors = append(p.err.Errors, ErrorEntry{pos, fmt.Sprintf(format, args...)})
}

// Line = Pipeline { (";" | "&") Pipeline } [ ";" | "&" ]
func (p *parser) line() *Pipeline {
	var head, last *Pipeline
	for p.i < len(p.toks) && len(p.err.Errors) == 0 {
		pl := p.pipeline()
		if pl == nil {
			break
		}
		if op, ok := p.peekOp(); ok && op == "&" {
			pl.Async = true
			p.i++
		} else if ok && op == ";" {
			p.i++
		} else if p.i < len(p.toks) {
			// Only | and |& are consumed by pipeline; anything else left
			// over here is a stray operator.
			p.errorf(p.toks[p.i].pos, "unexpected %q", p.toks[p.i].text)
			break
		}
		if head == nil {
			head = pl
		} else {
			last.Next = pl
		}
		last = pl
	}
	return head
}

// Pipeline = Command { ("|" | "|&") Command }
func (p *parser) pipeline() *Pipeline {
	c := p.command()
	if c == nil {
		if p.i < len(p.toks) {
			p.errorf(p.toks[p.i].pos, "invalid null command")
		}
		return nil
	}
	pl := &Pipeline{Head: c}
	for {
		op, ok := p.peekOp()
		if !ok || (op != "|" && op != "|&") {
			break
		}
		pos := p.toks[p.i].pos
		p.i++
		if c.Out != RedirNone {
			p.errorf(pos, "ambiguous output redirect")
			return pl
		}
		if op == "|" {
			c.Out = RedirPipe
		} else {
			c.Out = RedirPipeErr
		}
		next := p.command()
		if next == nil {
			p.errorf(pos, "invalid null command")
			return pl
		}
		c.Next = next
		c = next
	}
	return pl
}

// Command = { word | redirection }, stopping at |, |&, ; or &.
func (p *parser) command() *Command {
	var c *Command
	ensure := func() *Command {
		if c == nil {
			c = &Command{}
		}
		return c
	}
	for p.i < len(p.toks) && len(p.err.Errors) == 0 {
		t := p.toks[p.i]
		if t.kind == wordToken {
			ensure()
			c.Args = append(c.Args, t.text)
			p.i++
			continue
		}
		switch t.text {
		case "<":
			file, ok := p.redirFile(t)
			if !ok {
				return c
			}
			if ensure().In != RedirNone {
				p.errorf(t.pos, "ambiguous input redirect")
				return c
			}
			c.In, c.InFile = RedirIn, file
		case ">", ">>", ">&", ">>&":
			file, ok := p.redirFile(t)
			if !ok {
				return c
			}
			if ensure().Out != RedirNone {
				p.errorf(t.pos, "ambiguous output redirect")
				return c
			}
			c.Out, c.OutFile = outMode(t.text), file
		default:
			// |, |&, ; and & terminate the command.
			if c != nil && len(c.Args) == 0 {
				p.errorf(t.pos, "missing command name")
			}
			return c
		}
	}
	if c != nil && len(c.Args) == 0 {
		p.errorf(p.toks[p.i-1].pos, "missing command name")
		return nil
	}
	return c
}

// redirFile consumes the word following a redirection operator.
func (p *parser) redirFile(op token) (string, bool) {
	p.i++
	if p.i >= len(p.toks) || p.toks[p.i].kind != wordToken {
		p.errorf(op.pos, "missing name for redirect")
		return "", false
	}
	file := p.toks[p.i].text
	p.i++
	return file, true
}

func (p *parser) peekOp() (string, bool) {
	if p.i < len(p.toks) && p.toks[p.i].kind == opToken {
		return p.toks[p.i].text, true
	}
	return "", false
}

func outMode(op string) RedirMode {
	switch op {
	case ">":
		return RedirOut
	case ">>":
		return RedirApp
	case ">&":
		return RedirOutErr
	default: // ">>&"
		return RedirAppErr
	}
}

const metaChars = "|;&<>"

// lex splits line into word and operator tokens. Words keep their quotes;
// they are stripped by shlex when the token is finalized, so that quoting
// rules stay in one place.
func (p *parser) lex(line string) []token {
	var toks []token
	var word strings.Builder
	wordPos := -1
	flush := func() {
		if wordPos == -1 {
			return
		}
		fields, err := shlex.Split(word.String(), true)
		if err != nil {
			p.errorf(wordPos, "unmatched quote")
		} else {
			for _, f := range fields {
				toks = append(toks, token{wordToken, f, wordPos})
			}
		}
		word.Reset()
		wordPos = -1
	}

	var inSingle, inDouble, escaped bool
	for i := 0; i < len(line); i++ {
		ch := line[i]
		quoted := inSingle || inDouble || escaped
		if escaped {
			escaped = false
		} else {
			switch {
			case ch == '\\' && !inSingle:
				escaped = true
			case ch == '\'' && !inDouble:
				inSingle = !inSingle
			case ch == '"' && !inSingle:
				inDouble = !inDouble
			}
		}
		if !quoted {
			if ch == ' ' || ch == '\t' {
				flush()
				continue
			}
			if strings.IndexByte(metaChars, ch) >= 0 {
				flush()
				op := operatorAt(line, i)
				toks = append(toks, token{opToken, op, i})
				i += len(op) - 1
				continue
			}
		}
		if wordPos == -1 {
			wordPos = i
		}
		word.WriteByte(ch)
	}
	if inSingle || inDouble {
		p.errorf(len(line), "unmatched quote")
		return nil
	}
	flush()
	return toks
}

// operatorAt returns the longest operator starting at line[i].
func operatorAt(line string, i int) string {
	for _, op := range []string{">>&", ">>", ">&", "|&", ">", "<", "|", ";", "&"} {
		if strings.HasPrefix(line[i:], op) {
			return op
		}
	}
	panic("unreachable")
}
