package core

import (
	"bufio"
	"io"
)

// Status reports how a session loop ended.
type Status int

const (
	// StatusEndOfInput means the input source was exhausted.
	StatusEndOfInput Status = iota
	// StatusExit means an exit command ended the session.
	StatusExit
)

func (st Status) String() string {
	if st == StatusExit {
		return "exit"
	}
	return "end of input"
}

// Session is one run of the command loop over a shared read-only tree.
// The current directory starts at the tree root and is mutated only by
// a successful cd. Sessions are not safe for concurrent use; callers
// running one session from multiple goroutines must serialize access.
type Session struct {
	tree       *Tree
	cwd        *Dir
	terminated bool
}

// NewSession starts a session positioned at the tree's root.
func NewSession(tree *Tree) *Session {
	return &Session{tree: tree, cwd: tree.Root()}
}

// Dir returns the current working directory.
func (s *Session) Dir() *Dir {
	return s.cwd
}

// Terminated reports whether an exit command has ended the session.
func (s *Session) Terminated() bool {
	return s.terminated
}

// Exec tokenizes and dispatches one raw input line. Every failure is
// carried inside the Result; an erroneous line never changes the
// current directory. Lines fed to a terminated session are no-ops.
func (s *Session) Exec(line string) Result {
	if s.terminated {
		return Result{NoOp: true}
	}

	cmd, err := ParseLine(line)
	if err != nil {
		return Result{Err: err}
	}
	if cmd == nil {
		return Result{NoOp: true}
	}
	return s.dispatch(cmd)
}

// Run feeds input to the session line by line until an exit command or
// the input is exhausted. onLine, when non-nil, observes every line
// with its Result in input order, no-ops included. The returned error
// is non-nil only when the input source itself fails; per-line errors
// are delivered through onLine and never end the loop.
func (s *Session) Run(input io.Reader, onLine func(line string, res Result)) (Status, error) {
	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		line := scanner.Text()
		res := s.Exec(line)
		if onLine != nil {
			onLine(line, res)
		}
		if res.Exit {
			return StatusExit, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return StatusEndOfInput, err
	}
	return StatusEndOfInput, nil
}
