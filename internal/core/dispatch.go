package core

// Result is the outcome of one input line. Errors travel inside the
// Result so the session loop can report them and move on; they never
// propagate past the line that produced them.
type Result struct {
	Entries []Entry // directory listing, set by ls
	Output  string  // file content, set by cat
	Err     error
	Exit    bool // the line was an exit command
	NoOp    bool // blank or comment line, nothing dispatched
}

func (s *Session) dispatch(cmd *Command) Result {
	switch cmd.Name {
	case "ls":
		return s.ls(cmd.Args)
	case "cd":
		return s.cd(cmd.Args)
	case "cat":
		return s.cat(cmd.Args)
	case "exit":
		// Trailing arguments are ignored.
		s.terminated = true
		return Result{Exit: true}
	default:
		return Result{Err: &CommandError{Name: cmd.Name, Err: ErrUnknownCommand}}
	}
}

// ls lists the directory the path resolves to, or the single name when
// it resolves to a file. With no argument it lists the current
// directory.
func (s *Session) ls(args []string) Result {
	var path string
	if len(args) > 0 {
		path = args[0]
	}

	node, err := s.tree.Resolve(s.cwd, path)
	if err != nil {
		return Result{Err: &CommandError{Name: "ls", Err: err}}
	}

	if dir, ok := node.(*Dir); ok {
		return Result{Entries: dir.Entries()}
	}
	return Result{Entries: []Entry{{Name: node.Name(), IsDir: false}}}
}

// cd changes the current directory. The path must resolve to a
// directory; on any failure the current directory is left unchanged.
func (s *Session) cd(args []string) Result {
	if len(args) == 0 {
		return Result{Err: &CommandError{Name: "cd", Err: ErrMissingArgument}}
	}

	node, err := s.tree.Resolve(s.cwd, args[0])
	if err != nil {
		return Result{Err: &CommandError{Name: "cd", Err: err}}
	}

	dir, ok := node.(*Dir)
	if !ok {
		return Result{Err: &CommandError{
			Name: "cd",
			Err:  &PathError{Path: args[0], Err: ErrNotADirectory},
		}}
	}

	s.cwd = dir
	return Result{}
}

// cat produces the content of the file the path resolves to.
func (s *Session) cat(args []string) Result {
	if len(args) == 0 {
		return Result{Err: &CommandError{Name: "cat", Err: ErrMissingArgument}}
	}

	node, err := s.tree.Resolve(s.cwd, args[0])
	if err != nil {
		return Result{Err: &CommandError{Name: "cat", Err: err}}
	}

	file, ok := node.(*File)
	if !ok {
		return Result{Err: &CommandError{
			Name: "cat",
			Err:  &PathError{Path: args[0], Err: ErrIsADirectory},
		}}
	}

	return Result{Output: string(file.Content())}
}
