package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"os/user"
	"strings"

	"github.com/fatih/color"

	"vsh/internal/core"
	"vsh/internal/vfs"
)

var (
	promptPath = color.New(color.FgCyan)
	dirName    = color.New(color.FgBlue, color.Bold)
	errText    = color.New(color.FgRed)
)

func main() {
	vfsPath := flag.String("vfs-path", "", "directory or ZIP image to expose as the virtual filesystem")
	scriptPath := flag.String("startup-script", "", "script to run before the interactive prompt")
	flag.Parse()

	if *vfsPath == "" {
		fmt.Fprintln(os.Stderr, "vsh: -vfs-path is required")
		flag.Usage()
		os.Exit(2)
	}

	fmt.Printf("VFS path: %s\n", *vfsPath)
	if *scriptPath != "" {
		fmt.Printf("Startup script: %s\n", *scriptPath)
	}

	tree, err := vfs.Load(*vfsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vsh: failed to load vfs: %v\n", err)
		os.Exit(1)
	}

	sess := core.NewSession(tree)

	if *scriptPath != "" {
		status, err := runScript(sess, *scriptPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "vsh: %v\n", err)
			os.Exit(1)
		}
		if status == core.StatusExit {
			fmt.Println("Exiting shell emulator. Goodbye!")
			return
		}
	}

	runInteractive(sess)
}

// runScript executes a startup script line by line, echoing each line
// behind the prompt it would have been typed at. An exit command stops
// all further processing, including the interactive mode that would
// otherwise follow.
func runScript(sess *core.Session, path string) (core.Status, error) {
	f, err := os.Open(path)
	if err != nil {
		return core.StatusEndOfInput, fmt.Errorf("cannot open startup script: %w", err)
	}
	defer f.Close()

	prevPath := sess.Dir().Path()
	status, err := sess.Run(f, func(line string, res core.Result) {
		fmt.Printf("%s%s\n", prompt(prevPath), line)
		printResult(res)
		prevPath = sess.Dir().Path()
	})
	if err != nil {
		return status, fmt.Errorf("error reading startup script: %w", err)
	}
	return status, nil
}

func runInteractive(sess *core.Session) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(prompt(sess.Dir().Path()))
		if !scanner.Scan() {
			fmt.Println()
			fmt.Println("Exiting shell emulator (EOF). Goodbye!")
			return
		}

		res := sess.Exec(scanner.Text())
		printResult(res)
		if res.Exit {
			fmt.Println("Exiting shell emulator. Goodbye!")
			return
		}
	}
}

func prompt(path string) string {
	return fmt.Sprintf("%s@%s:%s$ ", username(), hostname(), promptPath.Sprint(path))
}

func printResult(res core.Result) {
	if res.Err != nil {
		errText.Fprintf(os.Stderr, "vsh: %v\n", res.Err)
		return
	}
	if res.NoOp {
		return
	}

	for _, entry := range res.Entries {
		if entry.IsDir {
			fmt.Println(dirName.Sprint(entry.Name) + "/")
		} else {
			fmt.Println(entry.Name)
		}
	}

	if res.Output != "" {
		io.WriteString(os.Stdout, res.Output)
		if !strings.HasSuffix(res.Output, "\n") {
			fmt.Println()
		}
	}
}

func username() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "user"
}

func hostname() string {
	if h, err := os.Hostname(); err == nil && h != "" {
		return h
	}
	return "localhost"
}
