package core

import (
	"errors"
	"testing"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantName    string
		wantArgs    []string
		wantNoOp    bool
		expectedErr error
	}{
		{
			name:     "command without arguments",
			input:    "ls",
			wantName: "ls",
		},
		{
			name:     "command with arguments",
			input:    "cd dir_1",
			wantName: "cd",
			wantArgs: []string{"dir_1"},
		},
		{
			name:     "multiple arguments keep order",
			input:    "cat a.txt b.txt c.txt",
			wantName: "cat",
			wantArgs: []string{"a.txt", "b.txt", "c.txt"},
		},
		{
			name:     "double quoted argument with spaces",
			input:    `cat "file with spaces.txt"`,
			wantName: "cat",
			wantArgs: []string{"file with spaces.txt"},
		},
		{
			name:     "quoted segment joins adjacent text",
			input:    `cat dir/"sub dir"/file`,
			wantName: "cat",
			wantArgs: []string{"dir/sub dir/file"},
		},
		{
			name:     "extra whitespace between tokens",
			input:    "ls \t   dir_1   ",
			wantName: "ls",
			wantArgs: []string{"dir_1"},
		},
		{
			name:     "blank line is a no-op",
			input:    "",
			wantNoOp: true,
		},
		{
			name:     "whitespace-only line is a no-op",
			input:    "   \t  ",
			wantNoOp: true,
		},
		{
			name:     "comment line is a no-op",
			input:    "# list the root",
			wantNoOp: true,
		},
		{
			name:     "indented comment is a no-op",
			input:    "   # still a comment",
			wantNoOp: true,
		},
		{
			name:     "empty quotes produce no tokens",
			input:    `""`,
			wantNoOp: true,
		},
		{
			name:        "unterminated quote",
			input:       `ls "file with unclosed quote`,
			expectedErr: ErrUnterminatedQuote,
		},
		{
			name:        "lone opening quote",
			input:       `cat "`,
			expectedErr: ErrUnterminatedQuote,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := ParseLine(tt.input)

			if tt.expectedErr != nil {
				if !errors.Is(err, tt.expectedErr) {
					t.Fatalf("expected error %v, got %v", tt.expectedErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.wantNoOp {
				if cmd != nil {
					t.Fatalf("expected no command, got %+v", cmd)
				}
				return
			}
			if cmd == nil {
				t.Fatal("expected a command, got nil")
			}

			if cmd.Name != tt.wantName {
				t.Errorf("expected name %q, got %q", tt.wantName, cmd.Name)
			}
			if len(cmd.Args) != len(tt.wantArgs) {
				t.Fatalf("expected args %v, got %v", tt.wantArgs, cmd.Args)
			}
			for i := range tt.wantArgs {
				if cmd.Args[i] != tt.wantArgs[i] {
					t.Errorf("arg %d: expected %q, got %q", i, tt.wantArgs[i], cmd.Args[i])
				}
			}
		})
	}
}
