package main

import (
	"errors"
	"fmt"
	"testing"

	"moodlog/internal/mood"
)

func TestInformational(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
		wantOK  bool
	}{
		{name: "nil", err: nil},
		{name: "nothing to export", err: mood.ErrNothingToExport, wantMsg: "Nothing to export.", wantOK: true},
		{name: "wrapped nothing to undo", err: fmt.Errorf("undo: %w", mood.ErrNothingToUndo), wantMsg: "Nothing to undo.", wantOK: true},
		{name: "storage failure", err: &mood.StorageError{Op: "x", Err: errors.New("disk")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, ok := informational(tt.err)
			if ok != tt.wantOK || msg != tt.wantMsg {
				t.Errorf("informational() = %q, %v; want %q, %v", msg, ok, tt.wantMsg, tt.wantOK)
			}
		})
	}
}

func TestCommandTree(t *testing.T) {
	want := [][]string{
		{"config", "init"}, {"config", "list"}, {"config", "keys"},
		{"add"}, {"list"}, {"export"}, {"undo"}, {"import"}, {"clear"},
		{"schema", "show"}, {"schema", "keys"}, {"schema", "reset"},
		{"schema", "export"}, {"schema", "import"}, {"schema", "label"},
		{"track", "show"}, {"track", "set"},
		{"history"}, {"backup"},
	}
	for _, path := range want {
		cmd, rest, err := rootCmd.Find(path)
		if err != nil || len(rest) != 0 || cmd.Name() != path[len(path)-1] {
			t.Errorf("command %v not registered (got %v, rest %v, err %v)", path, cmd.Name(), rest, err)
		}
	}
}
