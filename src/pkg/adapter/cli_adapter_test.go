package adapter

import (
	"testing"

	"chapterforge/local-app/src/pkg/log"
	"chapterforge/local-app/src/pkg/model"
)

func newTestLogger(t *testing.T) *log.Logger {
	t.Helper()

	cfg := &model.Config{
		LogFolder:  t.TempDir(),
		CommandLog: "commands.log",
		ErrorLog:   "errors.log",
		InfoLog:    "info.log",
	}
	logger, err := log.NewLogger(cfg, log.LevelWarn)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	t.Cleanup(func() { _ = logger.Close() })
	return logger
}

func TestParseCommand(t *testing.T) {
	a := &CLIAdapter{logger: newTestLogger(t)}

	tests := []struct {
		name    string
		input   string
		want    model.Command
		wantErr bool
	}{
		{
			name:  "scope and operation",
			input: "chapter list",
			want:  model.Command{Scope: "chapter", Operation: "list", Args: []string{}},
		},
		{
			name:  "with arguments",
			input: "chapter add Introduction opening",
			want:  model.Command{Scope: "chapter", Operation: "add", Args: []string{"Introduction", "opening"}},
		},
		{
			name:  "scope only",
			input: "help",
			want:  model.Command{Scope: "help", Operation: "", Args: []string{}},
		},
		{
			name:  "case folded scope and operation",
			input: "CHAPTER Add Title",
			want:  model.Command{Scope: "chapter", Operation: "add", Args: []string{"Title"}},
		},
		{
			name:    "empty input",
			input:   "   ",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.parseCommand(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("parseCommand() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseCommand() error = %v", err)
			}
			if got.Scope != tt.want.Scope || got.Operation != tt.want.Operation {
				t.Errorf("parseCommand() = %+v, want %+v", got, tt.want)
			}
			if len(got.Args) != len(tt.want.Args) {
				t.Fatalf("parseCommand() args = %v, want %v", got.Args, tt.want.Args)
			}
			for i := range got.Args {
				if got.Args[i] != tt.want.Args[i] {
					t.Errorf("parseCommand() args[%d] = %q, want %q", i, got.Args[i], tt.want.Args[i])
				}
			}
		})
	}
}
