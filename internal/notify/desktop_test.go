package notify

import (
	"context"
	"runtime"
	"strings"
	"testing"
)

func TestSanitizeStripsShellMetacharacters(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"plain question?", "plain question?"},
		{`rm -rf $(HOME) "quoted" 'single'`, "rm -rf (HOME) quoted single"},
		{"back`tick` && pipe | redirect > out", "backtick  pipe  redirect  out"},
		{"newline\nok, tab\tok", "newline\nok, tab\tok"},
	}
	for _, tc := range cases {
		if got := sanitize(tc.in); got != tc.want {
			t.Fatalf("sanitize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDesktopNotifyInvokesPlatformCommand(t *testing.T) {
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" && runtime.GOOS != "windows" {
		t.Skip("no platform notifier on this OS")
	}

	var gotName string
	var gotArgs []string
	var gotEnv []string
	d := &Desktop{run: func(ctx context.Context, env []string, name string, args ...string) error {
		gotName = name
		gotArgs = args
		gotEnv = env
		return nil
	}}

	if err := d.Notify("Need `input`; now", "bot-1", "http://127.0.0.1:9131"); err != nil {
		t.Fatalf("Notify error: %v", err)
	}

	joined := gotName + " " + strings.Join(gotArgs, " ") + " " + strings.Join(gotEnv, " ")
	if strings.Contains(joined, "`") || strings.Contains(joined, ";") {
		t.Fatalf("unsanitized text reached the subprocess: %s", joined)
	}
	switch runtime.GOOS {
	case "linux":
		if gotName != "notify-send" {
			t.Fatalf("expected notify-send, got %s", gotName)
		}
	case "darwin":
		if gotName != "osascript" {
			t.Fatalf("expected osascript, got %s", gotName)
		}
		if !strings.Contains(strings.Join(gotEnv, " "), "NUDGE_BODY=") {
			t.Fatal("body not passed via environment")
		}
	case "windows":
		if gotName != "powershell" {
			t.Fatalf("expected powershell, got %s", gotName)
		}
	}
}

func TestDesktopNotifyTruncatesLongQuestions(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("body position is linux-specific")
	}
	var gotArgs []string
	d := &Desktop{run: func(ctx context.Context, env []string, name string, args ...string) error {
		gotArgs = args
		return nil
	}}
	if err := d.Notify(strings.Repeat("q", 500), "", "url"); err != nil {
		t.Fatalf("Notify error: %v", err)
	}
	if len(gotArgs) < 2 {
		t.Fatalf("unexpected args: %v", gotArgs)
	}
	body := gotArgs[1]
	if len(body) != maxBodyLen {
		t.Fatalf("expected body capped at %d, got %d", maxBodyLen, len(body))
	}
	if !strings.HasSuffix(body, "...") {
		t.Fatalf("expected ellipsis suffix, got %q", body)
	}
}
