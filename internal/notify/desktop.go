package notify

import (
	"context"
	"fmt"
	"html"
	"os"
	"os/exec"
	"regexp"
	"runtime"
	"time"
)

const (
	notifyTimeout = 10 * time.Second
	maxBodyLen    = 120
)

// sanitizeRe keeps word characters, whitespace, and minimal punctuation.
// Quotes, backticks, dollar signs, and shell metacharacters are stripped so
// agent-supplied text can never inject into the notification subprocess.
var sanitizeRe = regexp.MustCompile(`[^\w\s\-.,?:()]`)

func sanitize(s string) string {
	return sanitizeRe.ReplaceAllString(s, "")
}

// Desktop sends native OS notifications via subprocess calls.
type Desktop struct {
	run func(ctx context.Context, env []string, name string, args ...string) error
}

// NewDesktop creates the desktop notification channel.
func NewDesktop() *Desktop {
	return &Desktop{run: runCommand}
}

func (d *Desktop) Name() string { return "desktop" }

// Notify renders a notification for the current platform, falling back to
// stderr when no notifier is available or the subprocess fails.
func (d *Desktop) Notify(question, agent, url string) error {
	title := "nudge"
	if agent != "" {
		title = "nudge: " + sanitize(agent)
	}
	body := sanitize(question)
	if len([]rune(body)) > maxBodyLen {
		body = string([]rune(body)[:maxBodyLen-3]) + "..."
	}

	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	var err error
	switch runtime.GOOS {
	case "linux":
		err = d.run(ctx, nil, "notify-send", title, body, "--app-name=nudge")
	case "darwin":
		// Values travel via environment variables, never interpolated
		// into the script.
		script := `display notification (system attribute "NUDGE_BODY") with title (system attribute "NUDGE_TITLE")`
		env := append(os.Environ(), "NUDGE_TITLE="+title, "NUDGE_BODY="+body)
		err = d.run(ctx, env, "osascript", "-e", script)
	case "windows":
		err = d.run(ctx, nil, "powershell", "-NoProfile", "-Command", toastScript(title, body, url))
	default:
		d.fallback(title, body, url)
		return nil
	}

	if err != nil {
		d.fallback(title, body, url)
	}
	return nil
}

func (d *Desktop) fallback(title, body, url string) {
	fmt.Fprintf(os.Stderr, "\n*** %s: %s\n*** Respond at: %s\n", title, body, url)
}

func toastScript(title, body, url string) string {
	safeTitle := html.EscapeString(title)
	safeBody := html.EscapeString(body)
	safeURL := html.EscapeString(url)
	return fmt.Sprintf(`
[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType = WindowsRuntime] | Out-Null
[Windows.Data.Xml.Dom.XmlDocument, Windows.Data.Xml.Dom, ContentType = WindowsRuntime] | Out-Null

$template = @"
<toast activationType="protocol" launch="%s">
    <visual>
        <binding template="ToastGeneric">
            <text>%s</text>
            <text>%s</text>
        </binding>
    </visual>
    <audio silent="false"/>
</toast>
"@

$xml = New-Object Windows.Data.Xml.Dom.XmlDocument
$xml.LoadXml($template)
$toast = [Windows.UI.Notifications.ToastNotification]::new($xml)
$notifier = [Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier("nudge")
$notifier.Show($toast)
`, safeURL, safeTitle, safeBody)
}

func runCommand(ctx context.Context, env []string, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if env != nil {
		cmd.Env = env
	}
	return cmd.Run()
}
