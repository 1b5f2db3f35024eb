package adapter

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/VATSALVARSHNEY108/boi-mark2/pkg/types"
)

// commandRunner executes a host command. Tests replace it to avoid
// touching the real desktop.
type commandRunner func(ctx context.Context, name string, args ...string) error

func runHostCommand(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// Desktop drives the local desktop: applications, keyboard, mouse,
// clipboard, files, and the browser.
type Desktop struct {
	goos string
	run  commandRunner
}

func NewDesktop() *Desktop {
	return &Desktop{goos: runtime.GOOS, run: runHostCommand}
}

// Register wires every desktop-backed action kind into the set.
func (d *Desktop) Register(s *Set) {
	s.RegisterFunc(types.ActionOpenApp, d.OpenApp)
	s.RegisterFunc(types.ActionCloseApp, d.CloseApp)
	s.RegisterFunc(types.ActionTypeText, d.TypeText)
	s.RegisterFunc(types.ActionClick, d.Click)
	s.RegisterFunc(types.ActionMoveMouse, d.MoveMouse)
	s.RegisterFunc(types.ActionPressKey, d.PressKey)
	s.RegisterFunc(types.ActionHotkey, d.Hotkey)
	s.RegisterFunc(types.ActionScreenshot, d.Screenshot)
	s.RegisterFunc(types.ActionCopy, d.Copy)
	s.RegisterFunc(types.ActionPaste, d.Paste)
	s.RegisterFunc(types.ActionCreateFile, d.CreateFile)
	s.RegisterFunc(types.ActionDeleteFile, d.DeleteFile)
	s.RegisterFunc(types.ActionWait, d.Wait)
	s.RegisterFunc(types.ActionSearchWeb, d.SearchWeb)
}

// OpenApp launches an application by name.
func (d *Desktop) OpenApp(ctx context.Context, action types.Action) *types.ExecutionResult {
	appName, _ := action.StringParam("app_name")
	log.Printf("Opening application: %s", appName)

	var err error
	switch d.goos {
	case "darwin":
		err = d.run(ctx, "open", "-a", appName)
	case "windows":
		err = d.run(ctx, "cmd", "/c", "start", "", appName)
	case "linux":
		err = d.run(ctx, appName)
	default:
		return types.Fail(types.ErrUnsupportedHost, fmt.Sprintf("unsupported OS: %s", d.goos))
	}
	if err != nil {
		return types.Fail(types.ErrPermanent, fmt.Sprintf("failed to open %s: %v", appName, err))
	}
	return types.Ok(fmt.Sprintf("Opened %s", appName))
}

// CloseApp terminates an application by name.
func (d *Desktop) CloseApp(ctx context.Context, action types.Action) *types.ExecutionResult {
	appName, _ := action.StringParam("app_name")
	log.Printf("Closing application: %s", appName)

	var err error
	switch d.goos {
	case "darwin":
		err = d.run(ctx, "osascript", "-e", fmt.Sprintf(`quit app %q`, appName))
	case "windows":
		err = d.run(ctx, "taskkill", "/IM", appName+".exe", "/F")
	case "linux":
		err = d.run(ctx, "pkill", "-f", appName)
	default:
		return types.Fail(types.ErrUnsupportedHost, fmt.Sprintf("unsupported OS: %s", d.goos))
	}
	if err != nil {
		return types.Fail(types.ErrPermanent, fmt.Sprintf("failed to close %s: %v", appName, err))
	}
	return types.Ok(fmt.Sprintf("Closed %s", appName))
}

// TypeText types text into the focused window.
func (d *Desktop) TypeText(ctx context.Context, action types.Action) *types.ExecutionResult {
	text, _ := action.StringParam("text")

	var err error
	switch d.goos {
	case "darwin":
		err = d.run(ctx, "osascript", "-e",
			fmt.Sprintf(`tell application "System Events" to keystroke %q`, text))
	case "windows":
		err = d.run(ctx, "powershell", "-Command",
			fmt.Sprintf(`Add-Type -AssemblyName System.Windows.Forms; [System.Windows.Forms.SendKeys]::SendWait(%q)`, text))
	case "linux":
		err = d.run(ctx, "xdotool", "type", "--delay", "50", text)
	default:
		return types.Fail(types.ErrUnsupportedHost, fmt.Sprintf("unsupported OS: %s", d.goos))
	}
	if err != nil {
		return types.Fail(types.ErrPermanent, fmt.Sprintf("failed to type text: %v", err))
	}
	return types.Ok(fmt.Sprintf("Typed %d characters", len(text)))
}

// Click presses the left mouse button, optionally at x,y.
func (d *Desktop) Click(ctx context.Context, action types.Action) *types.ExecutionResult {
	x, hasX := action.IntParam("x")
	y, hasY := action.IntParam("y")

	if d.goos != "linux" && d.goos != "darwin" && d.goos != "windows" {
		return types.Fail(types.ErrUnsupportedHost, fmt.Sprintf("unsupported OS: %s", d.goos))
	}

	if hasX && hasY {
		if r := d.MoveMouse(ctx, types.Action{
			Kind:       types.ActionMoveMouse,
			Parameters: map[string]any{"x": x, "y": y},
		}); !r.Success {
			return r
		}
	}

	var err error
	switch d.goos {
	case "linux":
		err = d.run(ctx, "xdotool", "click", "1")
	case "darwin":
		err = d.run(ctx, "cliclick", "c:.")
	case "windows":
		err = d.run(ctx, "powershell", "-Command", mouseClickPS)
	}
	if err != nil {
		return types.Fail(types.ErrPermanent, fmt.Sprintf("failed to click: %v", err))
	}
	return types.Ok("Clicked")
}

const mouseClickPS = `Add-Type -AssemblyName System.Windows.Forms; ` +
	`$sig='[DllImport("user32.dll")]public static extern void mouse_event(int f,int x,int y,int d,int e);'; ` +
	`$m=Add-Type -MemberDefinition $sig -Name M -PassThru; $m::mouse_event(2,0,0,0,0); $m::mouse_event(4,0,0,0,0)`

// MoveMouse moves the pointer to absolute screen coordinates.
func (d *Desktop) MoveMouse(ctx context.Context, action types.Action) *types.ExecutionResult {
	x, _ := action.IntParam("x")
	y, _ := action.IntParam("y")

	var err error
	switch d.goos {
	case "linux":
		err = d.run(ctx, "xdotool", "mousemove", fmt.Sprint(x), fmt.Sprint(y))
	case "darwin":
		err = d.run(ctx, "cliclick", fmt.Sprintf("m:%d,%d", x, y))
	case "windows":
		err = d.run(ctx, "powershell", "-Command",
			fmt.Sprintf(`Add-Type -AssemblyName System.Windows.Forms; [System.Windows.Forms.Cursor]::Position = New-Object System.Drawing.Point(%d,%d)`, x, y))
	default:
		return types.Fail(types.ErrUnsupportedHost, fmt.Sprintf("unsupported OS: %s", d.goos))
	}
	if err != nil {
		return types.Fail(types.ErrPermanent, fmt.Sprintf("failed to move mouse: %v", err))
	}
	return types.Ok(fmt.Sprintf("Moved mouse to %d,%d", x, y))
}

// PressKey presses a single named key.
func (d *Desktop) PressKey(ctx context.Context, action types.Action) *types.ExecutionResult {
	key, _ := action.StringParam("key")
	return d.sendKeys(ctx, []string{key})
}

// Hotkey presses a key combination such as ctrl+c.
func (d *Desktop) Hotkey(ctx context.Context, action types.Action) *types.ExecutionResult {
	keys, ok := action.StringListParam("keys")
	if !ok || len(keys) == 0 {
		return types.Fail(types.ErrInvalidParams, "hotkey requires a non-empty key list")
	}
	return d.sendKeys(ctx, keys)
}

func (d *Desktop) sendKeys(ctx context.Context, keys []string) *types.ExecutionResult {
	combo := strings.Join(keys, "+")

	var err error
	switch d.goos {
	case "linux":
		err = d.run(ctx, "xdotool", "key", combo)
	case "darwin":
		err = d.run(ctx, "cliclick", "kp:"+combo)
	case "windows":
		err = d.run(ctx, "powershell", "-Command",
			fmt.Sprintf(`Add-Type -AssemblyName System.Windows.Forms; [System.Windows.Forms.SendKeys]::SendWait(%q)`, sendKeysSyntax(keys)))
	default:
		return types.Fail(types.ErrUnsupportedHost, fmt.Sprintf("unsupported OS: %s", d.goos))
	}
	if err != nil {
		return types.Fail(types.ErrPermanent, fmt.Sprintf("failed to press %s: %v", combo, err))
	}
	return types.Ok(fmt.Sprintf("Pressed %s", combo))
}

// sendKeysSyntax converts a key list to Windows SendKeys notation.
func sendKeysSyntax(keys []string) string {
	var b strings.Builder
	for _, key := range keys {
		switch strings.ToLower(key) {
		case "ctrl", "control":
			b.WriteString("^")
		case "alt":
			b.WriteString("%")
		case "shift":
			b.WriteString("+")
		case "enter", "return":
			b.WriteString("{ENTER}")
		case "tab":
			b.WriteString("{TAB}")
		case "esc", "escape":
			b.WriteString("{ESC}")
		default:
			b.WriteString(key)
		}
	}
	return b.String()
}

// Screenshot captures the screen to a timestamped file in the working
// directory and reports the path in data.
func (d *Desktop) Screenshot(ctx context.Context, action types.Action) *types.ExecutionResult {
	path := fmt.Sprintf("screenshot_%s.png", time.Now().Format("20060102_150405"))
	if p, ok := action.StringParam("filename"); ok && p != "" {
		path = p
	}

	var err error
	switch d.goos {
	case "darwin":
		err = d.run(ctx, "screencapture", "-x", path)
	case "linux":
		err = d.run(ctx, "import", "-window", "root", path)
	case "windows":
		err = d.run(ctx, "powershell", "-Command", fmt.Sprintf(screenshotPS, path))
	default:
		return types.Fail(types.ErrUnsupportedHost, fmt.Sprintf("unsupported OS: %s", d.goos))
	}
	if err != nil {
		return types.Fail(types.ErrPermanent, fmt.Sprintf("failed to capture screen: %v", err))
	}
	return types.OkData("Screenshot saved", map[string]any{"path": path})
}

const screenshotPS = `Add-Type -AssemblyName System.Windows.Forms,System.Drawing; ` +
	`$b=[System.Windows.Forms.Screen]::PrimaryScreen.Bounds; ` +
	`$img=New-Object System.Drawing.Bitmap($b.Width,$b.Height); ` +
	`$g=[System.Drawing.Graphics]::FromImage($img); ` +
	`$g.CopyFromScreen($b.Location,[System.Drawing.Point]::Empty,$b.Size); ` +
	`$img.Save('%s')`

// Copy places text on the system clipboard.
func (d *Desktop) Copy(ctx context.Context, action types.Action) *types.ExecutionResult {
	text, _ := action.StringParam("text")

	var err error
	switch d.goos {
	case "darwin":
		err = d.pipe(ctx, text, "pbcopy")
	case "linux":
		err = d.pipe(ctx, text, "xclip", "-selection", "clipboard")
	case "windows":
		err = d.pipe(ctx, text, "clip")
	default:
		return types.Fail(types.ErrUnsupportedHost, fmt.Sprintf("unsupported OS: %s", d.goos))
	}
	if err != nil {
		return types.Fail(types.ErrPermanent, fmt.Sprintf("failed to copy: %v", err))
	}
	return types.Ok("Copied to clipboard")
}

func (d *Desktop) pipe(ctx context.Context, input, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = strings.NewReader(input)
	return cmd.Run()
}

// Paste sends the paste shortcut to the focused window.
func (d *Desktop) Paste(ctx context.Context, _ types.Action) *types.ExecutionResult {
	keys := []string{"ctrl", "v"}
	if d.goos == "darwin" {
		keys = []string{"cmd", "v"}
	}
	return d.sendKeys(ctx, keys)
}

// CreateFile writes a new file, with optional content.
func (d *Desktop) CreateFile(_ context.Context, action types.Action) *types.ExecutionResult {
	filename, _ := action.StringParam("filename")
	content, _ := action.StringParam("content")

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return types.Fail(types.ErrPermanent, fmt.Sprintf("failed to create directory: %v", err))
		}
	}
	if err := os.WriteFile(filename, []byte(content), 0o644); err != nil {
		return types.Fail(types.ErrPermanent, fmt.Sprintf("failed to create file: %v", err))
	}
	return types.OkData(fmt.Sprintf("Created %s", filename), map[string]any{"path": filename})
}

// DeleteFile removes a file. Directories are refused.
func (d *Desktop) DeleteFile(_ context.Context, action types.Action) *types.ExecutionResult {
	path, _ := action.StringParam("path")

	info, err := os.Stat(path)
	if err != nil {
		return types.Fail(types.ErrPermanent, fmt.Sprintf("cannot delete %s: %v", path, err))
	}
	if info.IsDir() {
		return types.Fail(types.ErrInvalidParams, fmt.Sprintf("%s is a directory", path))
	}
	if err := os.Remove(path); err != nil {
		return types.Fail(types.ErrPermanent, fmt.Sprintf("failed to delete %s: %v", path, err))
	}
	return types.Ok(fmt.Sprintf("Deleted %s", path))
}

// Wait sleeps for the requested number of seconds, honoring context
// cancellation.
func (d *Desktop) Wait(ctx context.Context, action types.Action) *types.ExecutionResult {
	seconds, ok := action.FloatParam("seconds")
	if !ok || seconds < 0 {
		return types.Fail(types.ErrInvalidParams, "wait requires a non-negative seconds parameter")
	}

	select {
	case <-time.After(time.Duration(seconds * float64(time.Second))):
		return types.Ok(fmt.Sprintf("Waited %.1fs", seconds))
	case <-ctx.Done():
		return types.Fail(types.ErrCancelled, "wait cancelled")
	}
}

// SearchWeb opens the default browser on a search results page.
func (d *Desktop) SearchWeb(ctx context.Context, action types.Action) *types.ExecutionResult {
	query, _ := action.StringParam("query")
	searchURL := "https://www.google.com/search?q=" + url.QueryEscape(query)

	var err error
	switch d.goos {
	case "darwin":
		err = d.run(ctx, "open", searchURL)
	case "windows":
		err = d.run(ctx, "cmd", "/c", "start", "", searchURL)
	case "linux":
		err = d.run(ctx, "xdg-open", searchURL)
	default:
		return types.Fail(types.ErrUnsupportedHost, fmt.Sprintf("unsupported OS: %s", d.goos))
	}
	if err != nil {
		return types.Fail(types.ErrPermanent, fmt.Sprintf("failed to open browser: %v", err))
	}
	return types.OkData(fmt.Sprintf("Searching the web for %q", query), map[string]any{"url": searchURL})
}
