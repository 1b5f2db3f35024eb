package adapter

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/VATSALVARSHNEY108/boi-mark2/internal/store"
)

// phoneLinkAppID is the Windows Phone Link shell application id.
const phoneLinkAppID = `shell:AppsFolder\Microsoft.YourPhone_8wekyb3d8bbwe!App`

// DesktopDialSurface drives the host telephony bridge through the same
// command runner the desktop adapter uses. On Windows that bridge is
// Phone Link; elsewhere only the tel: URI method is available.
type DesktopDialSurface struct {
	goos        string
	run         commandRunner
	calibration *store.CalibrationStore
	settle      time.Duration
}

func NewDesktopDialSurface(calibration *store.CalibrationStore) *DesktopDialSurface {
	return &DesktopDialSurface{
		goos:        runtime.GOOS,
		run:         runHostCommand,
		calibration: calibration,
		settle:      2 * time.Second,
	}
}

// OpenBridge launches the telephony app and waits for it to settle.
func (d *DesktopDialSurface) OpenBridge(ctx context.Context) error {
	if d.goos != "windows" {
		// Nothing to open; the tel: handler launches on demand.
		return nil
	}
	if err := d.run(ctx, "explorer.exe", phoneLinkAppID); err != nil {
		if err := d.run(ctx, "cmd", "/c", "start", phoneLinkAppID); err != nil {
			return fmt.Errorf("failed to open Phone Link: %w", err)
		}
	}
	select {
	case <-time.After(d.settle):
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// CalibratedButton reads the stored call-button position for this host.
func (d *DesktopDialSurface) CalibratedButton() (store.ScreenPoint, bool) {
	if d.calibration == nil {
		return store.ScreenPoint{}, false
	}
	p, found, err := d.calibration.DialButton()
	if err != nil || !found {
		return store.ScreenPoint{}, false
	}
	return *p, true
}

func (d *DesktopDialSurface) ClickAt(ctx context.Context, p store.ScreenPoint) error {
	switch d.goos {
	case "windows":
		return d.run(ctx, "powershell", "-Command",
			fmt.Sprintf(`Add-Type -AssemblyName System.Windows.Forms; [System.Windows.Forms.Cursor]::Position = New-Object System.Drawing.Point(%d,%d); %s`, p.X, p.Y, mouseClickPS))
	case "linux":
		if err := d.run(ctx, "xdotool", "mousemove", fmt.Sprint(p.X), fmt.Sprint(p.Y)); err != nil {
			return err
		}
		return d.run(ctx, "xdotool", "click", "1")
	default:
		return fmt.Errorf("no click support on %s", d.goos)
	}
}

func (d *DesktopDialSurface) TypeDigits(ctx context.Context, digits string) error {
	switch d.goos {
	case "windows":
		return d.run(ctx, "powershell", "-Command",
			fmt.Sprintf(`Add-Type -AssemblyName System.Windows.Forms; [System.Windows.Forms.SendKeys]::SendWait(%q)`, digits))
	case "linux":
		return d.run(ctx, "xdotool", "type", "--delay", "80", digits)
	default:
		return fmt.Errorf("no keyboard support on %s", d.goos)
	}
}

func (d *DesktopDialSurface) PressEnter(ctx context.Context) error {
	switch d.goos {
	case "windows":
		return d.run(ctx, "powershell", "-Command",
			`Add-Type -AssemblyName System.Windows.Forms; [System.Windows.Forms.SendKeys]::SendWait('{ENTER}')`)
	case "linux":
		return d.run(ctx, "xdotool", "key", "Return")
	default:
		return fmt.Errorf("no keyboard support on %s", d.goos)
	}
}

func (d *DesktopDialSurface) OpenTelURI(ctx context.Context, uri string) error {
	switch d.goos {
	case "darwin":
		return d.run(ctx, "open", uri)
	case "windows":
		return d.run(ctx, "cmd", "/c", "start", "", uri)
	case "linux":
		return d.run(ctx, "xdg-open", uri)
	default:
		return fmt.Errorf("no tel: handler on %s", d.goos)
	}
}
