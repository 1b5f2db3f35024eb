package adapter

import (
	"context"
	"fmt"
	"net/url"
	"runtime"

	"github.com/VATSALVARSHNEY108/boi-mark2/pkg/types"
)

// Spotify controls the local Spotify client. On macOS it scripts the app
// directly, on Linux it talks MPRIS over dbus, on Windows it falls back
// to URIs and media keys.
type Spotify struct {
	goos string
	run  commandRunner
}

func NewSpotify() *Spotify {
	return &Spotify{goos: runtime.GOOS, run: runHostCommand}
}

// Register wires the spotify action kinds into the set.
func (sp *Spotify) Register(s *Set) {
	s.RegisterFunc(types.ActionSpotifyPlay, sp.command("Play", "play"))
	s.RegisterFunc(types.ActionSpotifyPause, sp.command("Pause", "pause"))
	s.RegisterFunc(types.ActionSpotifyNext, sp.command("Next", "next track"))
	s.RegisterFunc(types.ActionSpotifyPrevious, sp.command("Previous", "previous track"))
	s.RegisterFunc(types.ActionSpotifySearch, sp.Search)
}

// command builds an adapter for one transport control. mpris is the
// MPRIS method name; osa the AppleScript verb.
func (sp *Spotify) command(mpris, osa string) Func {
	return func(ctx context.Context, _ types.Action) *types.ExecutionResult {
		var err error
		switch sp.goos {
		case "darwin":
			err = sp.run(ctx, "osascript", "-e", fmt.Sprintf(`tell application "Spotify" to %s`, osa))
		case "linux":
			err = sp.run(ctx, "dbus-send", "--print-reply",
				"--dest=org.mpris.MediaPlayer2.spotify",
				"/org/mpris/MediaPlayer2",
				"org.mpris.MediaPlayer2.Player."+mpris)
		case "windows":
			err = sp.run(ctx, "powershell", "-Command", mediaKeyPS(mpris))
		default:
			return types.Fail(types.ErrUnsupportedHost, fmt.Sprintf("unsupported OS: %s", sp.goos))
		}
		if err != nil {
			return types.Fail(types.ErrTransient, fmt.Sprintf("spotify %s failed: %v", mpris, err))
		}
		return types.Ok(fmt.Sprintf("Spotify: %s", mpris))
	}
}

// mediaKeyPS emits the virtual-key press for a transport control.
func mediaKeyPS(mpris string) string {
	key := map[string]int{
		"Play":     0xB3, // play/pause toggle
		"Pause":    0xB3,
		"Next":     0xB0,
		"Previous": 0xB1,
	}[mpris]
	return fmt.Sprintf(`$sig='[DllImport("user32.dll")]public static extern void keybd_event(byte k,byte s,int f,int e);'; `+
		`$k=Add-Type -MemberDefinition $sig -Name K -PassThru; $k::keybd_event(%d,0,0,0); $k::keybd_event(%d,0,2,0)`, key, key)
}

// Search opens the Spotify client on a search results page.
func (sp *Spotify) Search(ctx context.Context, action types.Action) *types.ExecutionResult {
	query, _ := action.StringParam("query")
	uri := "spotify:search:" + url.QueryEscape(query)

	var err error
	switch sp.goos {
	case "darwin":
		err = sp.run(ctx, "open", uri)
	case "windows":
		err = sp.run(ctx, "cmd", "/c", "start", "", uri)
	case "linux":
		err = sp.run(ctx, "xdg-open", uri)
	default:
		return types.Fail(types.ErrUnsupportedHost, fmt.Sprintf("unsupported OS: %s", sp.goos))
	}
	if err != nil {
		return types.Fail(types.ErrTransient, fmt.Sprintf("spotify search failed: %v", err))
	}
	return types.OkData(fmt.Sprintf("Searching Spotify for %q", query), map[string]any{"uri": uri})
}
