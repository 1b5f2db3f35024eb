package adapter

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/VATSALVARSHNEY108/boi-mark2/internal/store"
	"github.com/VATSALVARSHNEY108/boi-mark2/pkg/types"
)

// DialSurface abstracts the host telephony bridge. Screen positions are
// host-specific, so the adapter asks the surface instead of assuming
// coordinates.
type DialSurface interface {
	// OpenBridge brings the telephony app to the foreground.
	OpenBridge(ctx context.Context) error
	// CalibratedButton returns the call-button position when one has
	// been calibrated for this host.
	CalibratedButton() (store.ScreenPoint, bool)
	// ClickAt clicks an absolute screen position.
	ClickAt(ctx context.Context, p store.ScreenPoint) error
	// TypeDigits types a number into the focused dialer.
	TypeDigits(ctx context.Context, digits string) error
	// PressEnter confirms the keyboard-dialed number.
	PressEnter(ctx context.Context) error
	// OpenTelURI asks the OS to handle a tel: URI.
	OpenTelURI(ctx context.Context, uri string) error
}

// Phone handles dial_phone and call_contact. Dialing walks a ladder of
// methods and reports which one succeeded in the result data.
type Phone struct {
	surface  DialSurface
	contacts *store.ContactStore
}

func NewPhone(surface DialSurface, contacts *store.ContactStore) *Phone {
	return &Phone{surface: surface, contacts: contacts}
}

// Register wires the telephony action kinds into the set.
func (p *Phone) Register(s *Set) {
	s.RegisterFunc(types.ActionDialPhone, p.Dial)
	s.RegisterFunc(types.ActionCallContact, p.CallContact)
}

// cleanNumber keeps digits and a leading plus.
func cleanNumber(number string) string {
	var b strings.Builder
	for i, r := range number {
		if r >= '0' && r <= '9' || (r == '+' && i == 0) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Dial places a call. Method ladder: calibrated call button, then
// keyboard dialing, then a tel: URI handed to the OS. The first method
// that works wins; its name is returned under data["method"].
func (p *Phone) Dial(ctx context.Context, action types.Action) *types.ExecutionResult {
	number, _ := action.StringParam("number")
	digits := cleanNumber(number)
	if digits == "" || digits == "+" {
		return types.Fail(types.ErrInvalidParams, fmt.Sprintf("no dialable digits in %q", number))
	}

	if err := p.surface.OpenBridge(ctx); err != nil {
		return types.Fail(types.ErrTransient, fmt.Sprintf("failed to open telephony bridge: %v", err))
	}

	if pos, ok := p.surface.CalibratedButton(); ok {
		if err := p.dialWithButton(ctx, digits, pos); err == nil {
			return p.dialed(number, "calibrated_button")
		} else {
			log.Printf("Calibrated-button dial failed: %v", err)
		}
	}

	if err := p.dialWithKeyboard(ctx, digits); err == nil {
		return p.dialed(number, "keyboard")
	} else {
		log.Printf("Keyboard dial failed: %v", err)
	}

	if err := p.surface.OpenTelURI(ctx, "tel:"+digits); err == nil {
		return p.dialed(number, "tel_uri")
	} else {
		log.Printf("tel: URI dial failed: %v", err)
	}

	return types.Fail(types.ErrPermanent, fmt.Sprintf("all dial methods failed for %s", number))
}

func (p *Phone) dialWithButton(ctx context.Context, digits string, pos store.ScreenPoint) error {
	if err := p.surface.TypeDigits(ctx, strings.TrimPrefix(digits, "+")); err != nil {
		return err
	}
	// Double click: the first click focuses the button, the second fires.
	if err := p.surface.ClickAt(ctx, pos); err != nil {
		return err
	}
	return p.surface.ClickAt(ctx, pos)
}

func (p *Phone) dialWithKeyboard(ctx context.Context, digits string) error {
	if err := p.surface.TypeDigits(ctx, strings.TrimPrefix(digits, "+")); err != nil {
		return err
	}
	return p.surface.PressEnter(ctx)
}

func (p *Phone) dialed(number, method string) *types.ExecutionResult {
	return types.OkData(fmt.Sprintf("Calling %s", number), map[string]any{
		"number": number,
		"method": method,
	})
}

// CallContact resolves a name through the contact store, then delegates
// to Dial.
func (p *Phone) CallContact(ctx context.Context, action types.Action) *types.ExecutionResult {
	name, _ := action.StringParam("contact_name")

	rec, found, err := p.contacts.Get(name)
	if err != nil {
		return types.Fail(types.ErrInternal, fmt.Sprintf("contact lookup failed: %v", err))
	}
	if !found {
		return types.Fail(types.ErrPermanent, fmt.Sprintf("contact %q not found", name))
	}
	if rec.Phone == "" {
		return types.Fail(types.ErrPermanent, fmt.Sprintf("contact %q has no phone number", rec.Name))
	}

	log.Printf("Resolved contact %q to %s", rec.Name, rec.Phone)
	result := p.Dial(ctx, types.Action{
		Kind:       types.ActionDialPhone,
		Parameters: map[string]any{"number": rec.Phone},
	})
	if result.Success {
		result.Message = fmt.Sprintf("Calling %s at %s", rec.Name, rec.Phone)
		if result.Data != nil {
			result.Data["contact"] = rec.Name
		}
	}
	return result
}
