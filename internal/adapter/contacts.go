package adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/VATSALVARSHNEY108/boi-mark2/internal/store"
	"github.com/VATSALVARSHNEY108/boi-mark2/pkg/types"
)

// Contacts exposes the contact book as actions.
type Contacts struct {
	store *store.ContactStore
}

func NewContacts(s *store.ContactStore) *Contacts {
	return &Contacts{store: s}
}

// Register wires the contact action kinds into the set.
func (c *Contacts) Register(s *Set) {
	s.RegisterFunc(types.ActionContactAdd, c.Add)
	s.RegisterFunc(types.ActionContactGet, c.Get)
	s.RegisterFunc(types.ActionContactList, c.List)
}

func (c *Contacts) Add(_ context.Context, action types.Action) *types.ExecutionResult {
	name, _ := action.StringParam("name")
	phone, _ := action.StringParam("phone")
	email, _ := action.StringParam("email")

	rec, err := c.store.Add(name, phone, email)
	if err != nil {
		return types.Fail(types.ErrInvalidParams, fmt.Sprintf("failed to add contact: %v", err))
	}
	return types.OkData(fmt.Sprintf("Saved contact %s", rec.Name), map[string]any{
		"name": rec.Name, "phone": rec.Phone, "email": rec.Email,
	})
}

func (c *Contacts) Get(_ context.Context, action types.Action) *types.ExecutionResult {
	name, _ := action.StringParam("name")

	rec, found, err := c.store.Get(name)
	if err != nil {
		return types.Fail(types.ErrInternal, fmt.Sprintf("contact lookup failed: %v", err))
	}
	if !found {
		return types.Fail(types.ErrPermanent, fmt.Sprintf("contact %q not found", name))
	}
	return types.OkData(fmt.Sprintf("%s: %s", rec.Name, rec.Phone), map[string]any{
		"name": rec.Name, "phone": rec.Phone, "email": rec.Email,
	})
}

func (c *Contacts) List(_ context.Context, _ types.Action) *types.ExecutionResult {
	all, err := c.store.List()
	if err != nil {
		return types.Fail(types.ErrInternal, fmt.Sprintf("failed to list contacts: %v", err))
	}
	if len(all) == 0 {
		return types.OkData("No contacts saved", map[string]any{"contacts": []map[string]any{}})
	}

	var b strings.Builder
	items := make([]map[string]any, 0, len(all))
	for _, rec := range all {
		fmt.Fprintf(&b, "%s: %s\n", rec.Name, rec.Phone)
		items = append(items, map[string]any{"name": rec.Name, "phone": rec.Phone, "email": rec.Email})
	}
	return types.OkData(strings.TrimSpace(b.String()), map[string]any{"contacts": items})
}
