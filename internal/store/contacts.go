package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/VATSALVARSHNEY108/boi-mark2/pkg/types"
)

const contactPrefix = "contact:"

// ContactStore keeps the contact book. Names are unique under case
// folding: "Mom" and "mom" are the same contact.
type ContactStore struct {
	mu sync.RWMutex
	kv *KV
}

func NewContactStore(kv *KV) *ContactStore {
	return &ContactStore{kv: kv}
}

func foldName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Add inserts or updates a contact. An existing contact with the same
// folded name is overwritten in place, keeping its creation time.
func (s *ContactStore) Add(name, phone, email string) (*types.ContactRecord, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("contact name is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := contactPrefix + foldName(name)
	now := time.Now()
	rec := types.ContactRecord{Name: name, Phone: phone, Email: email, CreatedAt: now, UpdatedAt: now}

	var existing types.ContactRecord
	found, err := s.kv.GetJSON(key, &existing)
	if err != nil {
		return nil, err
	}
	if found {
		rec.CreatedAt = existing.CreatedAt
		if rec.Phone == "" {
			rec.Phone = existing.Phone
		}
		if rec.Email == "" {
			rec.Email = existing.Email
		}
	}

	if err := s.kv.PutJSON(key, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Get looks a contact up by name. Exact folded match wins; otherwise the
// first contact whose folded name contains the query is returned, so
// "dad" finds "Dad (work)".
func (s *ContactStore) Get(name string) (*types.ContactRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	folded := foldName(name)
	if folded == "" {
		return nil, false, nil
	}

	var rec types.ContactRecord
	found, err := s.kv.GetJSON(contactPrefix+folded, &rec)
	if err != nil {
		return nil, false, err
	}
	if found {
		return &rec, true, nil
	}

	all, err := s.list()
	if err != nil {
		return nil, false, err
	}
	for i := range all {
		if strings.Contains(foldName(all[i].Name), folded) {
			return &all[i], true, nil
		}
	}
	return nil, false, nil
}

// List returns every contact sorted by name.
func (s *ContactStore) List() ([]types.ContactRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.list()
}

func (s *ContactStore) list() ([]types.ContactRecord, error) {
	var out []types.ContactRecord
	err := s.kv.Scan(contactPrefix, func(_ string, value []byte) error {
		var rec types.ContactRecord
		if err := json.Unmarshal(value, &rec); err != nil {
			return err
		}
		out = append(out, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		return foldName(out[i].Name) < foldName(out[j].Name)
	})
	return out, nil
}

// ImportFile loads contacts from a JSON file. Two layouts are accepted:
// the current list of records, and the legacy layout where the file is a
// mapping of name to record. The legacy layout is detected when the
// top-level value is an object whose first value is itself an object
// containing a "name" key.
func (s *ContactStore) ImportFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read contacts file: %w", err)
	}

	var records []types.ContactRecord
	if err := json.Unmarshal(data, &records); err != nil {
		legacy, lerr := parseLegacyContacts(data)
		if lerr != nil {
			return 0, fmt.Errorf("unrecognized contacts file format: %w", err)
		}
		records = legacy
	}

	imported := 0
	for _, rec := range records {
		if _, err := s.Add(rec.Name, rec.Phone, rec.Email); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}

func parseLegacyContacts(data []byte) ([]types.ContactRecord, error) {
	var byName map[string]map[string]any
	if err := json.Unmarshal(data, &byName); err != nil {
		return nil, err
	}
	if len(byName) == 0 {
		return nil, fmt.Errorf("empty legacy contact map")
	}
	for _, v := range byName {
		if _, ok := v["name"]; !ok {
			return nil, fmt.Errorf("not a legacy contact map")
		}
		break
	}

	var out []types.ContactRecord
	for key, v := range byName {
		rec := types.ContactRecord{Name: key}
		if name, ok := v["name"].(string); ok && name != "" {
			rec.Name = name
		}
		if phone, ok := v["phone"].(string); ok {
			rec.Phone = phone
		}
		if email, ok := v["email"].(string); ok {
			rec.Email = email
		}
		out = append(out, rec)
	}
	return out, nil
}
