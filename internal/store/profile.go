package store

import "github.com/VATSALVARSHNEY108/boi-mark2/pkg/types"

const profileKey = "profile:user"

// ProfileStore persists the single user profile.
type ProfileStore struct {
	kv *KV
}

func NewProfileStore(kv *KV) *ProfileStore {
	return &ProfileStore{kv: kv}
}

// Load returns the stored profile, or a fresh default when none exists.
func (s *ProfileStore) Load() (*types.UserProfile, error) {
	var p types.UserProfile
	found, err := s.kv.GetJSON(profileKey, &p)
	if err != nil {
		return nil, err
	}
	if !found {
		return types.NewUserProfile(), nil
	}
	return &p, nil
}

func (s *ProfileStore) Save(p *types.UserProfile) error {
	return s.kv.PutJSON(profileKey, p)
}
