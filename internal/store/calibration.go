package store

import (
	"fmt"
	"strconv"
	"strings"
)

const dialButtonKey = "calibration:dial_button"

// ScreenPoint is a calibrated on-screen coordinate.
type ScreenPoint struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// CalibrationStore holds screen positions learned or configured for the
// desktop telephony integration, keyed per surface.
type CalibrationStore struct {
	kv *KV
}

func NewCalibrationStore(kv *KV) *CalibrationStore {
	return &CalibrationStore{kv: kv}
}

// DialButton returns the calibrated call-button position, if any.
func (s *CalibrationStore) DialButton() (*ScreenPoint, bool, error) {
	var p ScreenPoint
	found, err := s.kv.GetJSON(dialButtonKey, &p)
	if err != nil || !found {
		return nil, false, err
	}
	return &p, true, nil
}

// SetDialButton records the call-button position.
func (s *CalibrationStore) SetDialButton(x, y int) error {
	return s.kv.PutJSON(dialButtonKey, &ScreenPoint{X: x, Y: y})
}

// SeedDialButton records the call-button position from an "x,y" spec as
// configured in the environment.
func (s *CalibrationStore) SeedDialButton(spec string) error {
	parts := strings.Split(spec, ",")
	if len(parts) != 2 {
		return fmt.Errorf("dial button must be \"x,y\", got %q", spec)
	}
	x, errX := strconv.Atoi(strings.TrimSpace(parts[0]))
	y, errY := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errX != nil || errY != nil {
		return fmt.Errorf("dial button must be \"x,y\", got %q", spec)
	}
	return s.SetDialButton(x, y)
}
