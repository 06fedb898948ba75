package catalog

import (
	"context"
	"encoding/json"
	"fmt"
)

// restoreSortPreference applies the persisted sort key, if present.
// Only the "by" field is read; other keys in the record are ignored.
// Unreadable or malformed records keep the default and are logged.
func (s *Store) restoreSortPreference(ctx context.Context) {
	raw, ok, err := s.prefs.Get(ctx, s.storageKey)
	if err != nil {
		s.logger.Warn("failed to read sort preference", "key", s.storageKey, "error", err)
		return
	}
	if !ok {
		return
	}

	saved, err := DecodeSortState(raw)
	if err != nil {
		s.logger.Warn("ignoring malformed sort preference", "key", s.storageKey, "error", err)
		return
	}

	_, _ = s.patch(func(st *State) error {
		st.SortBy = saved.By
		return nil
	})
	s.logger.Debug("restored sort preference", "sort_by", saved.By)
}

// persistSortPreference is the state observer that writes the sort
// preference after every patch. Write failures are logged only.
func (s *Store) persistSortPreference(st State) {
	raw, err := EncodeSortState(SortState{By: st.SortBy})
	if err != nil {
		s.logger.Error("failed to encode sort preference", "error", err)
		return
	}
	if err := s.prefs.Set(context.Background(), s.storageKey, raw); err != nil {
		s.logger.Error("failed to persist sort preference", "key", s.storageKey, "error", err)
	}
}

// EncodeSortState serializes a sort preference record.
func EncodeSortState(st SortState) (string, error) {
	data, err := json.Marshal(st)
	if err != nil {
		return "", fmt.Errorf("encode sort state: %w", err)
	}
	return string(data), nil
}

// DecodeSortState parses a persisted sort preference record.
func DecodeSortState(raw string) (SortState, error) {
	var record struct {
		By string `json:"by"`
	}
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return SortState{}, fmt.Errorf("decode sort state: %w", err)
	}
	key, err := ParseSortKey(record.By)
	if err != nil {
		return SortState{}, fmt.Errorf("decode sort state: %w", err)
	}
	return SortState{By: key}, nil
}
