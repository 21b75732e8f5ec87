package mood

// TrackedKeys returns the keys the user currently records. The result is
// never empty: a missing, empty, or malformed stored set, or one with no
// keys left in the effective schema, falls back to every schema key.
// NoteKey is never part of the result.
func (r *Registry) TrackedKeys() []string {
	all := r.Effective().Keys()

	var stored []string
	if !loadSetting(r.settings, r.logger, SettingTrackedKeys, &stored) || len(stored) == 0 {
		return all
	}

	valid := keySet(all)
	var tracked []string
	for _, k := range stored {
		if valid[k] {
			tracked = append(tracked, k)
		}
	}
	if len(tracked) == 0 {
		return all
	}
	return tracked
}

// SetTrackedKeys persists the tracked set. Keys outside the effective schema
// and NoteKey are dropped; if nothing is left it returns ErrEmptyTrackedSet
// and the stored set is unchanged.
func (r *Registry) SetTrackedKeys(keys []string) ([]string, error) {
	valid := keySet(r.Effective().Keys())
	var kept []string
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if !valid[k] || seen[k] {
			continue
		}
		seen[k] = true
		kept = append(kept, k)
	}
	if len(kept) == 0 {
		return nil, ErrEmptyTrackedSet
	}

	saveSetting(r.settings, r.logger, SettingTrackedKeys, kept)
	return kept, nil
}

// IsTracked reports whether key is in the tracked set. NoteKey is always
// tracked for entry purposes.
func (r *Registry) IsTracked(key string) bool {
	if key == NoteKey {
		return true
	}
	return keySet(r.TrackedKeys())[key]
}

func keySet(keys []string) map[string]bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}
