package mood

import "maps"

// Registry owns the emotion schema: the built-in categories, the user's
// persisted override, display labels, and the tracked key set. Every read
// goes back to the settings store, so callers always see the result of the
// latest mutation without holding derived state.
type Registry struct {
	settings Settings
	logger   Logger
}

// NewRegistry creates a Registry that persists to settings.
func NewRegistry(settings Settings, logger Logger) *Registry {
	return &Registry{settings: settings, logger: logger}
}

// SavedOverride returns the persisted override. It returns false when
// nothing is stored or the stored value is corrupt or has the wrong shape.
func (r *Registry) SavedOverride() (*Schema, bool) {
	var s Schema
	if !loadSetting(r.settings, r.logger, SettingCategoryOverride, &s) {
		return nil, false
	}
	return &s, true
}

// SetOverride persists s as the override. Persistence is best effort.
func (r *Registry) SetOverride(s Schema) {
	saveSetting(r.settings, r.logger, SettingCategoryOverride, s)
}

// ResetOverride clears the override so the defaults apply again.
func (r *Registry) ResetOverride() {
	deleteSetting(r.settings, r.logger, SettingCategoryOverride)
}

// Effective returns the defaults merged with the saved override.
func (r *Registry) Effective() Schema {
	override, _ := r.SavedOverride()
	return Merge(DefaultSchema(), override)
}

// AllKeys returns the effective keys in category order followed by NoteKey.
func (r *Registry) AllKeys() []string {
	return append(r.Effective().Keys(), NoteKey)
}

// ProposeOverride validates and persists a new override. An override whose
// keys repeat, either within itself or once merged onto the defaults, is
// rejected with a *DuplicateKeysError and the previous override is kept. On success it returns the keys that were not part of the
// previous effective schema, so callers can warn that older entries may not
// map onto them.
func (r *Registry) ProposeOverride(s Schema) ([]string, error) {
	if dups := ValidateNoDuplicateKeys(s); len(dups) > 0 {
		return nil, &DuplicateKeysError{Keys: dups}
	}
	merged := Merge(DefaultSchema(), &s)
	if dups := ValidateNoDuplicateKeys(merged); len(dups) > 0 {
		return nil, &DuplicateKeysError{Keys: dups}
	}

	added := NewKeys(r.AllKeys(), merged.Keys())
	r.SetOverride(s)
	r.logger.Info("category override saved", "categories", len(s.Categories), "new_keys", len(added))
	return added, nil
}

// Labels returns the current display labels.
func (r *Registry) Labels() Labels {
	return newLabels(r.labelOverrides())
}

// SetLabel changes the display label for key. An empty label restores the
// default.
func (r *Registry) SetLabel(key, label string) Labels {
	overrides := r.labelOverrides()
	if overrides == nil {
		overrides = make(map[string]string)
	}
	if label == "" {
		delete(overrides, key)
	} else {
		overrides[key] = label
	}
	saveSetting(r.settings, r.logger, SettingLabels, overrides)
	return newLabels(overrides)
}

func (r *Registry) labelOverrides() map[string]string {
	var m map[string]string
	if !loadSetting(r.settings, r.logger, SettingLabels, &m) {
		return nil
	}
	return maps.Clone(m)
}

// ConfigSchema returns the schema written by a categories config export: the
// saved override if there is one, otherwise the defaults.
func (r *Registry) ConfigSchema() Schema {
	if s, ok := r.SavedOverride(); ok {
		return s.Clone()
	}
	return DefaultSchema()
}
