package mood

import "encoding/json"

// Settings keys. Values are JSON-encoded.
const (
	SettingTrackedKeys      = "tracked-emotions"
	SettingCategoryOverride = "category-override"
	SettingLastExportIDs    = "last-export-ids"
	SettingLabels           = "emotion-labels"
)

// Settings is a small persisted key/value store for preferences. The core
// treats it as best effort: read failures look like missing keys and write
// failures are logged, never returned to callers.
type Settings interface {
	// Get returns the stored value and whether the key exists.
	Get(key string) ([]byte, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
}

// loadSetting decodes the JSON value at key into v. It returns false when the
// key is missing, unreadable, or does not decode.
func loadSetting(s Settings, logger Logger, key string, v any) bool {
	raw, ok, err := s.Get(key)
	if err != nil {
		logger.Warn("reading setting failed", "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		logger.Debug("ignoring malformed setting", "key", key, "error", err)
		return false
	}
	return true
}

// saveSetting stores v as JSON at key. Failures are logged and swallowed.
func saveSetting(s Settings, logger Logger, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		logger.Warn("encoding setting failed", "key", key, "error", err)
		return
	}
	if err := s.Set(key, raw); err != nil {
		logger.Warn("persisting setting failed", "key", key, "error", err)
	}
}

// deleteSetting removes key. Failures are logged and swallowed.
func deleteSetting(s Settings, logger Logger, key string) {
	if err := s.Delete(key); err != nil {
		logger.Warn("deleting setting failed", "key", key, "error", err)
	}
}
