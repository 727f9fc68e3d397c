package settings

import (
	"encoding/json"
	"fmt"

	"github.com/cuemby/ftscore/pkg/kv"
)

// DB is the logical database the resolved Settings blob lives in.
const DB = "settings"

var stateKey = []byte("settings/state")

// Load reconstructs the resolved Settings, or Default() if none has ever
// been saved.
func Load(b *kv.RoBucket) (Settings, error) {
	raw := b.Get(stateKey)
	if raw == nil {
		return Default(), nil
	}
	var s Settings
	if err := json.Unmarshal(raw, &s); err != nil {
		return Settings{}, fmt.Errorf("settings: decode: %w", err)
	}
	return s, nil
}

// Save persists s wholesale. Settings are read once per write
// transaction and are not on any query hot path, so a single
// self-describing JSON blob is simpler than per-field keys without
// costing anything that matters.
func Save(b *kv.Bucket, s Settings) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("settings: encode: %w", err)
	}
	if err := b.Put(stateKey, raw); err != nil {
		return fmt.Errorf("settings: save: %w", err)
	}
	return nil
}
