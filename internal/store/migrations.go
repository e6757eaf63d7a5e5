package store

import (
	"encoding/json"
	"fmt"
)

// migration upgrades one snapshot's raw document a single version.
type migration func(doc map[string]interface{}) error

// migrations are keyed by file then by the version being upgraded
// FROM. Missing entries mean the file's shape did not change in that
// version.
var migrations = map[string]map[int]migration{
	FileLeagueState: {
		// v1 predates fan sentiment; seed every club neutral.
		1: func(doc map[string]interface{}) error {
			teams, _ := doc["teams"].([]interface{})
			for _, raw := range teams {
				t, ok := raw.(map[string]interface{})
				if !ok {
					continue
				}
				if _, exists := t["fan_sentiment"]; !exists {
					t["fan_sentiment"] = 50.0
				}
			}
			return nil
		},
		// v2 renamed the advance watermark field.
		2: func(doc map[string]interface{}) error {
			if v, ok := doc["simmed_through"]; ok {
				doc["last_simmed_day"] = v
				delete(doc, "simmed_through")
			}
			return nil
		},
	},
}

// migrate walks the document from its stored version up to
// SaveVersion. Array-rooted snapshots (histories) have no registered
// migrations and pass through untouched.
func migrate(file string, from int, data json.RawMessage) (json.RawMessage, error) {
	fileMigrations := migrations[file]
	if fileMigrations == nil {
		return data, nil
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode for migration: %w", err)
	}
	for v := from; v < SaveVersion; v++ {
		step, ok := fileMigrations[v]
		if !ok {
			continue
		}
		if err := step(doc); err != nil {
			return nil, fmt.Errorf("step v%d to v%d: %w", v, v+1, err)
		}
	}
	return json.Marshal(doc)
}
