package model

import "time"

// JournalConfig is stored at .chainlog/journals/<name>/config.json.
// Each journal is an independent hash chain partitioned into daily log
// files.
type JournalConfig struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Algo      Algo      `json:"algo"`
}
