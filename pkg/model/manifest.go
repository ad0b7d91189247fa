package model

// Manifest is the on-disk checkpoint for a single day, stored at
// .chainlog/journals/<name>/snapshots/<day>.manifest.json.
//
// merkle_root commits to the ordered chain_hash sequence of the day's
// log at snapshot time. bytes is informational only and not
// integrity-bearing.
type Manifest struct {
	Timestamp  string    `json:"ts"`
	Day        Day       `json:"day"`
	Entries    int       `json:"entries"`
	Bytes      int64     `json:"bytes"`
	MerkleRoot HashValue `json:"merkle_root"`
	Algo       Algo      `json:"algo"`
}
