package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/chainlog-project/chainlog/pkg/errclass"
	"github.com/chainlog-project/chainlog/pkg/model"
)

// Sum returns the SHA-256 digest of data as a lowercase hex string.
func Sum(data []byte) model.HashValue {
	h := sha256.Sum256(data)
	return model.HashValue(hex.EncodeToString(h[:]))
}

// ContentDigest computes the content hash of an event: the digest of
// the canonical encoding of {ts, content}. The derived fields
// prev_hash and chain_hash are excluded.
func ContentDigest(ts string, content json.RawMessage) (model.HashValue, error) {
	base := map[string]any{
		"ts":      ts,
		"content": content,
	}
	data, err := Marshal(base)
	if err != nil {
		return "", errclass.ErrEncoding.WithMessagef("serialize event content: %v", err)
	}
	return Sum(data), nil
}

// Combine folds two hex digests into one: SHA-256 of the concatenation
// of the two hex strings as bytes. It is used both for chain links
// (prev_hash || content_hash) and for Merkle reduction (left || right).
func Combine(left, right model.HashValue) model.HashValue {
	return Sum([]byte(string(left) + string(right)))
}

// NormalizeContent parses raw caller input into a structured payload.
// Input that parses as JSON is used as-is; a bare string that does not
// is wrapped as {"text": <input>}.
func NormalizeContent(raw string) (json.RawMessage, error) {
	trimmed := []byte(raw)
	if json.Valid(trimmed) {
		return json.RawMessage(trimmed), nil
	}
	wrapped, err := json.Marshal(map[string]string{"text": raw})
	if err != nil {
		return nil, errclass.ErrEncoding.WithMessagef("wrap content: %v", err)
	}
	return json.RawMessage(wrapped), nil
}
