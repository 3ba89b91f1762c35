package state

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Fingerprint returns a stable content hash of an entity document.
// The document is serialized as canonical JSON (object keys sorted, no
// insignificant whitespace) so two semantically equal documents hash the
// same regardless of field insertion order.
func Fingerprint(doc any) (string, error) {
	canonical, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to serialize document: %w", err)
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
