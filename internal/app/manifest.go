package app

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"time"

	"github.com/hyperifyio/hanadict/internal/dictionary"
)

// manifestOutput records one file written during a run.
type manifestOutput struct {
	Path   string `json:"path"`
	Format string `json:"format"`
	SHA256 string `json:"sha256"`
	Bytes  int64  `json:"bytes"`
}

// manifest captures what a run read and produced so a dictionary can be
// traced back to the exact export it came from.
type manifest struct {
	Input        string             `json:"input"`
	InputSHA256  string             `json:"input_sha256"`
	SourceEntity string             `json:"source_entity"`
	Rows         dictionary.Summary `json:"rows"`
	Outputs      []manifestOutput   `json:"outputs"`
	Version      string             `json:"version"`
	Commit       string             `json:"commit"`
	GeneratedAt  time.Time          `json:"generated_at"`
}

// computeSHA256Hex returns a lowercase hex-encoded SHA-256 of b.
func computeSHA256Hex(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

// describeOutput digests a written file for the manifest.
func describeOutput(o output) (manifestOutput, error) {
	b, err := os.ReadFile(o.Path)
	if err != nil {
		return manifestOutput{}, err
	}
	return manifestOutput{
		Path:   o.Path,
		Format: string(o.Format),
		SHA256: computeSHA256Hex(b),
		Bytes:  int64(len(b)),
	}, nil
}

// marshalManifestJSON encodes a machine-readable sidecar manifest.
func marshalManifestJSON(m manifest) ([]byte, error) {
	if m.Outputs == nil {
		m.Outputs = []manifestOutput{}
	}
	return json.MarshalIndent(m, "", "  ")
}
