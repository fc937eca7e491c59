package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
)

// Checkpoint is the resumable state of one run: enough to restart the
// sieve just past the last prime fully processed and to resume the
// pcnt/ccnt/dcnt/rcnt counters where they left off. Adapted from
// aelaguiz-pthash-go's internal/serial convention of writing a small
// self-describing state file to a path the caller controls, substituting
// JSON for that package's binary format since this state is small and
// human-inspectable checkpoints are a feature in their own right for a
// multi-day search.
type Checkpoint struct {
	K         uint64 `json:"k"`
	DMax      uint64 `json:"dmax"`
	ZMax      uint64 `json:"zmax"`
	PMin      uint64 `json:"pmin"`
	PMax      uint64 `json:"pmax"`
	LastPrime uint64 `json:"last_prime"`
	Phase     string `json:"phase"`
	Primes    int64  `json:"primes"`
	Candidates int64 `json:"candidates"`
	Divisors  int64  `json:"divisors"`
	Results   int64  `json:"results"`

	// Checksum guards against a checkpoint file truncated or corrupted
	// by a crash between processes sharing the same path (a subprime
	// job split across machines writing to a common network volume,
	// say). Computed over every other field's JSON encoding. Grounded on
	// aelaguiz-pthash-go's use of github.com/cespare/xxhash/v2 for its
	// build artifact's non-cryptographic integrity hash.
	Checksum uint64 `json:"checksum"`
}

// verifyChecksum reports whether cp.Checksum matches a freshly computed
// digest of its other fields.
func (cp *Checkpoint) verifyChecksum() bool {
	if cp.Checksum == 0 {
		return true // no checksum recorded yet (a freshly zero-valued checkpoint)
	}
	return cp.Checksum == cp.computeChecksum()
}

func (cp *Checkpoint) computeChecksum() uint64 {
	unchecked := *cp
	unchecked.Checksum = 0
	data, err := json.Marshal(unchecked)
	if err != nil {
		return 0
	}
	return xxhash.Sum64(data)
}

// LoadCheckpoint reads a checkpoint file written by Save. A missing file
// is not an error: it just means this is a fresh run, so the zero value
// (LastPrime == 0) is returned.
func LoadCheckpoint(path string) (*Checkpoint, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Checkpoint{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("report: reading checkpoint %s: %w", path, err)
	}
	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("report: parsing checkpoint %s: %w", path, err)
	}
	if !cp.verifyChecksum() {
		return nil, fmt.Errorf("report: checkpoint %s failed its integrity checksum; refusing to resume from it", path)
	}
	return &cp, nil
}

// Save persists cp to path, writing to a temporary file in the same
// directory first and renaming over the target so a crash mid-write
// never leaves a truncated checkpoint behind.
func (cp *Checkpoint) Save(path string) error {
	cp.Checksum = cp.computeChecksum()
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("report: marshaling checkpoint: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".checkpoint-*.tmp")
	if err != nil {
		return fmt.Errorf("report: creating temp checkpoint file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("report: writing temp checkpoint file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("report: closing temp checkpoint file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("report: renaming temp checkpoint file into place: %w", err)
	}
	return nil
}
