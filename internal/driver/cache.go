package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// diskCacheSchemaVersion guards against decoding a payload written by an
// incompatible earlier layout.
const diskCacheSchemaVersion uint16 = 1

// Digest is a sha256 cache key, over a unit's source bytes plus its
// compile options (spec.md §11's disk-cache row).
type Digest [sha256.Size]byte

// DigestFor hashes source together with a stable encoding of the options
// that affect codegen, so changing the optimization level or artifact
// kind invalidates the cache entry the way changing the source would.
func DigestFor(source []byte, opts Options) Digest {
	h := sha256.New()
	h.Write(source)
	fmt.Fprintf(h, "|opt=%d|kind=%d|const=%t|unreachable=%t", opts.OptLevel, opts.ArtifactKind, opts.ConstFold, opts.AllowUnreachableBlocks)
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

// Payload is what DiskCache stores per unit: the rendered LLVM IR text,
// so a cache hit can skip straight to C10's clang invocation without
// redoing C1-C9.
type Payload struct {
	Schema uint16
	IR     string
}

// DiskCache caches compiled IR text on disk, keyed by Digest. Safe for
// concurrent use by the batch driver (C15), grounded on the donor's
// sha256-keyed, atomic-rename DiskCache.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// OpenDiskCache opens (creating if needed) the cache directory for app
// under the user's cache home.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "units", hex.EncodeToString(key[:])+".mp")
}

// Put serializes and atomically writes payload for key.
func (c *DiskCache) Put(key Digest, payload *Payload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	payload.Schema = diskCacheSchemaVersion
	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads and deserializes the payload for key, reporting false if no
// entry (or a schema-mismatched one) exists.
func (c *DiskCache) Get(key Digest, out *Payload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	if out.Schema != diskCacheSchemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll invalidates every cached entry.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(c.dir)
}
