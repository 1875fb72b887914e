// Package binary archives one copy of every distinct executable seen in
// exec events, keyed by the code directory hash the kernel reports.
package binary

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru"
)

// Cache provides efficient lookup for executable presence with LRU
// eviction. Eviction only forgets that a binary was stored; the archived
// file stays on disk and is rediscovered on the next lookup miss.
type Cache struct {
	cache   *lru.Cache
	binsDir string
}

// DefaultCacheSize bounds the in-memory presence index.
const DefaultCacheSize = 4096

// NewCache creates a size-constrained executable cache.
func NewCache(size int, binsDir string) (*Cache, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(binsDir, 0755); err != nil {
		return nil, err
	}

	return &Cache{
		cache:   cache,
		binsDir: binsDir,
	}, nil
}

// Has checks whether an executable with the given hash is already archived.
func (c *Cache) Has(hash string) bool {
	if _, found := c.cache.Get(hash); found {
		return true
	}
	if _, err := os.Stat(c.Path(hash)); err == nil {
		c.cache.Add(hash, true)
		return true
	}
	return false
}

// Path returns where an executable with the given hash is stored.
func (c *Cache) Path(hash string) string {
	prefix := hash[:2]
	return filepath.Join(c.binsDir, prefix, hash+".bin")
}

// Store archives an executable under its hash and remembers it.
func (c *Cache) Store(sourcePath, hash string) error {
	if len(hash) < 2 {
		return fmt.Errorf("hash %q too short", hash)
	}

	sourceFile, err := os.Open(sourcePath)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	dirPath := filepath.Join(c.binsDir, hash[:2])
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return err
	}

	destFile, err := os.Create(c.Path(hash))
	if err != nil {
		return err
	}
	defer destFile.Close()

	// Archived binaries are evidence; keep them read-only.
	if err := destFile.Chmod(0444); err != nil {
		log.Printf("Warning: Failed to set permissions on binary: %v", err)
	}

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	c.cache.Add(hash, true)
	return nil
}

// HashFile computes the SHA-256 of a file on disk, for executables the
// kernel did not report a code directory hash for.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
