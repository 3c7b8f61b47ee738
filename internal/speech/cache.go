package speech

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"

	"github.com/hammamikhairi/voicenotify/internal/logger"
)

// DefaultCacheEntries bounds the in-memory audio cache. Repeat schedules
// and identical app messages are the common hits.
const DefaultCacheEntries = 64

// CacheStats counts lookups since the cache was created.
type CacheStats struct {
	Hits     int64
	DiskHits int64
	Misses   int64
}

type cacheEntry struct {
	key   string
	audio []byte
}

// AudioCache keeps synthesized audio keyed by voice and text. Memory is a
// least-recently-used list of at most maxEntries clips. The disk tier, when
// a directory is set, is always read and only written with diskWrite.
type AudioCache struct {
	voice     string
	dir       string
	diskWrite bool
	max       int
	log       *logger.Logger

	mu    sync.Mutex
	lru   *list.List // front is most recent
	index map[string]*list.Element
	stats CacheStats
}

// NewAudioCache creates an audio cache. maxEntries <= 0 means unbounded.
func NewAudioCache(voice, dir string, diskWrite bool, maxEntries int, log *logger.Logger) *AudioCache {
	log = log.With("cache")
	if dir != "" && diskWrite {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Error("creating %s: %v", dir, err)
		}
	}
	return &AudioCache{
		voice:     voice,
		dir:       dir,
		diskWrite: diskWrite,
		max:       maxEntries,
		log:       log,
		lru:       list.New(),
		index:     make(map[string]*list.Element),
	}
}

// Get returns audio for text from memory, then disk. A disk hit is
// promoted into memory.
func (c *AudioCache) Get(text string) ([]byte, bool) {
	key := c.key(text)

	c.mu.Lock()
	if el, ok := c.index[key]; ok {
		c.lru.MoveToFront(el)
		c.stats.Hits++
		audio := el.Value.(*cacheEntry).audio
		c.mu.Unlock()
		return audio, true
	}
	c.mu.Unlock()

	if c.dir != "" {
		if audio, err := os.ReadFile(c.path(key)); err == nil {
			c.mu.Lock()
			c.insert(key, audio)
			c.stats.DiskHits++
			c.mu.Unlock()
			c.log.Debug("disk hit: %s", truncate(text, 40))
			return audio, true
		}
	}

	c.mu.Lock()
	c.stats.Misses++
	c.mu.Unlock()
	return nil, false
}

// Put stores audio for text.
func (c *AudioCache) Put(text string, audio []byte) {
	key := c.key(text)

	c.mu.Lock()
	c.insert(key, audio)
	c.mu.Unlock()

	if c.dir != "" && c.diskWrite {
		if err := c.writeFile(key, audio); err != nil {
			c.log.Error("writing %s: %v", key, err)
		}
	}
}

// insert adds or refreshes key and evicts from the back. Caller holds c.mu.
func (c *AudioCache) insert(key string, audio []byte) {
	if el, ok := c.index[key]; ok {
		el.Value.(*cacheEntry).audio = audio
		c.lru.MoveToFront(el)
		return
	}
	c.index[key] = c.lru.PushFront(&cacheEntry{key: key, audio: audio})

	for c.max > 0 && c.lru.Len() > c.max {
		oldest := c.lru.Back()
		c.lru.Remove(oldest)
		delete(c.index, oldest.Value.(*cacheEntry).key)
	}
}

// writeFile goes through a temp file so readers never see a partial clip.
func (c *AudioCache) writeFile(key string, audio []byte) error {
	tmp, err := os.CreateTemp(c.dir, key+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(audio); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), c.path(key))
}

// Len returns the number of clips held in memory.
func (c *AudioCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

func (c *AudioCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *AudioCache) key(text string) string {
	sum := sha256.Sum256([]byte(c.voice + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

func (c *AudioCache) path(key string) string {
	return filepath.Join(c.dir, key+".wav")
}
