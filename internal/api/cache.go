package api

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"time"

	"github.com/patrickmn/go-cache"
)

// cachedAudio is one synthesized response kept in memory.
type cachedAudio struct {
	wav        []byte
	sampleRate int
	duration   time.Duration
}

// synthesisCache memoizes WAV responses by request content. A nil cache
// stores nothing.
type synthesisCache struct {
	store *cache.Cache
}

func newSynthesisCache(ttl time.Duration) *synthesisCache {
	if ttl <= 0 {
		return nil
	}
	return &synthesisCache{store: cache.New(ttl, 2*ttl)}
}

func (sc *synthesisCache) get(key string) (*cachedAudio, bool) {
	if sc == nil {
		return nil, false
	}
	v, ok := sc.store.Get(key)
	if !ok {
		return nil, false
	}
	return v.(*cachedAudio), true
}

func (sc *synthesisCache) set(key string, a *cachedAudio) {
	if sc == nil {
		return
	}
	sc.store.Set(key, a, cache.DefaultExpiration)
}

func (sc *synthesisCache) flush() {
	if sc != nil {
		sc.store.Flush()
	}
}

// synthesisKey hashes every request field that changes the generated audio.
// Strings are length prefixed so field boundaries cannot collide.
func synthesisKey(backend string, p *synthesisParams) string {
	h := sha256.New()
	var buf [8]byte
	writeString := func(s string) {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(s)))
		h.Write(buf[:])
		h.Write([]byte(s))
	}
	writeInt := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}

	writeString(backend)
	writeString(p.Text)
	writeInt(uint64(int64(p.SpeakerID)))
	writeInt(uint64(math.Float32bits(p.Speed)))
	writeInt(uint64(int64(p.NumSteps)))
	writeString(p.PromptText)
	writeString(string(p.PromptAudio))
	return hex.EncodeToString(h.Sum(nil))
}
