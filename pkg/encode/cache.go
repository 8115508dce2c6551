package encode

// pendingMetadata is one in-flight frame's side-channel blob, waiting for the
// packet with the matching PTS to come back out of the encoder.
type pendingMetadata struct {
	pts     int64
	payload []byte
}

// metaCache holds pending entries in insertion order. The number of live
// entries is bounded by the encoder's look-ahead depth, so lookup is a plain
// linear scan by PTS rather than a keyed structure.
type metaCache struct {
	entries []pendingMetadata
	cap     int
}

func newMetaCache(lookAheadDepth int) *metaCache {
	// Twice the look-ahead depth leaves room for packets the encoder is
	// still holding while the caller keeps submitting; the floor covers
	// encoders that never report a depth.
	c := 2 * lookAheadDepth
	if c < defaultMetaCacheCap {
		c = defaultMetaCacheCap
	}
	return &metaCache{cap: c}
}

const defaultMetaCacheCap = 64

// contains reports whether an entry for pts is already pending.
func (m *metaCache) contains(pts int64) bool {
	for i := range m.entries {
		if m.entries[i].pts == pts {
			return true
		}
	}
	return false
}

// add appends a new entry with a private copy of payload. Duplicate PTS
// submissions are ignored so the first payload wins. It returns the oldest
// entry evicted to keep the cache within its cap, or nil.
func (m *metaCache) add(pts int64, payload []byte) *pendingMetadata {
	if m.contains(pts) {
		return nil
	}

	owned := make([]byte, len(payload))
	copy(owned, payload)
	m.entries = append(m.entries, pendingMetadata{pts: pts, payload: owned})

	if len(m.entries) <= m.cap {
		return nil
	}
	evicted := m.entries[0]
	m.entries = m.entries[1:]
	return &evicted
}

// take removes and returns the payload for pts, transferring ownership to the
// caller. It returns nil when no entry matches, which is the normal case for
// frames submitted without metadata.
func (m *metaCache) take(pts int64) []byte {
	for i := range m.entries {
		if m.entries[i].pts == pts {
			payload := m.entries[i].payload
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return payload
		}
	}
	return nil
}

// len returns the number of pending entries.
func (m *metaCache) len() int {
	return len(m.entries)
}

// clear abandons all pending entries. Only legitimate at stream teardown.
func (m *metaCache) clear() {
	m.entries = nil
}
