// Package metadata provides the dictionary codec for frame side-channel
// blobs. The encode pipeline treats the blob as opaque; producers pack a
// Dict before submission and consumers unpack it from the packet that comes
// back with the same PTS.
package metadata

import (
	"bytes"
	"fmt"
	"sort"
)

// Dict is a string-to-string metadata dictionary, e.g. the region-of-
// interest rectangle a detector attached to a frame.
type Dict map[string]string

// Pack serializes the dictionary into a flat blob of NUL-terminated
// key/value pairs. Keys are emitted in sorted order so equal dictionaries
// produce equal blobs.
func (d Dict) Pack() []byte {
	if len(d) == 0 {
		return nil
	}

	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	for _, k := range keys {
		buf.WriteString(k)
		buf.WriteByte(0)
		buf.WriteString(d[k])
		buf.WriteByte(0)
	}
	return buf.Bytes()
}

// Unpack parses a blob produced by Pack. A malformed blob (odd number of
// strings, or a missing terminator) is rejected.
func Unpack(blob []byte) (Dict, error) {
	if len(blob) == 0 {
		return nil, nil
	}
	if blob[len(blob)-1] != 0 {
		return nil, fmt.Errorf("metadata: blob not NUL-terminated")
	}

	parts := bytes.Split(blob[:len(blob)-1], []byte{0})
	if len(parts)%2 != 0 {
		return nil, fmt.Errorf("metadata: odd number of strings in blob")
	}

	d := make(Dict, len(parts)/2)
	for i := 0; i < len(parts); i += 2 {
		d[string(parts[i])] = string(parts[i+1])
	}
	return d, nil
}
