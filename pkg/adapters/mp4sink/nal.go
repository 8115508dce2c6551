package mp4sink

// HEVC NAL unit types relevant to muxing.
const (
	nalTypeVPS = 32
	nalTypeSPS = 33
	nalTypePPS = 34
	nalTypeAUD = 35
)

// parameterSets holds the out-of-band NAL units that go into the hvcC box.
type parameterSets struct {
	vps [][]byte
	sps [][]byte
	pps [][]byte
}

func (p *parameterSets) complete() bool {
	return p != nil && len(p.vps) > 0 && len(p.sps) > 0 && len(p.pps) > 0
}

func nalType(nalu []byte) byte {
	if len(nalu) == 0 {
		return 0xFF
	}
	return (nalu[0] >> 1) & 0x3F
}

// parseAnnexB splits an Annex B byte stream into individual NAL units.
func parseAnnexB(data []byte) [][]byte {
	var nalus [][]byte
	start := 0
	i := 0

	for i < len(data) {
		// Start code is 0x00 0x00 0x01 or 0x00 0x00 0x00 0x01.
		if i+2 < len(data) && data[i] == 0 && data[i+1] == 0 {
			startCodeLen := 0
			if data[i+2] == 1 {
				startCodeLen = 3
			} else if i+3 < len(data) && data[i+2] == 0 && data[i+3] == 1 {
				startCodeLen = 4
			}

			if startCodeLen > 0 {
				if i > start {
					nalus = append(nalus, data[start:i])
				}
				i += startCodeLen
				start = i
				continue
			}
		}
		i++
	}

	if start < len(data) {
		nalus = append(nalus, data[start:])
	}

	return nalus
}

// extractParameterSets collects VPS, SPS and PPS NAL units from an Annex B
// stream, typically a stream header or a keyframe packet.
func extractParameterSets(data []byte) *parameterSets {
	ps := &parameterSets{}
	for _, nalu := range parseAnnexB(data) {
		if len(nalu) == 0 {
			continue
		}
		dup := make([]byte, len(nalu))
		copy(dup, nalu)
		switch nalType(nalu) {
		case nalTypeVPS:
			ps.vps = append(ps.vps, dup)
		case nalTypeSPS:
			ps.sps = append(ps.sps, dup)
		case nalTypePPS:
			ps.pps = append(ps.pps, dup)
		}
	}
	return ps
}

// toLengthPrefixed converts Annex B sample data to the length-prefixed
// layout MP4 requires. Parameter set and AUD NAL units are dropped from
// sample data since they live in the hvcC box.
func toLengthPrefixed(data []byte) []byte {
	nalus := parseAnnexB(data)
	if len(nalus) == 0 {
		return data
	}

	totalSize := 0
	for _, nalu := range nalus {
		totalSize += 4 + len(nalu)
	}

	result := make([]byte, totalSize)
	offset := 0

	for _, nalu := range nalus {
		switch nalType(nalu) {
		case nalTypeVPS, nalTypeSPS, nalTypePPS, nalTypeAUD:
			continue
		}

		length := len(nalu)
		result[offset] = byte(length >> 24)
		result[offset+1] = byte(length >> 16)
		result[offset+2] = byte(length >> 8)
		result[offset+3] = byte(length)
		offset += 4

		copy(result[offset:], nalu)
		offset += length
	}

	return result[:offset]
}
