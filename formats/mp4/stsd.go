// SPDX-License-Identifier: EPL-2.0

package mp4

import "encoding/binary"

const (
	sampleEntryHeader = 16 // size, type, reserved, data_reference_index
	audioEntrySize    = 36 // sample entry + v0 audio fields

	objectTypeAAC = 0x40
)

// SampleDescription summarizes the first entry of an stsd box.
type SampleDescription struct {
	Codec         FourCC
	IsSupported   bool
	Channels      int
	BitsPerSample int
	// SampleRate is the integer part of the 16.16 fixed-point rate.
	SampleRate int

	// ObjectType, AvgBitrate and DecoderConfig come from an esds box when
	// present. DecoderConfig holds the AudioSpecificConfig for AAC.
	ObjectType    uint8
	AvgBitrate    uint32
	DecoderConfig []byte
}

// ParseSampleDescription reads the stsd box at the start of b. Only the
// first sample entry is interpreted.
func ParseSampleDescription(b []byte) (SampleDescription, error) {
	p, err := payloadOf(b, TypeStsd)
	if err != nil {
		return SampleDescription{}, err
	}
	if len(p) < 8 {
		return SampleDescription{}, ErrShortPayload
	}
	if binary.BigEndian.Uint32(p[4:]) == 0 {
		return SampleDescription{}, ErrEmptySampleDesc
	}

	entry := p[8:]
	if len(entry) < sampleEntryHeader {
		return SampleDescription{}, ErrShortPayload
	}
	if size := binary.BigEndian.Uint32(entry); size >= sampleEntryHeader && int(size) <= len(entry) {
		entry = entry[:size]
	}

	sd := SampleDescription{Codec: FourCC(binary.BigEndian.Uint32(entry[4:]))}
	sd.IsSupported = sd.Codec == CodecMP4A
	if sd.Codec != CodecMP4A || len(entry) < audioEntrySize {
		return sd, nil
	}

	sd.Channels = int(binary.BigEndian.Uint16(entry[24:]))
	sd.BitsPerSample = int(binary.BigEndian.Uint16(entry[26:]))
	sd.SampleRate = int(binary.BigEndian.Uint32(entry[32:]) >> 16)

	// QuickTime sound descriptions v1 and v2 append extra fields before
	// the child boxes.
	children := audioEntrySize
	switch binary.BigEndian.Uint16(entry[16:]) {
	case 1:
		children += 16
	case 2:
		children += 36
	}
	if children < len(entry) {
		if s, ok := FindBox(entry[children:], TypeEsds); ok {
			sd.parseEsds(s.Payload(entry[children:]))
		}
	}

	return sd, nil
}

// parseEsds walks ES_Descriptor > DecoderConfigDescriptor >
// DecoderSpecificInfo. Malformed descriptors leave the fields unset.
func (sd *SampleDescription) parseEsds(p []byte) {
	if len(p) < 4 {
		return
	}
	p = p[4:] // version/flags

	tag, body, ok := readDescriptor(p)
	if !ok || tag != 0x03 || len(body) < 3 {
		return
	}
	flags := body[2]
	body = body[3:]
	if flags&0x80 != 0 { // streamDependenceFlag
		if len(body) < 2 {
			return
		}
		body = body[2:]
	}
	if flags&0x40 != 0 { // URL_Flag
		if len(body) < 1 || len(body) < 1+int(body[0]) {
			return
		}
		body = body[1+int(body[0]):]
	}
	if flags&0x20 != 0 { // OCRstreamFlag
		if len(body) < 2 {
			return
		}
		body = body[2:]
	}

	tag, dcd, ok := readDescriptor(body)
	if !ok || tag != 0x04 || len(dcd) < 13 {
		return
	}
	sd.ObjectType = dcd[0]
	sd.AvgBitrate = binary.BigEndian.Uint32(dcd[9:])

	tag, dsi, ok := readDescriptor(dcd[13:])
	if !ok || tag != 0x05 {
		return
	}
	sd.DecoderConfig = append([]byte(nil), dsi...)
}

// IsAAC reports whether the esds declared MPEG-4 audio.
func (sd SampleDescription) IsAAC() bool {
	return sd.Codec == CodecMP4A && (sd.ObjectType == 0 || sd.ObjectType == objectTypeAAC)
}

// readDescriptor reads an MPEG-4 descriptor tag and its variable-length
// size (up to four 7-bit groups).
func readDescriptor(b []byte) (byte, []byte, bool) {
	if len(b) < 2 {
		return 0, nil, false
	}
	tag := b[0]
	size := 0
	i := 1
	for ; i < len(b) && i <= 4; i++ {
		size = size<<7 | int(b[i]&0x7F)
		if b[i]&0x80 == 0 {
			i++
			break
		}
	}
	if i+size > len(b) {
		return 0, nil, false
	}
	return tag, b[i : i+size], true
}
