// SPDX-License-Identifier: EPL-2.0

package audiotest

import "encoding/binary"

// Box encodes an MP4 box with a 32-bit size.
func Box(typ string, payload ...[]byte) []byte {
	n := 8
	for _, p := range payload {
		n += len(p)
	}
	out := binary.BigEndian.AppendUint32(make([]byte, 0, n), uint32(n))
	out = append(out, typ[:4]...)
	for _, p := range payload {
		out = append(out, p...)
	}
	return out
}

// Box64 encodes an MP4 box using the 64-bit size form.
func Box64(typ string, payload ...[]byte) []byte {
	n := 16
	for _, p := range payload {
		n += len(p)
	}
	out := binary.BigEndian.AppendUint32(make([]byte, 0, n), 1)
	out = append(out, typ[:4]...)
	out = binary.BigEndian.AppendUint64(out, uint64(n))
	for _, p := range payload {
		out = append(out, p...)
	}
	return out
}

// Ftyp builds an ftyp box with one compatible brand.
func Ftyp(brand string) []byte {
	p := append([]byte(brand[:4]), 0, 0, 0, 0)
	p = append(p, brand[:4]...)
	return Box("ftyp", p)
}

// Mdhd builds a media header box of the given version.
func Mdhd(version uint8, timescale uint32, duration uint64) []byte {
	p := []byte{version, 0, 0, 0}
	if version == 1 {
		p = binary.BigEndian.AppendUint64(p, 1) // creation
		p = binary.BigEndian.AppendUint64(p, 2) // modification
		p = binary.BigEndian.AppendUint32(p, timescale)
		p = binary.BigEndian.AppendUint64(p, duration)
	} else {
		p = binary.BigEndian.AppendUint32(p, 1)
		p = binary.BigEndian.AppendUint32(p, 2)
		p = binary.BigEndian.AppendUint32(p, timescale)
		p = binary.BigEndian.AppendUint32(p, uint32(duration))
	}
	p = append(p, 0x55, 0xC4, 0, 0) // language, pre_defined
	return Box("mdhd", p)
}

// Hdlr builds a handler reference box.
func Hdlr(handler string) []byte {
	p := make([]byte, 8, 25)
	p = append(p, handler[:4]...)
	p = append(p, make([]byte, 12)...)
	p = append(p, 0)
	return Box("hdlr", p)
}

// Stsd builds a sample description with one audio entry. children are
// appended inside the entry (e.g. an esds box).
func Stsd(codec string, channels, bits uint16, rate uint32, children ...[]byte) []byte {
	entry := make([]byte, 6, 36)              // reserved
	entry = append(entry, 0, 1)               // data_reference_index
	entry = append(entry, make([]byte, 8)...) // version, revision, vendor
	entry = binary.BigEndian.AppendUint16(entry, channels)
	entry = binary.BigEndian.AppendUint16(entry, bits)
	entry = append(entry, 0, 0, 0, 0) // compression id, packet size
	entry = binary.BigEndian.AppendUint32(entry, rate<<16)
	for _, c := range children {
		entry = append(entry, c...)
	}

	p := []byte{0, 0, 0, 0, 0, 0, 0, 1}
	return Box("stsd", p, Box(codec, entry))
}

// Esds builds an esds box carrying an AAC AudioSpecificConfig.
func Esds(asc []byte, avgBitrate uint32) []byte {
	dsi := append([]byte{0x05, byte(len(asc))}, asc...)

	dcd := []byte{0x40, 0x15, 0, 0, 0}
	dcd = binary.BigEndian.AppendUint32(dcd, avgBitrate) // max
	dcd = binary.BigEndian.AppendUint32(dcd, avgBitrate) // avg
	dcd = append(dcd, dsi...)
	dcd = append([]byte{0x04, byte(len(dcd))}, dcd...)

	es := append([]byte{0, 1, 0}, dcd...)
	es = append(es, 0x06, 0x01, 0x02) // SLConfigDescriptor
	es = append([]byte{0x03, byte(len(es))}, es...)

	return Box("esds", []byte{0, 0, 0, 0}, es)
}

// Stsz builds a sample size box.
func Stsz(defaultSize, count uint32) []byte {
	p := []byte{0, 0, 0, 0}
	p = binary.BigEndian.AppendUint32(p, defaultSize)
	p = binary.BigEndian.AppendUint32(p, count)
	if defaultSize == 0 {
		for range count {
			p = binary.BigEndian.AppendUint32(p, 371)
		}
	}
	return Box("stsz", p)
}

// Stco builds a chunk offset box with entries all pointing at offset.
func Stco(count uint32, offset uint32) []byte {
	p := []byte{0, 0, 0, 0}
	p = binary.BigEndian.AppendUint32(p, count)
	for range count {
		p = binary.BigEndian.AppendUint32(p, offset)
	}
	return Box("stco", p)
}

// AudioTrak builds a complete sound trak.
func AudioTrak(codec string, channels uint16, rate uint32, timescale uint32, duration uint64) []byte {
	stbl := Box("stbl",
		Stsd(codec, channels, 16, rate),
		Stsz(0, 4),
		Stco(1, 48),
	)
	return Box("trak",
		Box("mdia",
			Mdhd(0, timescale, duration),
			Hdlr("soun"),
			Box("minf", stbl),
		),
	)
}

// VideoTrak builds a trak whose handler is video.
func VideoTrak() []byte {
	return Box("trak",
		Box("mdia",
			Mdhd(0, 90000, 90000),
			Hdlr("vide"),
			Box("minf", Box("stbl", Stsd("avc1", 0, 0, 0))),
		),
	)
}

// M4A builds a minimal audio-only file: ftyp, moov with one AAC track,
// and an mdat of the given size.
func M4A(mdat int) []byte {
	var out []byte
	out = append(out, Ftyp("M4A ")...)
	out = append(out, Box("moov", AudioTrak("mp4a", 2, 44100, 44100, 441000))...)
	out = append(out, Box("mdat", make([]byte, mdat))...)
	return out
}
