// SPDX-License-Identifier: EPL-2.0

package mp4

import (
	"encoding/binary"
	"fmt"
	"slices"
)

// SupportedBrands lists the major brands accepted by ValidateFtyp.
var SupportedBrands = []FourCC{
	ParseFourCC("isom"),
	ParseFourCC("mp41"),
	ParseFourCC("mp42"),
	ParseFourCC("M4A "),
	ParseFourCC("M4B "),
}

// FileType is the content of an ftyp box.
type FileType struct {
	MajorBrand   FourCC
	MinorVersion uint32
	Compatible   []FourCC
}

// ParseFileType reads the ftyp box at the start of b.
func ParseFileType(b []byte) (FileType, error) {
	p, err := payloadOf(b, TypeFtyp)
	if err != nil {
		return FileType{}, err
	}
	if len(p) < 8 {
		return FileType{}, ErrShortPayload
	}

	ft := FileType{
		MajorBrand:   FourCC(binary.BigEndian.Uint32(p)),
		MinorVersion: binary.BigEndian.Uint32(p[4:]),
	}
	for off := 8; off+4 <= len(p); off += 4 {
		ft.Compatible = append(ft.Compatible, FourCC(binary.BigEndian.Uint32(p[off:])))
	}

	return ft, nil
}

// ValidateFtyp accepts an ftyp box whose major brand is in SupportedBrands.
func ValidateFtyp(b []byte) error {
	ft, err := ParseFileType(b)
	if err != nil {
		return err
	}
	if !slices.Contains(SupportedBrands, ft.MajorBrand) {
		return fmt.Errorf("%w %q", ErrUnsupportedBrand, ft.MajorBrand)
	}
	return nil
}
