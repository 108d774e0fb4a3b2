// SPDX-License-Identifier: EPL-2.0

// Package ogg implements the Ogg page layer: page parsing and checksum
// verification, packet reassembly across pages, header collection and
// granule lookup at the end of a stream. Codec payloads are handled by
// the vorbis and opus packages.
package ogg
