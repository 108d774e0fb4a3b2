// SPDX-License-Identifier: EPL-2.0

package flac_test

import (
	"fmt"

	"github.com/ik5/audpcm/formats/flac"
	"github.com/ik5/audpcm/internal/audiotest"
)

func ExampleUnits() {
	data := audiotest.FLAC(2, []int16{8192, -16384})

	dec, err := flac.Units{}.NewUnitDecoder(data, int64(len(data)))
	if err != nil {
		fmt.Println(err)
		return
	}
	defer dec.Close()

	for pos := 0; pos < len(data); {
		u, err := dec.DecodeUnit(data[pos:], int64(pos), true)
		if err != nil {
			fmt.Println(err)
			return
		}
		if len(u.Samples) > 0 {
			fmt.Printf("frame of %d samples, first %v %v\n", len(u.Samples), u.Samples[0], u.Samples[1])
		}
		pos += u.Consumed
	}
	// Output:
	// frame of 384 samples, first 0.25 -0.5
}
