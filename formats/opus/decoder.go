// SPDX-License-Identifier: EPL-2.0

package opus

import (
	"fmt"
	"io"

	"github.com/ik5/audpcm/audio"
)

type Decoder struct{}

// Decode reads all of r and decodes it page by page.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrInvalidInput, err)
	}

	dec, err := Units{}.NewUnitDecoder(data, int64(len(data)))
	if err == audio.ErrNeedMoreData {
		return nil, fmt.Errorf("%w: incomplete opus headers", audio.ErrContainerInvalid)
	}
	if err != nil {
		return nil, err
	}
	return audio.NewUnitSource(dec, data), nil
}
