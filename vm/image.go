package vm

import "rvasm/imgfmt"

// Load validates an image's header and splits it into the read-only and
// code segments a VM needs to run it (spec.md §4.6). It returns
// ErrHeaderInvalid if the magic prefix doesn't match.
func Load(image []byte) (ro, code []byte, err error) {
	_, ro, code, err = imgfmt.Split(image)
	if err != nil {
		return nil, nil, ErrHeaderInvalid
	}
	return ro, code, nil
}
