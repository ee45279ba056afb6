package cartridge

import "fmt"

// ErrInvalidImage is returned when an iNES image fails header validation:
// bad magic, or a declared size that disagrees with the supplied buffer.
var ErrInvalidImage = fmt.Errorf("cartridge: invalid image")

// UnsupportedMapperError reports an iNES mapper number this package has no
// concrete implementation for.
type UnsupportedMapperError struct {
	ID uint8
}

func (e *UnsupportedMapperError) Error() string {
	return fmt.Sprintf("cartridge: unsupported mapper %d", e.ID)
}
