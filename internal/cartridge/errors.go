package cartridge

import "github.com/pkg/errors"

var (
	// ErrInvalidImage is returned when a ROM image is too short to
	// hold a header, fails its header checksum, or disagrees with the
	// sizes its header declares.
	ErrInvalidImage = errors.New("cartridge: invalid image")
	// ErrUnsupportedMapper is returned when the header names a
	// cartridge type that isn't implemented.
	ErrUnsupportedMapper = errors.New("cartridge: unsupported mapper")
	// ErrInvalidSave is returned when external RAM or RTC data being
	// loaded doesn't match the size of the cartridge's buffers.
	ErrInvalidSave = errors.New("cartridge: invalid save data")
)
