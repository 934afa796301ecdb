package gameboy

import "github.com/pkg/errors"

// ErrInvalidSnapshot is returned by Restore when a snapshot can't be
// loaded, either because it is truncated or because it was taken with
// a different cartridge inserted.
var ErrInvalidSnapshot = errors.New("gameboy: invalid snapshot")
