package mmu

import "github.com/pkg/errors"

// ErrAddressDecodeGap is recorded when an access falls outside of
// every decoded region of the address space.
var ErrAddressDecodeGap = errors.New("mmu: address decode gap")
