package cartridge

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// CGBFlag specifies the level of CGB support in a Cartridge.
type CGBFlag uint8

const (
	CGBFlagUnset    CGBFlag = iota // No CGB support, most likely a regular Game Boy game.
	CGBFlagEnhanced                // The game supports CGB enhancements, but is backwards compatible.
	CGBFlagCGBOnly                 // The game works on CGB only.
)

// ramSizes maps header byte 0x0149 to the size of external RAM.
var ramSizes = [...]int{
	0x00: 0,
	0x01: 0, // unused, some homebrew sets it anyway
	0x02: 8 * 1024,
	0x03: 32 * 1024,
	0x04: 128 * 1024,
	0x05: 64 * 1024,
}

// Header is the cartridge header, located at 0x0100-0x014F. It
// describes the game, and the hardware present on the cartridge.
//
// https://gbdev.io/pandocs/The_Cartridge_Header.html
type Header struct {
	Title            string  // $0134-$0143 Title of the game in uppercase ASCII.
	ManufacturerCode string  // $013F-$0142 4-character manufacturer code, on newer cartridges
	CGBFlag                  // $0143 Level of CGB support
	NewLicenseeCode  [2]byte // $0144-$0145 2-character ASCII licensee code
	SGBFlag          bool    // $0146 Whether the game supports SGB functions
	Type                     // $0147 Hardware present on the cartridge
	ROMSize          int     // $0148 32 KiB << value
	RAMSize          int     // $0149 Size of external RAM, if any
	DestinationCode  uint8   // $014A Whether the game is sold in Japan or elsewhere
	OldLicenseeCode  uint8   // $014B Publisher, see NewLicenseeCode if $33
	Version          uint8   // $014C Version of the game, usually $00
	HeaderChecksum   uint8   // $014D 8-bit checksum of $0134-$014C
	GlobalChecksum   uint16  // $014E-$014F 16-bit (big endian) sum of the ROM

	romSizeCode uint8
	ramSizeCode uint8
}

// parseHeader parses the header from rom, which must be at least
// 0x150 bytes long.
func parseHeader(rom []byte) Header {
	h := Header{}

	// only bit 7 is checked by the CGB
	switch {
	case rom[0x0143] == 0xC0:
		h.CGBFlag = CGBFlagCGBOnly
	case rom[0x0143]&0x80 != 0:
		h.CGBFlag = CGBFlagEnhanced
	default:
		h.CGBFlag = CGBFlagUnset
	}

	// CGB cartridges shortened the title to make room for the flag
	if h.CGBFlag == CGBFlagUnset {
		h.Title = string(rom[0x0134:0x0144])
	} else {
		h.Title = string(rom[0x0134:0x0143])
	}
	// shorter titles are padded with $00
	h.Title = strings.TrimRight(h.Title, "\x00")

	h.ManufacturerCode = string(rom[0x013F:0x0143])
	h.NewLicenseeCode = [2]byte{rom[0x0144], rom[0x0145]}
	h.SGBFlag = rom[0x0146] == 0x03
	h.Type = Type(rom[0x0147])
	h.romSizeCode = rom[0x0148]
	if h.romSizeCode <= 8 {
		h.ROMSize = (32 * 1024) << h.romSizeCode
	}
	h.ramSizeCode = rom[0x0149]
	if int(h.ramSizeCode) < len(ramSizes) {
		h.RAMSize = ramSizes[h.ramSizeCode]
	}
	h.DestinationCode = rom[0x014A]
	h.OldLicenseeCode = rom[0x014B]
	h.Version = rom[0x014C]
	h.HeaderChecksum = rom[0x014D]
	h.GlobalChecksum = binary.BigEndian.Uint16(rom[0x014E:0x0150])

	return h
}

// HeaderChecksum computes the header checksum of rom, which the boot
// ROM compares against $014D before handing control to the game.
func HeaderChecksum(rom []byte) uint8 {
	var x uint8
	for _, b := range rom[0x0134:0x014D] {
		x = x - b - 1
	}
	return x
}

// GlobalChecksum computes the sum of every byte of rom, except the
// two bytes of the global checksum itself.
func GlobalChecksum(rom []byte) uint16 {
	var sum uint16
	for i, b := range rom {
		if i == 0x014E || i == 0x014F {
			continue
		}
		sum += uint16(b)
	}
	return sum
}

// FixChecksums writes the header and global checksums of rom in
// place, for images assembled by hand.
func FixChecksums(rom []byte) {
	rom[0x014D] = HeaderChecksum(rom)
	binary.BigEndian.PutUint16(rom[0x014E:0x0150], GlobalChecksum(rom))
}

// validate checks the header against the image it was parsed from,
// collecting every problem found.
func (h *Header) validate(rom []byte) error {
	var result *multierror.Error

	if sum := HeaderChecksum(rom); sum != h.HeaderChecksum {
		result = multierror.Append(result, errors.Errorf("header checksum 0x%02X, computed 0x%02X", h.HeaderChecksum, sum))
	}
	if h.ROMSize == 0 {
		result = multierror.Append(result, errors.Errorf("unknown ROM size code 0x%02X", h.romSizeCode))
	} else if h.ROMSize != len(rom) {
		result = multierror.Append(result, errors.Errorf("header declares %d bytes of ROM, image is %d bytes", h.ROMSize, len(rom)))
	}
	if int(h.ramSizeCode) >= len(ramSizes) {
		result = multierror.Append(result, errors.Errorf("unknown RAM size code 0x%02X", h.ramSizeCode))
	}

	if result == nil {
		return nil
	}
	result.ErrorFormat = listFormat
	return result
}

// listFormat formats multiple errors on a single line.
func listFormat(errs []error) string {
	points := make([]string, len(errs))
	for i, err := range errs {
		points[i] = err.Error()
	}
	return strings.Join(points, "; ")
}

// Destination returns the destination as specified in the cartridge header.
func (h *Header) Destination() string {
	switch h.DestinationCode {
	case 0:
		return "Japanese"
	case 1:
		return "Non-Japanese"
	default:
		return "Unknown"
	}
}

// IsCGBCartridge returns true if the cartridge makes use of CGB features, optionally or not.
func (h *Header) IsCGBCartridge() bool {
	return h.CGBFlag != CGBFlagUnset
}

// SGB returns true if the Cartridge supports SGB functions.
func (h *Header) SGB() bool {
	return h.SGBFlag && h.OldLicenseeCode == 0x33
}

// Licensee returns the Licensee of the cartridge, according to the parsed header data.
func (h *Header) Licensee() string {
	if h.OldLicenseeCode == 0x33 {
		if name, ok := newLicenseeCodeMap[string(h.NewLicenseeCode[:])]; ok {
			return name
		}
		return "Unknown"
	}
	if name, ok := oldLicenseeCodeMap[h.OldLicenseeCode]; ok {
		return name
	}
	return "Unknown"
}

// String implements the fmt.Stringer interface.
func (h *Header) String() string {
	return fmt.Sprintf("%s (%s, %s) | (%dKiB|%dKiB) %s", h.Title, h.Licensee(), h.Destination(), h.ROMSize/1024, h.RAMSize/1024, h.Type)
}

var oldLicenseeCodeMap = map[uint8]string{
	0x00: "None",
	0x01: "Nintendo",
	0x08: "Capcom",
	0x09: "Hot B Co.",
	0x0A: "Jaleco",
	0x0B: "Coconuts",
	0x0C: "Elite Systems",
	0x13: "Electronic Arts",
	0x18: "Hudson Soft",
	0x19: "ITC Entertainment",
	0x1A: "Yanoman",
	0x1F: "Virgin",
	0x24: "PCM Complete",
	0x28: "Kotobuki Systems",
	0x29: "Seta",
	0x30: "Infogrames",
	0x31: "Nintendo",
	0x32: "Bandai",
	0x34: "Konami",
	0x38: "Capcom",
	0x39: "Banpresto",
	0x41: "Ubisoft",
	0x42: "Atlus",
	0x49: "Irem",
	0x51: "Acclaim",
	0x52: "Activision",
	0x56: "LJN",
	0x5D: "Tradewest",
	0x67: "Ocean",
	0x69: "Electronic Arts",
	0x70: "Infogrames",
	0x78: "THQ",
	0x7F: "Kemco",
	0x8B: "Bullet-Proof",
	0x99: "Arc",
	0x9B: "Tecmo",
	0xA4: "Konami",
	0xAF: "Namco",
	0xB0: "Acclaim",
	0xB2: "Bandai",
	0xB4: "Square Enix",
	0xB6: "HAL Laboratory",
	0xB7: "SNK",
	0xBB: "Sunsoft",
	0xC0: "Taito",
	0xC2: "Kemco",
	0xC3: "Squaresoft",
	0xC5: "Data East",
	0xC8: "Koei",
	0xDA: "Tomy",
	0xE9: "Natsume",
	0xFF: "LJN",
}

var newLicenseeCodeMap = map[string]string{
	"00": "None",
	"01": "Nintendo",
	"08": "Capcom",
	"13": "Electronic Arts",
	"18": "Hudson Soft",
	"19": "b-ai",
	"20": "KSS",
	"24": "PCM Complete",
	"28": "Kemco Japan",
	"29": "Seta",
	"30": "Viacom",
	"31": "Nintendo",
	"32": "Bandai",
	"33": "Ocean/Acclaim",
	"34": "Konami",
	"37": "Taito",
	"38": "Hudson",
	"41": "Ubi Soft",
	"42": "Atlus",
	"49": "irem",
	"51": "Acclaim",
	"52": "Activision",
	"56": "LJN",
	"60": "Titus",
	"61": "Virgin",
	"69": "Electronic Arts",
	"70": "Infogrames",
	"78": "THQ",
	"79": "Accolade",
	"91": "Chun Soft",
	"99": "Pack in soft",
	"A4": "Konami (Yu-Gi-Oh!)",
}
