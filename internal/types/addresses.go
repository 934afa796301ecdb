package types

// HardwareAddress is the address of a hardware register. Hardware
// registers are mapped to 0xFF00 - 0xFF7F, along with the interrupt
// enable register at 0xFFFF.
type HardwareAddress = uint16

const (
	// P1 selects which half of the joypad matrix is visible in the
	// lower nibble, and reads back the (active low) button state.
	//
	//	Bit 5 - Select action buttons    (0=Select)
	//	Bit 4 - Select direction buttons (0=Select)
	//	Bit 3 - Down  / Start  (0=Pressed)
	//	Bit 2 - Up    / Select (0=Pressed)
	//	Bit 1 - Left  / B      (0=Pressed)
	//	Bit 0 - Right / A      (0=Pressed)
	P1 HardwareAddress = 0xFF00
	// SB holds the byte shifted out of (and into) the serial port.
	SB HardwareAddress = 0xFF01
	// SC controls the serial port. Bit 7 requests a transfer and bit 0
	// selects the internal clock.
	SC HardwareAddress = 0xFF02
	// DIV is the upper byte of the 16-bit system counter. It increments
	// every 256 cycles, and any write resets the whole counter to 0.
	DIV HardwareAddress = 0xFF04
	// TIMA is incremented at the rate selected by TAC. When it
	// overflows it is reloaded from TMA and a timer interrupt is
	// requested, one machine cycle later.
	TIMA HardwareAddress = 0xFF05
	// TMA is the value loaded into TIMA when it overflows.
	TMA HardwareAddress = 0xFF06
	// TAC controls the timer.
	//
	//	Bit 2   - Enable
	//	Bit 1-0 - Clock select (00=1024, 01=16, 10=64, 11=256 cycles)
	TAC HardwareAddress = 0xFF07
	// IF requests interrupts, one bit per source.
	//
	//	Bit 0: V-Blank   (INT 40h)
	//	Bit 1: LCD STAT  (INT 48h)
	//	Bit 2: Timer     (INT 50h)
	//	Bit 3: Serial    (INT 58h)
	//	Bit 4: Joypad    (INT 60h)
	IF HardwareAddress = 0xFF0F

	NR10 HardwareAddress = 0xFF10
	NR52 HardwareAddress = 0xFF26
	// WaveRAM is the first byte of the 16 byte wave pattern RAM.
	WaveRAM HardwareAddress = 0xFF30

	// LCDC controls the LCD.
	//
	//	Bit 7: LCD Enable                   (0=Off, 1=On)
	//	Bit 6: Window Tile Map              (0=9800-9BFF, 1=9C00-9FFF)
	//	Bit 5: Window Enable                (0=Off, 1=On)
	//	Bit 4: BG & Window Tile Data        (0=8800-97FF, 1=8000-8FFF)
	//	Bit 3: BG Tile Map                  (0=9800-9BFF, 1=9C00-9FFF)
	//	Bit 2: OBJ Size                     (0=8x8, 1=8x16)
	//	Bit 1: OBJ Enable                   (0=Off, 1=On)
	//	Bit 0: BG & Window Enable           (0=Off, 1=On)
	LCDC HardwareAddress = 0xFF40
	// STAT reports the LCD mode and selects the sources of the
	// LCD STAT interrupt.
	//
	//	Bit 6: LYC=LY Interrupt   (1=Enable)
	//	Bit 5: Mode 2 Interrupt   (1=Enable)
	//	Bit 4: Mode 1 Interrupt   (1=Enable)
	//	Bit 3: Mode 0 Interrupt   (1=Enable)
	//	Bit 2: LYC=LY Flag        (Read Only)
	//	Bit 1-0: Mode             (Read Only)
	STAT HardwareAddress = 0xFF41
	// SCY is the vertical scroll position of the background.
	SCY HardwareAddress = 0xFF42
	// SCX is the horizontal scroll position of the background.
	SCX HardwareAddress = 0xFF43
	// LY is the scanline currently being drawn (0-153). Read only.
	LY HardwareAddress = 0xFF44
	// LYC is compared against LY, setting STAT bit 2 when equal.
	LYC HardwareAddress = 0xFF45
	// DMA starts an OAM DMA transfer from XX00-XX9F to FE00-FE9F.
	DMA HardwareAddress = 0xFF46
	// BGP is the background and window palette.
	BGP HardwareAddress = 0xFF47
	// OBP0 is the first object palette, color 0 is transparent.
	OBP0 HardwareAddress = 0xFF48
	// OBP1 is the second object palette, color 0 is transparent.
	OBP1 HardwareAddress = 0xFF49
	// WY is the top edge of the window.
	WY HardwareAddress = 0xFF4A
	// WX is the left edge of the window, plus 7.
	WX HardwareAddress = 0xFF4B
	// KEY1 arms a speed switch (bit 0), performed by the next STOP.
	// Bit 7 reads the current speed. CGB only.
	KEY1 HardwareAddress = 0xFF4D
	// VBK selects the VRAM bank mapped to 8000-9FFF. CGB only.
	VBK HardwareAddress = 0xFF4F
	// BDIS unmaps the boot ROM once written with a non-zero value.
	BDIS HardwareAddress = 0xFF50
	// HDMA1 and HDMA2 hold the source of a VRAM DMA transfer, the
	// lower 4 bits are ignored. CGB only.
	HDMA1 HardwareAddress = 0xFF51
	HDMA2 HardwareAddress = 0xFF52
	// HDMA3 and HDMA4 hold the destination of a VRAM DMA transfer,
	// within VRAM. CGB only.
	HDMA3 HardwareAddress = 0xFF53
	HDMA4 HardwareAddress = 0xFF54
	// HDMA5 starts a VRAM DMA transfer of (length+1)*16 bytes, all at
	// once (bit 7 clear) or 16 bytes per HBlank (bit 7 set). CGB only.
	HDMA5 HardwareAddress = 0xFF55
	// BCPS selects the byte of background palette RAM accessed by
	// BCPD, incrementing after each write when bit 7 is set. CGB only.
	BCPS HardwareAddress = 0xFF68
	// BCPD reads and writes background palette RAM. CGB only.
	BCPD HardwareAddress = 0xFF69
	// OCPS is BCPS for object palette RAM. CGB only.
	OCPS HardwareAddress = 0xFF6A
	// OCPD is BCPD for object palette RAM. CGB only.
	OCPD HardwareAddress = 0xFF6B
	// SVBK selects the WRAM bank mapped to D000-DFFF, 0 selecting
	// bank 1. CGB only.
	SVBK HardwareAddress = 0xFF70
	// IE enables interrupts, using the same layout as IF.
	IE HardwareAddress = 0xFFFF
)
