package serial

// Device is the other end of the link cable, exchanging a bit with
// the Controller for every clock pulse of a transfer.
type Device interface {
	// Receive is called with the bit shifted out of types.SB.
	Receive(bool)
	// Send returns the bit to shift into types.SB.
	Send() bool
}

// nullDevice is the Device attached when nothing is plugged in. With
// no device pulling the line low, every incoming bit reads as 1.
type nullDevice struct{}

func (n nullDevice) Receive(bool) {}

func (n nullDevice) Send() bool { return true }
