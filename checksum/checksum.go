// Package checksum implements the rolling shift-and-add integrity value stored
// at offset 12 of v1.09+ character files.
//
// The value is a single left-to-right scan over the whole file image. Because
// the image is assembled from independent segments (header, quests, stats,
// items), the scan state is exposed as a State that each segment extends in
// turn; the result is identical to scanning the concatenated bytes at once.
package checksum

// State is the running (accumulator, carry) pair of the scan.
//
// For every byte b:
//
//	acc = acc<<1 + b + carry
//	carry = 1 if acc (as int32) < 0 else 0
//
// i.e. the carry feeds the bit shifted out of the top of the previous
// accumulator back into the bottom.
type State struct {
	acc   uint32
	carry uint32
}

// Update extends the scan with p.
func (s *State) Update(p []byte) {
	for _, b := range p {
		s.step(b)
	}
}

// UpdateMasked extends the scan with p, substituting zero for the n bytes
// starting at off. Used for the header, whose checksum field must read as zero
// while it is being computed.
func (s *State) UpdateMasked(p []byte, off, n int) {
	for i, b := range p {
		if i >= off && i < off+n {
			b = 0
		}
		s.step(b)
	}
}

// UpdateZeros extends the scan with n zero bytes.
func (s *State) UpdateZeros(n int) {
	for i := 0; i < n; i++ {
		s.step(0)
	}
}

func (s *State) step(b byte) {
	s.acc = s.acc<<1 + uint32(b) + s.carry
	s.carry = s.acc >> 31
}

// Sum returns the checksum accumulated so far.
func (s *State) Sum() uint32 {
	return s.acc
}

// Reset returns the scan to its initial state.
func (s *State) Reset() {
	*s = State{}
}

// Compute scans a complete file image with the 4-byte checksum field at off
// treated as zero.
func Compute(image []byte, off int) uint32 {
	var s State
	s.UpdateMasked(image, off, 4)
	return s.Sum()
}
