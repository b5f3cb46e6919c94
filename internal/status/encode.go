// internal/status/encode.go
package status

// Encode converts a Snapshot plus monitor name into a full status block.
// Layout is locked.
// No IO. No side effects.
func Encode(s Snapshot, name string) []uint16 {
	regs := make([]uint16, SlotsPerMonitor)

	// Slots 0–4: live status
	regs[SlotHealthCode] = s.Health
	regs[SlotLastErrorCode] = s.LastErrorCode
	regs[SlotSecondsInError] = s.SecondsInError
	regs[SlotTicksHigh] = uint16(s.Ticks >> 16)
	regs[SlotTicksLow] = uint16(s.Ticks)

	// Slots 5–10 are RESERVED → left as zero

	nameRegs := EncodeName(name)
	for i := 0; i < SlotNameSlots; i++ {
		regs[SlotNameStart+i] = nameRegs[i]
	}

	return regs
}

// EncodeName packs up to 16 ASCII characters into 8 registers,
// two bytes per register, big-endian. Non-printable bytes become '?'.
func EncodeName(name string) []uint16 {
	out := make([]uint16, SlotNameSlots)

	b := []byte(name)
	if len(b) > NameMaxChars {
		b = b[:NameMaxChars]
	}

	for i := 0; i < len(b); i++ {
		if b[i] < 0x20 || b[i] > 0x7E {
			b[i] = '?'
		}
	}

	for i := 0; i < NameMaxChars; i += 2 {
		var hi, lo byte
		if i < len(b) {
			hi = b[i]
		}
		if i+1 < len(b) {
			lo = b[i+1]
		}
		out[i/2] = uint16(hi)<<8 | uint16(lo)
	}

	return out
}
