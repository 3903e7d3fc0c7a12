package rv3028

import (
	"errors"
	"fmt"

	"tinygo.org/x/drivers"
)

// simRTC is one simulated RV-3028 register file with the device behaviors
// the driver contract depends on: password-gated silent write drops, the
// TSR pulse, the EEPROM command engine, and counter reload when the timer
// is enabled.
type simRTC struct {
	regs   [256]byte
	eeprom [8]byte // committed copy of the 0x30..0x37 mirrors
	// the device only unlocks after the password registers have actually
	// been written this session; a zero reference never matches an
	// untouched candidate
	pwEntered bool
}

func (s *simRTC) locked() bool {
	if s.regs[regEEPWEnable] == 0 {
		return false
	}
	if !s.pwEntered {
		return true
	}
	for i := 0; i < 4; i++ {
		if s.regs[regPassword0+i] != s.eeprom[regEEPassword0-regEEPWEnable+i] {
			return true
		}
	}
	return false
}

func (s *simRTC) isProtected(reg uint8) bool {
	if reg == regUserRAM1 || reg == regUserRAM2 {
		return true
	}
	return reg >= regEEPWEnable && reg <= regEEBackup
}

func (s *simRTC) write(reg, v uint8) {
	if s.isProtected(reg) && s.locked() {
		return // silent no-op, as on the real device
	}
	switch {
	case reg >= regPassword0 && reg <= regPassword0+3:
		s.pwEntered = true
		s.regs[reg] = v
	case reg == regEventControl:
		if v&timestampResetBit != 0 {
			for i := 0; i < 7; i++ {
				s.regs[regTimestampCount+i] = 0
			}
		}
		s.regs[reg] = v &^ timestampResetBit // TSR reads back 0
	case reg == regEECommand:
		s.regs[reg] = v
		switch v {
		case eeCmdUpdate:
			copy(s.eeprom[:], s.regs[regEEPWEnable:regEEBackup+1])
		case eeCmdRefresh:
			copy(s.regs[regEEPWEnable:regEEBackup+1], s.eeprom[:])
		}
	case reg == regControl1:
		if v&timerEnableBit != 0 && s.regs[regControl1]&timerEnableBit == 0 {
			// enabling loads the down-counter from the preset
			s.regs[regTimerStatus0] = s.regs[regTimerValue0]
			s.regs[regTimerStatus1] = s.regs[regTimerValue1] & 0x0F
		}
		s.regs[reg] = v
	default:
		s.regs[reg] = v
	}
}

func (s *simRTC) read(reg uint8) uint8 {
	return s.regs[reg]
}

func (s *simRTC) setUnix(u uint32) {
	s.regs[regUnixTime0] = byte(u)
	s.regs[regUnixTime0+1] = byte(u >> 8)
	s.regs[regUnixTime0+2] = byte(u >> 16)
	s.regs[regUnixTime0+3] = byte(u >> 24)
}

func (s *simRTC) unix() uint32 {
	return uint32(s.regs[regUnixTime0]) |
		uint32(s.regs[regUnixTime0+1])<<8 |
		uint32(s.regs[regUnixTime0+2])<<16 |
		uint32(s.regs[regUnixTime0+3])<<24
}

// simBus implements drivers.I2C over one or more simRTC register files,
// optionally behind a simulated channel mux.
type simBus struct {
	muxAddr uint16
	devs    map[uint8]*simRTC // keyed by mux channel mask; 0 when no mux
	active  uint8
	// beforeTx, when set, runs before every RTC transaction; tests use it
	// to interleave "hardware" mutations between bus transactions.
	beforeTx func(*simRTC)
}

var _ drivers.I2C = (*simBus)(nil)

func newSimBus() (*simBus, *simRTC) {
	dev := &simRTC{}
	return &simBus{devs: map[uint8]*simRTC{0: dev}}, dev
}

func newMuxSimBus(muxAddr uint16, chanA, chanB uint8) (*simBus, *simRTC, *simRTC) {
	a, b := &simRTC{}, &simRTC{}
	return &simBus{
		muxAddr: muxAddr,
		devs:    map[uint8]*simRTC{chanA: a, chanB: b},
	}, a, b
}

func (b *simBus) Tx(addr uint16, w, r []byte) error {
	if b.muxAddr != 0 && addr == b.muxAddr {
		if len(w) != 1 {
			return fmt.Errorf("sim: mux select expects one byte, got %d", len(w))
		}
		b.active = w[0]
		return nil
	}
	if addr != Address {
		return fmt.Errorf("sim: unexpected device address %#x", addr)
	}
	dev, ok := b.devs[b.active]
	if !ok {
		return fmt.Errorf("sim: no device on mux channel %#x", b.active)
	}
	if len(w) == 0 {
		return errors.New("sim: transaction without register select")
	}
	if b.beforeTx != nil {
		b.beforeTx(dev)
	}
	reg := w[0]
	for i, v := range w[1:] {
		dev.write(reg+uint8(i), v)
	}
	for i := range r {
		r[i] = dev.read(reg + uint8(i))
	}
	return nil
}

func (b *simBus) ReadRegister(addr uint8, reg uint8, buf []byte) error {
	return b.Tx(uint16(addr), []byte{reg}, buf)
}

func (b *simBus) WriteRegister(addr uint8, reg uint8, buf []byte) error {
	return b.Tx(uint16(addr), append([]byte{reg}, buf...), nil)
}
