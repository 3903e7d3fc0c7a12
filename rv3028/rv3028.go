// Package rv3028 implements a driver for the RV-3028-C7 extreme low power
// Real-Time Clock module, covering the calendar and Unix time counter, the
// weekday/date alarm, the periodic countdown timer, event/timestamp logging,
// and the password-gated EEPROM configuration mirrors.
//
// The device may optionally sit behind an I2C bus multiplexer (TCA9548A or
// similar); when a mux is configured, every transaction is preceded by a
// one-byte channel-select write to the mux. Selecting the channel and then
// transacting is not atomic: if several driver instances share one physical
// bus the caller must serialize access across them.
//
// Application Manual: https://www.microcrystal.com/fileadmin/Media/Products/RTC/App.Manual/RV-3028-C7_App-Manual.pdf
package rv3028

import (
	"errors"
	"time"

	"tinygo.org/x/drivers"
)

// ErrUnsettledRead is returned by UnixTimeBlocking when two consecutive reads
// of the Unix time counter never agreed within the requested attempt bound.
var ErrUnsettledRead = errors.New("rv3028: unix time counter reads did not settle")

// Device represents an RV-3028-C7 on an I2C bus. All state lives in the chip;
// the handle only carries the transport and the optional mux addressing.
type Device struct {
	bus     drivers.I2C
	addr    uint16
	muxAddr uint16
	muxChan uint8
}

// New creates a driver instance talking directly to the RTC, with no i2c mux
// between the host and the device.
func New(bus drivers.I2C) *Device {
	return &Device{
		bus:  bus,
		addr: Address,
	}
}

// NewWithMux creates a driver instance for an RTC that sits behind an i2c
// mux. muxAddr is the address of the mux itself and muxChan the channel
// bitmask assigned to this RTC.
func NewWithMux(bus drivers.I2C, muxAddr uint16, muxChan uint8) *Device {
	return &Device{
		bus:     bus,
		addr:    Address,
		muxAddr: muxAddr,
		muxChan: muxChan,
	}
}

// selectMuxChannel tells the mux to route to our channel. No-op without a mux.
func (d *Device) selectMuxChannel() error {
	if d.muxAddr == 0 {
		return nil
	}
	buf := [1]byte{d.muxChan}
	return d.bus.Tx(d.muxAddr, buf[:], nil)
}

func (d *Device) readReg(reg uint8) (uint8, error) {
	if err := d.selectMuxChannel(); err != nil {
		return 0, err
	}
	var buf [1]byte
	err := d.bus.Tx(d.addr, []byte{reg}, buf[:])
	return buf[0], err
}

func (d *Device) writeReg(reg, val uint8) error {
	if err := d.selectMuxChannel(); err != nil {
		return err
	}
	return d.bus.Tx(d.addr, []byte{reg, val}, nil)
}

// readRegs reads a block of consecutive registers in one transaction.
func (d *Device) readRegs(reg uint8, buf []byte) error {
	if err := d.selectMuxChannel(); err != nil {
		return err
	}
	return d.bus.Tx(d.addr, []byte{reg}, buf)
}

// writeRegs writes a block of consecutive registers starting at reg in one
// transaction.
func (d *Device) writeRegs(reg uint8, vals ...byte) error {
	if err := d.selectMuxChannel(); err != nil {
		return err
	}
	return d.bus.Tx(d.addr, append([]byte{reg}, vals...), nil)
}

// setBits sets every high bit of mask in the register. The read and the
// write-back are separate bus transactions; a flag the hardware sets in
// between can be lost. That race is inherent to the chip's register design.
func (d *Device) setBits(reg, mask uint8) error {
	val, err := d.readReg(reg)
	if err != nil {
		return err
	}
	return d.writeReg(reg, val|mask)
}

// clearBits clears every high bit of mask in the register. Same read-modify-
// write race caveat as setBits.
func (d *Device) clearBits(reg, mask uint8) error {
	val, err := d.readReg(reg)
	if err != nil {
		return err
	}
	return d.writeReg(reg, val&^mask)
}

func (d *Device) setOrClearBits(reg, mask uint8, set bool) error {
	if set {
		return d.setBits(reg, mask)
	}
	return d.clearBits(reg, mask)
}

// checkAndClearBits reads the register and, if any masked bit is set, clears
// exactly those bits. Returns the pre-clear masked value. This is the shape
// of every status flag check on this chip.
func (d *Device) checkAndClearBits(reg, mask uint8) (uint8, error) {
	val, err := d.readReg(reg)
	if err != nil {
		return 0, err
	}
	if val&mask != 0 {
		if err := d.writeReg(reg, val&^mask); err != nil {
			return 0, err
		}
	}
	return val & mask, nil
}

// checkNonzero reports whether any masked bit is set, without mutating.
func (d *Device) checkNonzero(reg, mask uint8) (bool, error) {
	val, err := d.readReg(reg)
	return val&mask != 0, err
}

// UnixTime reads the 32-bit Unix time counter. The counter increments
// autonomously; a multi-byte read can race an internal carry, so callers
// that need a coherent value should use UnixTimeBlocking.
func (d *Device) UnixTime() (uint32, error) {
	var buf [4]byte
	if err := d.readRegs(regUnixTime0, buf[:]); err != nil {
		return 0, err
	}
	return uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24, nil
}

// UnixTimeBlocking reads the Unix time counter repeatedly until two
// consecutive reads agree, the hazard-avoidance protocol the application
// manual recommends. maxAttempts bounds the number of read pairs;
// maxAttempts <= 0 retries without bound, which matches the datasheet
// procedure but never returns while the reads keep disagreeing. A positive
// bound that is exhausted yields ErrUnsettledRead.
func (d *Device) UnixTimeBlocking(maxAttempts int) (uint32, error) {
	for i := 0; maxAttempts <= 0 || i < maxAttempts; i++ {
		first, err := d.UnixTime()
		if err != nil {
			return 0, err
		}
		second, err := d.UnixTime()
		if err != nil {
			return 0, err
		}
		if first == second {
			return second, nil
		}
	}
	return 0, ErrUnsettledRead
}

// SetUnixTime sets only the Unix time counter, in one 5-byte transaction.
// The BCD calendar registers are left alone and the sub-second prescaler is
// not reset; prefer SetTime to keep every timekeeping register aligned.
func (d *Device) SetUnixTime(unix uint32) error {
	return d.writeRegs(regUnixTime0,
		byte(unix), byte(unix>>8), byte(unix>>16), byte(unix>>24))
}

// SetTime sets the Unix time counter and the BCD calendar registers to t.
//
// The device only supports years 2000..2099; out-of-range years clamp to
// 2000 and out-of-range month/day values wrap modulo the register width,
// without validation, exactly as the register encoding does. The BCD time
// block is written last because a write to the seconds register resets the
// upper prescaler stage: that ordering is what synchronizes sub-seconds to
// the moment of the call.
func (d *Device) SetTime(t time.Time) error {
	t = t.UTC()
	if err := d.SetUnixTime(uint32(t.Unix())); err != nil {
		return err
	}
	if err := d.setDate(t); err != nil {
		return err
	}
	return d.setTimeOfDay(t)
}

func (d *Device) setDate(t time.Time) error {
	year := uint8(0)
	if t.Year() > 2000 {
		year = uint8(t.Year() - 2000)
	}
	month := uint8(t.Month()) % 13
	day := uint8(t.Day()) % 32
	weekday := uint8(t.Weekday()) % 7

	return d.writeRegs(regWeekday,
		binToBCD(weekday),
		binToBCD(day),
		binToBCD(month),
		binToBCD(year))
}

func (d *Device) setTimeOfDay(t time.Time) error {
	return d.writeRegs(regSeconds,
		binToBCD(uint8(t.Second())),
		binToBCD(uint8(t.Minute())),
		binToBCD(uint8(t.Hour())))
}

// Now returns the current time according to the Unix time counter, in UTC.
// The counter cannot represent datetimes before 1970, wraps around the year
// 2106, and the chip's automatic leap year correction is only valid through
// 2099.
func (d *Device) Now() (time.Time, error) {
	unix, err := d.UnixTime()
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(int64(unix), 0).UTC(), nil
}

// CalendarYMD reads the year, month and day directly from the BCD calendar
// registers, which track independently of the Unix time counter.
func (d *Device) CalendarYMD() (year int, month, day uint8, err error) {
	var buf [3]byte
	if err = d.readRegs(regDate, buf[:]); err != nil {
		return 0, 0, 0, err
	}
	return int(bcdToBin(buf[2])) + 2000, bcdToBin(buf[1]), bcdToBin(buf[0]), nil
}

// CalendarHMS reads the hour, minute and second from the BCD clock registers.
func (d *Device) CalendarHMS() (hour, minute, second uint8, err error) {
	var buf [3]byte
	if err = d.readRegs(regSeconds, buf[:]); err != nil {
		return 0, 0, 0, err
	}
	return bcdToBin(buf[2]), bcdToBin(buf[1]), bcdToBin(buf[0]), nil
}

// CheckAndClearPowerOnReset reports whether the power-on reset flag was set,
// clearing it if so. A set flag means the chip lost power at some point and
// its time is not to be trusted.
func (d *Device) CheckAndClearPowerOnReset() (bool, error) {
	val, err := d.checkAndClearBits(regStatus, porFlagBit)
	return val != 0, err
}

// binToBCD packs a 0..99 value into two BCD digits. Values >= 100 produce an
// undefined encoding, mirroring the unchecked width of the hardware fields.
func binToBCD(v uint8) uint8 {
	return (v/10)<<4 | v%10
}

// bcdToBin unpacks two BCD digits.
func bcdToBin(v uint8) uint8 {
	return (v>>4)*10 + v&0x0F
}
