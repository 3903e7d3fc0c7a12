package rv3028

import "time"

// The countdown timer is a single 12-bit down-counter fed by one of four
// selectable clocks, so its granularity is one of 244.140625 µs, 15.625 ms,
// 1 s or 60 s. Duration-to-ticks conversion below uses the truncated integer
// factors 244 µs and 15 ms the way the vendor examples do, which keeps the
// arithmetic in whole microseconds.
const (
	maxTimerTicks = 0x0FFF

	millisPerTick = 15  // nominal 15.625 ms at 64 Hz
	microsPerTick = 244 // nominal 244.14 µs at 4096 Hz

	maxTimerMillis = maxTimerTicks * millisPerTick
	maxTimerMicros = maxTimerTicks * microsPerTick

	// Durations that are whole seconds above this barrier are steered to the
	// 1 Hz clock even though 64 Hz could also represent them.
	millisSecondBarrier = 66 * millisPerTick // 990 ms

	microsPerTickPeriod = 15625 // exact 15.625 ms period in µs
)

// TicksAndRateForDuration chooses the coarsest timer clock and 12-bit tick
// count that represent the requested duration, and returns the duration the
// hardware will actually count. Requests longer than 4095 minutes saturate
// at (4095, HertzSixtieth).
//
// The achievable duration is ticks times the tick period and generally
// differs from the request except at exact period multiples; on top of that
// the first period after arming is not phase-aligned to the counter load, so
// a one-shot carries a hardware uncertainty of up to one tick period
// (244 µs to 15.625 ms depending on the clock).
func TicksAndRateForDuration(dur time.Duration) (uint16, TimerClockFreq, time.Duration) {
	minutes := int64(dur / time.Minute)
	seconds := int64(dur / time.Second)
	millis := dur.Milliseconds()
	micros := dur.Microseconds()

	var ticks uint16
	var freq TimerClockFreq
	switch {
	case minutes >= maxTimerTicks:
		ticks, freq = maxTimerTicks, HertzSixtieth
	case seconds > maxTimerTicks:
		ticks, freq = uint16(minutes), HertzSixtieth
	case millis > maxTimerMillis ||
		(dur%time.Second == 0 && millis > millisSecondBarrier):
		ticks, freq = uint16(seconds), Hertz1
	case micros > maxTimerMicros ||
		(micros%microsPerTickPeriod == 0 && micros >= microsPerTickPeriod):
		ticks, freq = uint16(millis/millisPerTick), Hertz64
	default:
		ticks, freq = uint16(micros/microsPerTick), Hertz4096
	}
	return ticks, freq, CountdownPeriod(ticks, freq)
}

// CountdownPeriod returns the wall-clock duration of a full countdown of
// ticks at the given clock.
func CountdownPeriod(ticks uint16, freq TimerClockFreq) time.Duration {
	n := int64(ticks)
	switch freq {
	case Hertz4096:
		return time.Duration(n * 1_000_000_000 / 4096)
	case Hertz64:
		return time.Duration(n*microsPerTickPeriod) * time.Microsecond
	case Hertz1:
		return time.Duration(n) * time.Second
	default: // HertzSixtieth
		return time.Duration(n) * time.Minute
	}
}

// ConfigureCountdown sets up the periodic countdown timer for the requested
// duration and returns the achievable duration actually programmed (see
// TicksAndRateForDuration for how the two differ). repeat selects periodic
// mode instead of one-shot; start arms the timer immediately. The expired
// flag is cleared as part of configuration.
func (d *Device) ConfigureCountdown(dur time.Duration, repeat, start bool) (time.Duration, error) {
	ticks, freq, actual := TicksAndRateForDuration(dur)

	if err := d.clearBits(regControl1, timerEnableBit); err != nil {
		return 0, err
	}
	if err := d.setOrClearBits(regControl1, timerRepeatBit, repeat); err != nil {
		return 0, err
	}
	if err := d.clearBits(regControl1, timerFreqMask); err != nil {
		return 0, err
	}
	if freq != 0 {
		if err := d.setBits(regControl1, uint8(freq)); err != nil {
			return 0, err
		}
	}
	// 12-bit preset, low byte then high nibble, in one transaction.
	if err := d.writeRegs(regTimerValue0,
		byte(ticks), byte(ticks>>8)&0x0F); err != nil {
		return 0, err
	}
	if err := d.clearBits(regStatus, timerFlagBit); err != nil {
		return 0, err
	}
	if start {
		if err := d.setBits(regControl1, timerEnableBit); err != nil {
			return 0, err
		}
	}
	return actual, nil
}

// ToggleCountdown starts or stops the countdown without touching the rest of
// the timer configuration.
func (d *Device) ToggleCountdown(enable bool) error {
	return d.setOrClearBits(regControl1, timerEnableBit, enable)
}

// CheckAndClearCountdown reports whether the countdown expired since the
// last check, clearing the flag if so.
func (d *Device) CheckAndClearCountdown() (bool, error) {
	val, err := d.checkAndClearBits(regStatus, timerFlagBit)
	return val != 0, err
}

// CountdownValue reads the live 12-bit down-counter. The value is only
// meaningful while the timer is armed. Polling it guards against the known
// race where the expired flag is observed not-yet-set even though the
// counter already reached zero.
func (d *Device) CountdownValue() (uint16, error) {
	var buf [2]byte
	if err := d.readRegs(regTimerStatus0, buf[:]); err != nil {
		return 0, err
	}
	return uint16(buf[0]) | uint16(buf[1]&0x0F)<<8, nil
}

// ToggleCountdownInterrupt enables or disables the INT pin output when the
// countdown expires.
func (d *Device) ToggleCountdownInterrupt(enable bool) error {
	return d.setOrClearBits(regControl2, timerIntEnableBit, enable)
}
