package rv3028

import "time"

// ConfigureTimestampLogging sets up the event/timestamp logger following the
// fixed sequence the application manual mandates: disable the function,
// clear the event and backup-switchover flags, select the event source and
// overwrite policy, pulse the timestamp reset to zero the capture registers,
// then optionally enable capture.
//
// With overwrite false (the hardware default) the first event since the last
// reset is kept; with overwrite true the most recent event is kept. The
// 8-bit event counter saturates at 255 either way.
func (d *Device) ConfigureTimestampLogging(source EventSource, overwrite, start bool) error {
	if err := d.clearBits(regControl2, timestampEnableBit); err != nil {
		return err
	}
	if err := d.clearBits(regStatus, eventFlagBit); err != nil {
		return err
	}
	if err := d.clearBits(regStatus, backupSwitchFlag); err != nil {
		return err
	}
	if err := d.setOrClearBits(regEventControl, timestampSourceBit,
		source != EventSourceEVI); err != nil {
		return err
	}
	if err := d.setOrClearBits(regEventControl, timestampOverwriteBit, overwrite); err != nil {
		return err
	}
	// TSR always reads back 0; setting it zeroes the whole capture block.
	if err := d.setBits(regEventControl, timestampResetBit); err != nil {
		return err
	}
	if start {
		return d.setBits(regControl2, timestampEnableBit)
	}
	return nil
}

// EventCountAndTime reads the event counter and the captured timestamp in a
// single 7-byte transaction. When no event has been captured the count is
// zero and the returned time is the zero Time.
func (d *Device) EventCountAndTime() (uint8, time.Time, error) {
	var buf [7]byte
	if err := d.readRegs(regTimestampCount, buf[:]); err != nil {
		return 0, time.Time{}, err
	}

	count := buf[0] // count is plain binary, not BCD
	if count == 0 {
		return 0, time.Time{}, nil
	}

	stamp := time.Date(
		int(bcdToBin(buf[6]))+2000,
		time.Month(bcdToBin(buf[5])),
		int(bcdToBin(buf[4])),
		int(bcdToBin(buf[3])),
		int(bcdToBin(buf[2])),
		int(bcdToBin(buf[1])),
		0, time.UTC)
	return count, stamp, nil
}

// ResetTimestampLog zeroes the event counter and captured timestamp, leaving
// the enable, source and overwrite configuration untouched.
func (d *Device) ResetTimestampLog() error {
	return d.setBits(regEventControl, timestampResetBit)
}

// ToggleEventHighLow selects whether EVI events trigger on high/rising
// (true) or low/falling (false) edges.
func (d *Device) ToggleEventHighLow(high bool) error {
	return d.setOrClearBits(regEventControl, eventHighLowBit, high)
}

// CheckAndClearEvent reports whether an event was detected since the last
// check, clearing the flag if so.
func (d *Device) CheckAndClearEvent() (bool, error) {
	val, err := d.checkAndClearBits(regStatus, eventFlagBit)
	return val != 0, err
}

// CheckAndClearBackupEvent reports whether the device switched to backup
// power since the last check, clearing the flag if so.
func (d *Device) CheckAndClearBackupEvent() (bool, error) {
	val, err := d.checkAndClearBits(regStatus, backupSwitchFlag)
	return val != 0, err
}

// ToggleEventInterrupt enables or disables the INT pin output on a logged
// event: an EVI edge when the source is EventSourceEVI, or a backup
// switchover when the source is EventSourceBackup. The pin is held until the
// event flag is cleared.
func (d *Device) ToggleEventInterrupt(enable bool) error {
	return d.setOrClearBits(regControl2, eventIntEnableBit, enable)
}

// ClearAllInterruptBits disables every interrupt output source at once,
// quieting the INT pin without touching the timestamp function.
func (d *Device) ClearAllInterruptBits() error {
	return d.clearBits(regControl2,
		clockIntEnableBit|updateIntEnableBit|timerIntEnableBit|alarmIntEnableBit|eventIntEnableBit)
}
