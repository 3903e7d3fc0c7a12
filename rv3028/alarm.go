package rv3028

import "time"

// Alarm is the decoded state of the weekday/date alarm registers.
// The alarm is either a weekday alarm (Weekday non-nil, Day unused) or a
// date alarm (Weekday nil, Day is a day of month); the WADA bit selects
// between them so the two modes are mutually exclusive.
type Alarm struct {
	Minute uint8
	Hour   uint8
	// Day is the day of month for a date alarm, or the weekday value for a
	// weekday alarm.
	Day     uint8
	Weekday *time.Weekday

	// Per-field match enables. A disabled field is still stored in its
	// register but carries the AE "don't watch" bit.
	MatchDay    bool
	MatchHour   bool
	MatchMinute bool
}

// SetAlarm configures the alarm following the application manual's
// "Procedure to use the Alarm Interrupt". Only day (or weekday), hour and
// minute are supported by the hardware.
//
// If weekday is non-nil a weekday alarm is configured and the day of month
// in at is ignored; otherwise a date alarm on at's day of month. Each
// matchX argument selects whether that field participates in the match.
//
// The alarm-fired flag is cleared both before and after the register writes:
// the three alarm registers are written in separate transactions and a
// partially written combination could momentarily match and fire.
func (d *Device) SetAlarm(at time.Time, weekday *time.Weekday, matchDay, matchHour, matchMinute bool) error {
	if err := d.clearBits(regStatus, alarmFlagBit); err != nil {
		return err
	}

	// WADA = 0 selects weekday alarm, 1 selects date alarm.
	if err := d.setOrClearBits(regControl1, wadaBit, weekday == nil); err != nil {
		return err
	}

	if err := d.writeReg(regMinutesAlarm,
		alarmField(binToBCD(uint8(at.Minute())), matchMinute)); err != nil {
		return err
	}
	if err := d.writeReg(regHoursAlarm,
		alarmField(binToBCD(uint8(at.Hour())), matchHour)); err != nil {
		return err
	}

	day := uint8(at.Day())
	if weekday != nil {
		day = uint8(*weekday) % 7
	}
	if err := d.writeReg(regWeekdayDateAlarm,
		alarmField(binToBCD(day), matchDay)); err != nil {
		return err
	}

	return d.clearBits(regStatus, alarmFlagBit)
}

func alarmField(bcd uint8, match bool) uint8 {
	if match {
		return bcd
	}
	return alarmNoWatchFlag | bcd
}

// Alarm reads back the alarm configuration. The match flags are decoded from
// the top bit of each alarm register and the weekday/date interpretation of
// Day from the WADA bit.
func (d *Device) Alarm() (Alarm, error) {
	var a Alarm

	raw, err := d.readReg(regWeekdayDateAlarm)
	if err != nil {
		return a, err
	}
	a.MatchDay = raw&alarmNoWatchFlag == 0
	a.Day = bcdToBin(raw &^ alarmNoWatchFlag)

	raw, err = d.readReg(regHoursAlarm)
	if err != nil {
		return a, err
	}
	a.MatchHour = raw&alarmNoWatchFlag == 0
	a.Hour = bcdToBin(raw &^ alarmNoWatchFlag)

	raw, err = d.readReg(regMinutesAlarm)
	if err != nil {
		return a, err
	}
	a.MatchMinute = raw&alarmNoWatchFlag == 0
	a.Minute = bcdToBin(raw &^ alarmNoWatchFlag)

	wada, err := d.checkNonzero(regControl1, wadaBit)
	if err != nil {
		return a, err
	}
	if !wada {
		wd := time.Weekday(a.Day)
		a.Weekday = &wd
	}
	return a, nil
}

// CheckAndClearAlarm reports whether the alarm fired since the last check,
// clearing the flag if so.
func (d *Device) CheckAndClearAlarm() (bool, error) {
	val, err := d.checkAndClearBits(regStatus, alarmFlagBit)
	return val != 0, err
}

// ToggleAlarmInterrupt enables or disables the INT pin output when the alarm
// fires.
func (d *Device) ToggleAlarmInterrupt(enable bool) error {
	return d.setOrClearBits(regControl2, alarmIntEnableBit, enable)
}
