package rv3028

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

func TestDateAlarmRoundTrip(t *testing.T) {
	c := qt.New(t)
	bus, sim := newSimBus()
	dev := New(bus)

	// a stale fired flag must not survive reconfiguration
	sim.regs[regStatus] |= alarmFlagBit

	at := time.Date(2024, time.July, 23, 6, 45, 0, 0, time.UTC)
	c.Assert(dev.SetAlarm(at, nil, true, true, true), qt.IsNil)

	// date alarm selects WADA=1 and all three fields armed
	c.Assert(sim.regs[regControl1]&wadaBit, qt.Equals, uint8(wadaBit))
	c.Assert(sim.regs[regMinutesAlarm], qt.Equals, uint8(0x45))
	c.Assert(sim.regs[regHoursAlarm], qt.Equals, uint8(0x06))
	c.Assert(sim.regs[regWeekdayDateAlarm], qt.Equals, uint8(0x23))
	c.Assert(sim.regs[regStatus]&alarmFlagBit, qt.Equals, uint8(0))

	a, err := dev.Alarm()
	c.Assert(err, qt.IsNil)
	c.Assert(a.Weekday, qt.IsNil)
	c.Assert(a.Day, qt.Equals, uint8(23))
	c.Assert(a.Hour, qt.Equals, uint8(6))
	c.Assert(a.Minute, qt.Equals, uint8(45))
	c.Assert(a.MatchDay, qt.Equals, true)
	c.Assert(a.MatchHour, qt.Equals, true)
	c.Assert(a.MatchMinute, qt.Equals, true)

	fired, err := dev.CheckAndClearAlarm()
	c.Assert(err, qt.IsNil)
	c.Assert(fired, qt.Equals, false)
}

func TestWeekdayAlarmRoundTrip(t *testing.T) {
	c := qt.New(t)
	bus, sim := newSimBus()
	dev := New(bus)

	wd := time.Wednesday
	at := time.Date(2024, time.July, 23, 14, 30, 0, 0, time.UTC)
	c.Assert(dev.SetAlarm(at, &wd, true, false, true), qt.IsNil)

	c.Assert(sim.regs[regControl1]&wadaBit, qt.Equals, uint8(0))
	c.Assert(sim.regs[regWeekdayDateAlarm], qt.Equals, binToBCD(uint8(time.Wednesday)))
	// an unmatched field still stores its value under the no-watch bit
	c.Assert(sim.regs[regHoursAlarm], qt.Equals, uint8(alarmNoWatchFlag|0x14))
	c.Assert(sim.regs[regMinutesAlarm], qt.Equals, uint8(0x30))

	a, err := dev.Alarm()
	c.Assert(err, qt.IsNil)
	c.Assert(a.Weekday, qt.Not(qt.IsNil))
	c.Assert(*a.Weekday, qt.Equals, time.Wednesday)
	c.Assert(a.Hour, qt.Equals, uint8(14))
	c.Assert(a.Minute, qt.Equals, uint8(30))
	c.Assert(a.MatchDay, qt.Equals, true)
	c.Assert(a.MatchHour, qt.Equals, false)
	c.Assert(a.MatchMinute, qt.Equals, true)
}

func TestAlarmMatchFlagCombinations(t *testing.T) {
	c := qt.New(t)
	bus, _ := newSimBus()
	dev := New(bus)

	at := time.Date(2024, time.January, 5, 8, 15, 0, 0, time.UTC)
	for _, matchDay := range []bool{false, true} {
		for _, matchHour := range []bool{false, true} {
			for _, matchMinute := range []bool{false, true} {
				c.Assert(dev.SetAlarm(at, nil, matchDay, matchHour, matchMinute), qt.IsNil)
				a, err := dev.Alarm()
				c.Assert(err, qt.IsNil)
				c.Assert(a.MatchDay, qt.Equals, matchDay)
				c.Assert(a.MatchHour, qt.Equals, matchHour)
				c.Assert(a.MatchMinute, qt.Equals, matchMinute)
				c.Assert(a.Day, qt.Equals, uint8(5))
				c.Assert(a.Hour, qt.Equals, uint8(8))
				c.Assert(a.Minute, qt.Equals, uint8(15))
			}
		}
	}
}

func TestAlarmFiredCheckAndClear(t *testing.T) {
	c := qt.New(t)
	bus, sim := newSimBus()
	dev := New(bus)

	sim.regs[regStatus] |= alarmFlagBit
	fired, err := dev.CheckAndClearAlarm()
	c.Assert(err, qt.IsNil)
	c.Assert(fired, qt.Equals, true)

	fired, err = dev.CheckAndClearAlarm()
	c.Assert(err, qt.IsNil)
	c.Assert(fired, qt.Equals, false)
}

func TestToggleAlarmInterrupt(t *testing.T) {
	c := qt.New(t)
	bus, sim := newSimBus()
	dev := New(bus)

	c.Assert(dev.ToggleAlarmInterrupt(true), qt.IsNil)
	c.Assert(sim.regs[regControl2]&alarmIntEnableBit, qt.Equals, uint8(alarmIntEnableBit))
	c.Assert(dev.ToggleAlarmInterrupt(false), qt.IsNil)
	c.Assert(sim.regs[regControl2]&alarmIntEnableBit, qt.Equals, uint8(0))
}
