package rv3028

const (
	// Address is the fixed 7-bit I2C address of the RV-3028-C7 (0xA4 >> 1).
	Address = 0x52

	// Clock registers, all BCD. The weekday counter is a plain 3-bit counter
	// (0..6) whose meaning is assigned by the user.
	regSeconds = 0x00
	regMinutes = 0x01
	regHours   = 0x02
	regWeekday = 0x03
	regDate    = 0x04 // day of month 01..31, leap years handled 2000..2099
	regMonth   = 0x05
	regYear    = 0x06 // 00..99 for 2000..2099

	// Alarm registers: BCD value plus the AE_x enable bit in the top bit.
	regMinutesAlarm     = 0x07
	regHoursAlarm       = 0x08
	regWeekdayDateAlarm = 0x09 // weekday or date depending on WADA

	// Periodic countdown timer: 12-bit preset split over two registers,
	// plus a live down-counter readback pair.
	regTimerValue0  = 0x0A // preset bits 7:0
	regTimerValue1  = 0x0B // preset bits 11:8
	regTimerStatus0 = 0x0C // current countdown bits 7:0
	regTimerStatus1 = 0x0D // current countdown bits 11:8

	regStatus   = 0x0E
	regControl1 = 0x0F
	regControl2 = 0x10

	regEventControl = 0x13

	// Time stamp function (event logging): event count then a BCD capture of
	// seconds/minutes/hours/date/month/year.
	regTimestampCount = 0x14

	// Unix time counter, 4 bytes little endian.
	regUnixTime0 = 0x1B

	// User RAM, free for application use but write-protectable.
	regUserRAM1 = 0x1F
	regUserRAM2 = 0x20

	// Volatile user password entry, compared by the device against the
	// EEPROM reference whenever write protection is enabled.
	regPassword0 = 0x21

	regEECommand = 0x27

	// EEPROM-backed configuration mirrors. Writes land in RAM; an update-all
	// command commits them to EEPROM.
	regEEPWEnable  = 0x30 // 0x00 = protection off, 0xFF = on
	regEEPassword0 = 0x31 // reference password, 4 bytes
	regEEClkout    = 0x35
	regEEBackup    = 0x37 // trickle charge + backup switchover config
)

// Status register bits.
const (
	porFlagBit       = 1 << 0 // PORF, power-on reset occurred
	eventFlagBit     = 1 << 1 // EVF
	alarmFlagBit     = 1 << 2 // AF
	timerFlagBit     = 1 << 3 // TF, countdown expired
	backupSwitchFlag = 1 << 4 // BSF
	eeBusyBit        = 1 << 7 // EEBUSY
)

// Control 1 register bits.
const (
	timerFreqMask  = 0b11   // TD, countdown timer clock selection
	timerEnableBit = 1 << 2 // TE
	eerdBit        = 1 << 3 // EERD, disables automatic EEPROM refresh
	uselBit        = 1 << 4 // USEL
	wadaBit        = 1 << 5 // WADA, weekday (0) vs date (1) alarm
	timerRepeatBit = 1 << 7 // TRPT, repeat vs single countdown
)

// Control 2 register bits.
const (
	eventIntEnableBit  = 1 << 2 // EIE
	alarmIntEnableBit  = 1 << 3 // AIE
	timerIntEnableBit  = 1 << 4 // TIE
	updateIntEnableBit = 1 << 5 // UIE
	clockIntEnableBit  = 1 << 6 // CLKIE
	timestampEnableBit = 1 << 7 // TSE
)

// Event control register bits.
const (
	timestampSourceBit    = 1 << 0 // TSS
	timestampOverwriteBit = 1 << 1 // TSOW
	timestampResetBit     = 1 << 2 // TSR, reads back as 0
	eventHighLowBit       = 1 << 6 // EHL, edge polarity on EVI
)

// EEPROM backup register (0x37) bits.
const (
	trickleChargeResistanceMask = 0b11   // TCR
	backupSwitchoverMask        = 0b1100 // BSM
	backupSwitchoverLevel       = 0b1100 // BSM = 11, level switching mode
	trickleChargeEnableBit      = 1 << 5 // TCE
)

// EEPROM clkout register (0x35) bits.
const (
	clockOutFreqMask  = 0b111
	clockOutEnableBit = 1 << 7 // CLKOE
)

// EEPROM command register values. A command is armed by writing 0x00 first.
const (
	eeCmdFirst   = 0x00
	eeCmdUpdate  = 0x11 // copy RAM mirror -> EEPROM
	eeCmdRefresh = 0x12 // copy EEPROM -> RAM mirror
)

// Alarm registers use the top bit as "don't match this field".
const alarmNoWatchFlag = 1 << 7

// TimerClockFreq selects the countdown timer tick source. The values are the
// TD field encoding and double as the period selector: 4096 Hz, 64 Hz, 1 Hz
// or one tick per minute.
type TimerClockFreq uint8

const (
	Hertz4096     TimerClockFreq = 0b00
	Hertz64       TimerClockFreq = 0b01
	Hertz1        TimerClockFreq = 0b10
	HertzSixtieth TimerClockFreq = 0b11
)

// EventSource selects what the time stamp logger captures.
type EventSource uint8

const (
	// EventSourceEVI logs edges on the external EVI pin (default).
	EventSourceEVI EventSource = 0
	// EventSourceBackup logs automatic backup power switchovers.
	EventSourceBackup EventSource = 1
)

// TrickleChargeCurrentLimiter is the series resistance limiting the backup
// supply charge current. Higher resistance means less current.
type TrickleChargeCurrentLimiter uint8

const (
	Ohms3k  TrickleChargeCurrentLimiter = 0b00
	Ohms5k  TrickleChargeCurrentLimiter = 0b01
	Ohms9k  TrickleChargeCurrentLimiter = 0b10
	Ohms15k TrickleChargeCurrentLimiter = 0b11
)

// ClockOutFreq is the FD field of the clkout configuration: the frequency
// driven on the CLKOUT pin when output is enabled.
type ClockOutFreq uint8

const (
	ClockOut32768Hz  ClockOutFreq = 0b000
	ClockOut8192Hz   ClockOutFreq = 0b001
	ClockOut1024Hz   ClockOutFreq = 0b010
	ClockOut64Hz     ClockOutFreq = 0b011
	ClockOut32Hz     ClockOutFreq = 0b100
	ClockOut1Hz      ClockOutFreq = 0b101
	ClockOutPeriodic ClockOutFreq = 0b110 // periodic countdown timer interrupt
	ClockOutLow      ClockOutFreq = 0b111
)
