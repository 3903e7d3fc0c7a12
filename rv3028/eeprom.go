package rv3028

// Registers 0x30..0x37 are RAM mirrors of EEPROM-backed configuration. Writes
// land in the mirror and take effect immediately but only survive power loss
// after an update-all command copies the mirrors into EEPROM.
//
// While write protection is enabled and the volatile user password does not
// match the EEPROM reference, writes to the protected registers (user RAM and
// the mirrors themselves, not the clock registers) are silently dropped by
// the device. There is no error on the bus; detecting the condition always
// requires reading back.

// eepromWaitReady polls the EEBUSY flag in a tight loop until the previous
// EEPROM operation finishes. EEPROM commands complete in well under a
// millisecond, so there is no backoff.
func (d *Device) eepromWaitReady() error {
	for {
		busy, err := d.checkNonzero(regStatus, eeBusyBit)
		if err != nil {
			return err
		}
		if !busy {
			return nil
		}
	}
}

// eepromCommand issues one EEPROM command with automatic refresh disabled
// around it, per the command protocol: arm with 0x00, then the command byte.
func (d *Device) eepromCommand(cmd uint8) error {
	if err := d.setBits(regControl1, eerdBit); err != nil {
		return err
	}
	if err := d.eepromWaitReady(); err != nil {
		return err
	}
	if err := d.writeReg(regEECommand, eeCmdFirst); err != nil {
		return err
	}
	if err := d.writeReg(regEECommand, cmd); err != nil {
		return err
	}
	if err := d.eepromWaitReady(); err != nil {
		return err
	}
	return d.clearBits(regControl1, eerdBit)
}

// eepromUpdateAll commits every RAM mirror register to EEPROM.
func (d *Device) eepromUpdateAll() error {
	return d.eepromCommand(eeCmdUpdate)
}

// EEPROMRefreshAll reloads every RAM mirror register from EEPROM, discarding
// uncommitted mirror writes.
func (d *Device) EEPROMRefreshAll() error {
	return d.eepromCommand(eeCmdRefresh)
}

// EnterUserPassword writes the 4-byte candidate password to the volatile
// password registers. The device compares it against the EEPROM reference on
// every protected write; nothing is reported back, a mismatch just leaves
// protected registers read-only.
func (d *Device) EnterUserPassword(pw [4]byte) error {
	return d.writeRegs(regPassword0, pw[0], pw[1], pw[2], pw[3])
}

// SetWriteProtectPassword stores a new reference password and enables or
// disables protection, then commits the mirrors to EEPROM. The reference is
// written before the enable flag on purpose: enabling first could lock the
// device against a stale reference.
//
// If protection is currently active the caller must have entered the old
// password first, otherwise these writes are themselves silently dropped.
func (d *Device) SetWriteProtectPassword(pw [4]byte, enable bool) error {
	if err := d.writeRegs(regEEPassword0, pw[0], pw[1], pw[2], pw[3]); err != nil {
		return err
	}
	val := uint8(0)
	if enable {
		val = 0xFF
	}
	if err := d.writeReg(regEEPWEnable, val); err != nil {
		return err
	}
	return d.eepromUpdateAll()
}

// ToggleWriteProtect enables or disables write protection and returns the
// read-back state, which is the only trustworthy one: a disable attempted
// while locked with a wrong password is silently ignored by the device and
// the read-back will still report enabled.
func (d *Device) ToggleWriteProtect(enable bool) (bool, error) {
	val := uint8(0)
	if enable {
		val = 0xFF
	}
	if err := d.writeReg(regEEPWEnable, val); err != nil {
		return false, err
	}
	got, err := d.readReg(regEEPWEnable)
	return got != 0, err
}

// CheckWriteProtectEnabled reports whether write protection is enabled.
func (d *Device) CheckWriteProtectEnabled() (bool, error) {
	return d.checkNonzero(regEEPWEnable, 0xFF)
}

// UserRAM reads the two free user RAM registers.
func (d *Device) UserRAM() ([2]byte, error) {
	var buf [2]byte
	err := d.readRegs(regUserRAM1, buf[:])
	return buf, err
}

// SetUserRAM writes the two user RAM registers. They are in the protected
// set: while locked the write is a silent no-op, so verify with UserRAM.
func (d *Device) SetUserRAM(vals [2]byte) error {
	return d.writeRegs(regUserRAM1, vals[0], vals[1])
}

// ToggleTrickleCharge enables or disables trickle charging of the backup
// supply through the given current-limiting resistance. Disabling resets the
// resistance to 3 kΩ, the factory default. Returns the read-back enabled
// state.
func (d *Device) ToggleTrickleCharge(enable bool, limit TrickleChargeCurrentLimiter) (bool, error) {
	// Stop charging before touching the resistance selection.
	if err := d.clearBits(regEEBackup, trickleChargeEnableBit); err != nil {
		return false, err
	}
	if err := d.clearBits(regEEBackup, trickleChargeResistanceMask); err != nil {
		return false, err
	}
	if enable {
		if limit != 0 {
			if err := d.setBits(regEEBackup, uint8(limit)); err != nil {
				return false, err
			}
		}
		if err := d.setBits(regEEBackup, trickleChargeEnableBit); err != nil {
			return false, err
		}
	}
	return d.checkNonzero(regEEBackup, trickleChargeEnableBit)
}

// ToggleBackupSwitchover enables or disables automatic switchover to the
// backup power supply. Enabling selects level switching mode, the mode the
// vendor recommends for most applications. Returns the read-back enabled
// state.
func (d *Device) ToggleBackupSwitchover(enable bool) (bool, error) {
	if err := d.clearBits(regEEBackup, backupSwitchoverMask); err != nil {
		return false, err
	}
	if enable {
		if err := d.setBits(regEEBackup, backupSwitchoverLevel); err != nil {
			return false, err
		}
	}
	return d.checkNonzero(regEEBackup, backupSwitchoverMask)
}

// EEPROMBackupValue returns the raw RAM mirror of the EEPROM backup
// configuration register.
func (d *Device) EEPROMBackupValue() (uint8, error) {
	return d.readReg(regEEBackup)
}

// ConfigureClockOut selects the CLKOUT pin frequency and enables or disables
// the output. Returns the read-back enabled state.
func (d *Device) ConfigureClockOut(freq ClockOutFreq, enable bool) (bool, error) {
	if err := d.clearBits(regEEClkout, clockOutEnableBit|clockOutFreqMask); err != nil {
		return false, err
	}
	if freq != 0 {
		if err := d.setBits(regEEClkout, uint8(freq)); err != nil {
			return false, err
		}
	}
	if enable {
		if err := d.setBits(regEEClkout, clockOutEnableBit); err != nil {
			return false, err
		}
	}
	return d.checkNonzero(regEEClkout, clockOutEnableBit)
}
