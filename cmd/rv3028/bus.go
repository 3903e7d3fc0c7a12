package main

import (
	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/host"
	"tinygo.org/x/drivers"
)

// periphBus adapts a periph.io i2c.Bus to the drivers.I2C interface the
// rv3028 package consumes.
type periphBus struct {
	bus i2c.BusCloser
}

var _ drivers.I2C = (*periphBus)(nil)

func openBus(name string) (*periphBus, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	b, err := i2creg.Open(name)
	if err != nil {
		return nil, err
	}
	return &periphBus{bus: b}, nil
}

func (p *periphBus) Close() error {
	return p.bus.Close()
}

func (p *periphBus) Tx(addr uint16, w, r []byte) error {
	return p.bus.Tx(addr, w, r)
}

func (p *periphBus) ReadRegister(addr uint8, reg uint8, buf []byte) error {
	return p.bus.Tx(uint16(addr), []byte{reg}, buf)
}

func (p *periphBus) WriteRegister(addr uint8, reg uint8, buf []byte) error {
	return p.bus.Tx(uint16(addr), append([]byte{reg}, buf...), nil)
}
