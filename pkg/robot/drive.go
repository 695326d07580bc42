package robot

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
)

// bridge is the wiring of one H-bridge channel.
type bridge struct {
	enable gpio.PinOut
	in1    gpio.PinOut
	in2    gpio.PinOut
}

// Drive controls one dual H-bridge: an enable line per channel plus two
// direction inputs. Forward drives in1 high and in2 low; Reverse the opposite.
type Drive struct {
	channels map[Channel]bridge
}

// NewDrive creates a drive from its six output pins.
func NewDrive(enableA, inA1, inA2, enableB, inB1, inB2 gpio.PinOut) *Drive {
	return &Drive{
		channels: map[Channel]bridge{
			ChannelA: {enable: enableA, in1: inA1, in2: inA2},
			ChannelB: {enable: enableB, in1: inB1, in2: inB2},
		},
	}
}

func (d *Drive) bridge(ch Channel) (bridge, error) {
	b, ok := d.channels[ch]
	if !ok {
		return bridge{}, fmt.Errorf("unknown channel %q", ch)
	}
	return b, nil
}

// Enable powers the motor on channel ch.
func (d *Drive) Enable(ch Channel) error {
	b, err := d.bridge(ch)
	if err != nil {
		return err
	}
	return b.enable.Out(gpio.High)
}

// Disable cuts power to the motor on channel ch.
func (d *Drive) Disable(ch Channel) error {
	b, err := d.bridge(ch)
	if err != nil {
		return err
	}
	return b.enable.Out(gpio.Low)
}

// SetRotation sets the spin direction of channel ch.
func (d *Drive) SetRotation(ch Channel, r Rotation) error {
	b, err := d.bridge(ch)
	if err != nil {
		return err
	}
	in1, in2 := gpio.High, gpio.Low
	if r == Reverse {
		in1, in2 = gpio.Low, gpio.High
	}
	if err := b.in1.Out(in1); err != nil {
		return err
	}
	return b.in2.Out(in2)
}
