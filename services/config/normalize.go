package config

import "collective-go/types"

// Defaults applied by Normalize* to zero-valued fields.
const (
	DefaultAxisMax          = 1023
	DefaultFrequencyHz      = 400_000
	DefaultBaud             = 115_200
	DefaultRequestTimeoutMs = 100
	DefaultCycleMs          = 1
	DefaultFrameLogMs       = 300
	DefaultLEDPin           = 25
	DefaultPauseMs          = 2000
	DefaultSensorAddress    = 0x36
)

// NormalizeIOBoard fills defaults. It MUST be called only after ValidateIOBoard.
func NormalizeIOBoard(p *types.IOBoardProfile) {
	if p == nil {
		return
	}
	for i := range p.Axes {
		normalizeRange(&p.Axes[i].Range)
	}
	normalizeBus(&p.Bus)
	normalizeCommon(&p.Console, &p.LED, &p.Log, 50)
	if p.CycleMs <= 0 {
		p.CycleMs = DefaultCycleMs
	}
	if p.FrameLogMs <= 0 {
		p.FrameLogMs = DefaultFrameLogMs
	}
}

// NormalizeUSBBoard fills defaults. It MUST be called only after ValidateUSBBoard.
func NormalizeUSBBoard(p *types.USBBoardProfile) {
	if p == nil {
		return
	}
	normalizeBus(&p.Bus)
	normalizeBus(&p.Sensor.Bus)
	if p.Sensor.Address == 0 {
		p.Sensor.Address = DefaultSensorAddress
	}
	if p.RequestTimeoutMs <= 0 {
		p.RequestTimeoutMs = DefaultRequestTimeoutMs
	}
	if p.CycleMs <= 0 {
		p.CycleMs = DefaultCycleMs
	}
	normalizeCommon(&p.Console, &p.LED, &p.Log, 100)
}

func normalizeRange(r *types.AxisRange) {
	if r.Min == 0 && r.Max == 0 {
		r.Max = DefaultAxisMax
	}
}

func normalizeBus(b *types.BusPins) {
	if b.FrequencyHz == 0 {
		b.FrequencyHz = DefaultFrequencyHz
	}
}

func normalizeCommon(c *types.ConsoleConfig, led *types.LEDConfig, lg *types.LogConfig, onMs int) {
	if c.Baud == 0 {
		c.Baud = DefaultBaud
	}
	if led.Pin == 0 {
		led.Pin = DefaultLEDPin
	}
	if led.OnMs <= 0 {
		led.OnMs = onMs
	}
	if led.PauseMs <= 0 {
		led.PauseMs = DefaultPauseMs
	}
	if lg.Startup == "" {
		lg.Startup = "silent"
	}
	if lg.Run == "" {
		lg.Run = "silent"
	}
}
