// Package types holds the board profile shapes shared by the config service,
// the firmware mains and the host CLI.
package types

// ---- Shared pieces ----

// FrameShape is the channel count of one IO board's frame.
type FrameShape struct {
	Hats    int `yaml:"hats"`
	Buttons int `yaml:"buttons"`
	Axes    int `yaml:"axes"`
}

// AxisRange is an inclusive raw input range.
type AxisRange struct {
	Min int32 `yaml:"min"`
	Max int32 `yaml:"max"`
}

// BusPins selects an I2C peripheral and its pins.
type BusPins struct {
	Controller  int    `yaml:"controller"` // 0 = I2C0, 1 = I2C1
	SDA         int    `yaml:"sda"`
	SCL         int    `yaml:"scl"`
	FrequencyHz uint32 `yaml:"frequency_hz"`
}

// ConsoleConfig is the serial link carrying level and calibration commands.
// With UART unset the console runs over the USB CDC serial port.
type ConsoleConfig struct {
	UART *int   `yaml:"uart,omitempty"`
	Baud uint32 `yaml:"baud"`
	TX   int    `yaml:"tx"`
	RX   int    `yaml:"rx"`
}

// LogConfig names the diagnostic level used during startup and afterwards
// (silent, fatal, error, warning, notice, trace, verbose).
type LogConfig struct {
	Startup string `yaml:"startup"`
	Run     string `yaml:"run"`
}

// LEDConfig drives the heartbeat. Flashes == 0 means "flash the board number".
type LEDConfig struct {
	Pin     int `yaml:"pin"`
	Flashes int `yaml:"flashes"`
	OnMs    int `yaml:"on_ms"`
	PauseMs int `yaml:"pause_ms"`
}

// ---- IO board ----

// HatPins lists the GPIOs of one hat switch. Any of them may be absent.
type HatPins struct {
	Up    *int `yaml:"up,omitempty"`
	Right *int `yaml:"right,omitempty"`
	Down  *int `yaml:"down,omitempty"`
	Left  *int `yaml:"left,omitempty"`
	Push  *int `yaml:"push,omitempty"`
}

type AxisInput struct {
	Pin   int       `yaml:"pin"`
	Range AxisRange `yaml:"range"`
}

// AddressPins configures the two active-low address straps.
type AddressPins struct {
	Base uint16 `yaml:"base"`
	LSB  int    `yaml:"lsb"`
	MSB  int    `yaml:"msb"`
}

type IOBoardProfile struct {
	Name    string        `yaml:"name"`
	Address AddressPins   `yaml:"address"`
	Bus     BusPins       `yaml:"bus"`
	Hats    []HatPins     `yaml:"hats"`
	Buttons []int         `yaml:"buttons"`
	Axes    []AxisInput   `yaml:"axes"`
	Console ConsoleConfig `yaml:"console"`
	LED     LEDConfig     `yaml:"led"`
	Log     LogConfig     `yaml:"log"`

	// AnaloguePowerPin, when set, is driven high before sampling starts.
	AnaloguePowerPin *int `yaml:"analogue_power_pin,omitempty"`
	CycleMs          int  `yaml:"cycle_ms"`
	FrameLogMs       int  `yaml:"frame_log_ms"`
}

// Shape is the frame shape implied by the wired channels.
func (p *IOBoardProfile) Shape() FrameShape {
	return FrameShape{Hats: len(p.Hats), Buttons: len(p.Buttons), Axes: len(p.Axes)}
}

// ---- USB board ----

// ReportButtons is the number of buttons in the host report.
const ReportButtons = 33

// AxisOutput names a host report axis.
type AxisOutput string

const (
	AxisX        AxisOutput = "x"
	AxisY        AxisOutput = "y"
	AxisZ        AxisOutput = "z"
	AxisThrottle AxisOutput = "throttle"
)

// AxisSource says where an output axis value comes from.
type AxisSource string

const (
	SourceFrame AxisSource = "frame"
	SourceAngle AxisSource = "angle"
)

// AxisMapping routes one decoded axis to a report axis. Board and Axis are
// ignored for SourceAngle.
type AxisMapping struct {
	Output AxisOutput `yaml:"output"`
	Source AxisSource `yaml:"source"`
	Board  int        `yaml:"board"`
	Axis   int        `yaml:"axis"`
}

// ButtonMapping routes one frame bit to a report button. When Hat is set
// ("up", "right", "down", "left") Byte must address a hat byte and the button
// is pressed iff the decoded direction engages that switch; Bit is unused.
type ButtonMapping struct {
	Output int    `yaml:"output"`
	Board  int    `yaml:"board"`
	Byte   int    `yaml:"byte"`
	Bit    int    `yaml:"bit"`
	Hat    string `yaml:"hat,omitempty"`
	Label  string `yaml:"label,omitempty"`
}

// SensorConfig describes the local AS5600 angle sensor.
type SensorConfig struct {
	Bus     BusPins `yaml:"bus"`
	Address uint16  `yaml:"address"`
	DirPin  *int    `yaml:"dir_pin,omitempty"`
}

type USBBoardProfile struct {
	Name             string          `yaml:"name"`
	Boards           int             `yaml:"boards"`
	BaseAddress      uint16          `yaml:"base_address"`
	Frame            FrameShape      `yaml:"frame"`
	Bus              BusPins         `yaml:"bus"`
	RequestTimeoutMs int             `yaml:"request_timeout_ms"`
	CycleMs          int             `yaml:"cycle_ms"`
	// ReportEveryCycle sends the HID report each cycle even when unchanged.
	ReportEveryCycle bool            `yaml:"report_every_cycle"`
	Sensor           SensorConfig    `yaml:"sensor"`
	Axes             []AxisMapping   `yaml:"axes"`
	Buttons          []ButtonMapping `yaml:"buttons"`
	Console          ConsoleConfig   `yaml:"console"`
	LED              LEDConfig       `yaml:"led"`
	Log              LogConfig       `yaml:"log"`
}

// BoardAddress is the bus address of IO board i (0-based).
func (p *USBBoardProfile) BoardAddress(i int) uint16 {
	return p.BaseAddress + uint16(i)
}
