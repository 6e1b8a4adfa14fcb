package models

// AirconMode values follow the SwitchBot setAll numbering.
type AirconMode int

const (
	ModeAuto AirconMode = iota + 1
	ModeCool
	ModeDry
	ModeFan
	ModeHeat
)

func (m AirconMode) String() string {
	switch m {
	case ModeAuto:
		return "Auto"
	case ModeCool:
		return "Cool"
	case ModeDry:
		return "Dry"
	case ModeFan:
		return "Fan"
	case ModeHeat:
		return "Heat"
	default:
		return "Unknown"
	}
}

// FanSpeed values follow the SwitchBot setAll numbering.
type FanSpeed int

const (
	FanAuto FanSpeed = iota + 1
	FanLow
	FanMedium
	FanHigh
)

func (f FanSpeed) String() string {
	switch f {
	case FanAuto:
		return "Auto"
	case FanLow:
		return "Low"
	case FanMedium:
		return "Medium"
	case FanHigh:
		return "High"
	default:
		return "Unknown"
	}
}

// PowerState is the literal sent in the last setAll field.
type PowerState string

const (
	PowerOn  PowerState = "on"
	PowerOff PowerState = "off"
)

// AirconSetting is the in-memory HVAC setting of one IR air conditioner.
type AirconSetting struct {
	Temperature int        `json:"temperature"`
	Mode        AirconMode `json:"mode"`
	FanSpeed    FanSpeed   `json:"fan_speed"`
	Power       PowerState `json:"power"`
}

// AirconCommandPrefix marks a composite setAll command. Everything after the
// prefix is the comma-joined parameter list.
const AirconCommandPrefix = "setAll:"
