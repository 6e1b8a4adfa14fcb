package models

// DeviceKind tells which backend list a device came from.
type DeviceKind string

const (
	KindPhysical DeviceKind = "physical"
	KindInfrared DeviceKind = "infrared"
)

// Device is a read-only catalog entry.
type Device struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Kind    DeviceKind `json:"kind"`
	TypeTag string     `json:"type_tag"` // e.g. "Air Conditioner", "Light", "Hub Mini"
}

// DeviceStatus is the live state reported by a physical device. Fields the
// device does not report stay zero.
type DeviceStatus struct {
	ID          string  `json:"id"`
	Power       string  `json:"power,omitempty"` // "on" or "off"
	Temperature float64 `json:"temperature"`
	Humidity    int     `json:"humidity"`
}

// BackendDevice is a raw entry of one of the backend lists.
type BackendDevice struct {
	ID      string
	Name    string
	TypeTag string
}

// BackendCatalog is what the device backend returns on a fetch.
type BackendCatalog struct {
	Physical        []BackendDevice
	InfraredRemotes []BackendDevice
}
