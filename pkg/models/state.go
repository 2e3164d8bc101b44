package models

// AdapterState is an enum for the host bluetooth adapter condition
type AdapterState int

const (
	// Unknown indicates the adapter could not be queried
	Unknown AdapterState = iota
	// Ready indicates the adapter is powered on
	Ready
	// Off indicates the adapter exists but is powered off
	Off
	// Unauthorised indicates the process may not use the adapter
	Unauthorised
	// Unsupported indicates there is no BLE adapter on this host
	Unsupported
)

func (s AdapterState) String() string {
	if s < Unknown || s > Unsupported {
		return "unknown"
	}
	return []string{"unknown", "ready", "off", "unauthorised", "unsupported"}[s]
}

// Label is the human readable description sent along with status events
func (s AdapterState) Label() string {
	switch s {
	case Ready:
		return "Bluetooth is powered on and ready"
	case Off:
		return "Bluetooth is powered off"
	case Unauthorised:
		return "Bluetooth is unauthorized"
	case Unsupported:
		return "Bluetooth in unsupported state"
	}
	return "Mysterious status"
}
