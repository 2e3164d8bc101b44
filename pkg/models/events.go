package models

import (
	"fmt"
	"sort"
	"strings"
)

// EventKind is an enum for the three event variants delivered to listeners
type EventKind int

const (
	// Status events report adapter state and device connection state
	Status EventKind = iota
	// Scanning events report discovery start/stop and detected devices
	Scanning
	// Data events carry decoded sensor values from a connected device
	Data
)

// EventKinds lists every kind in dispatch-table order
var EventKinds = []EventKind{Status, Scanning, Data}

func (k EventKind) String() string {
	if k < Status || k > Data {
		return "Unknown"
	}
	return []string{"Status", "Scanning", "Data"}[k]
}

// Event is the tagged union handed to listeners. Switch on the concrete type or on Kind().
type Event interface {
	Kind() EventKind
	String() string
}

// StatusEvent reports adapter status (ready, off, ...) or, when Address is set, device connection status
type StatusEvent struct {
	Timestamp int64
	Status    string
	Label     string
	Address   string
}

// ScanningEvent reports discovery progress
type ScanningEvent struct {
	Timestamp int64
	Action    string
	Session   string
	Name      string
	Address   string
	RSSI      int
	Type      string
}

// DataEvent carries values decoded from a peripheral characteristic
type DataEvent struct {
	Timestamp int64
	Name      string
	Address   string
	Service   string
	Type      string
	Values    map[string]interface{}
}

// Scanning actions
const (
	DiscoveryStarted = "discovery-started"
	DeviceDetected   = "device-detected"
	DiscoveryStopped = "discovery-stopped"
)

// Device connection statuses carried by StatusEvent
const (
	DeviceConnecting    = "connecting"
	DeviceConnected     = "connected"
	DeviceDisconnecting = "disconnecting"
	DeviceDisconnected  = "disconnected"
)

func (e *StatusEvent) Kind() EventKind   { return Status }
func (e *ScanningEvent) Kind() EventKind { return Scanning }
func (e *DataEvent) Kind() EventKind     { return Data }

func (e *StatusEvent) String() string {
	if e.Address != "" {
		return fmt.Sprintf("{address=%s status=%s}", e.Address, e.Status)
	}
	return fmt.Sprintf("{status=%s label=%q}", e.Status, e.Label)
}

func (e *ScanningEvent) String() string {
	if e.Action != DeviceDetected {
		return fmt.Sprintf("{action=%s session=%s}", e.Action, e.Session)
	}
	return fmt.Sprintf("{action=%s address=%s name=%q type=%s rssi=%d}", e.Action, e.Address, e.Name, e.Type, e.RSSI)
}

func (e *DataEvent) String() string {
	return fmt.Sprintf("{address=%s service=%s type=%s values=%s}", e.Address, e.Service, e.Type, formatValues(e.Values))
}

func formatValues(values map[string]interface{}) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", k, values[k]))
	}
	return "[" + strings.Join(parts, " ") + "]"
}
