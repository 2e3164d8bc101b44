package models

import (
	"encoding/json"
	"strings"
	"sync"
)

// Device is what the facade remembers about a detected peripheral
type Device struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Type    string `json:"type"`
	RSSI    int    `json:"rssi"`
}

// DeviceTable is a concurrency safe map of discovered devices keyed by address
type DeviceTable struct {
	data  map[string]Device
	mutex sync.RWMutex
}

// NewDeviceTable will return newly init struct
func NewDeviceTable() *DeviceTable {
	return &DeviceTable{data: map[string]Device{}}
}

// Set will insert or refresh a device
func (dt *DeviceTable) Set(d Device) {
	addr := strings.ToUpper(d.Address)
	dt.mutex.Lock()
	dt.data[addr] = d
	dt.mutex.Unlock()
}

// Get will get from map
func (dt *DeviceTable) Get(addr string) (Device, bool) {
	addr = strings.ToUpper(addr)
	dt.mutex.RLock()
	defer dt.mutex.RUnlock()
	d, ok := dt.data[addr]
	return d, ok
}

// GetAll will return a copy of all devices
func (dt *DeviceTable) GetAll() []Device {
	dt.mutex.RLock()
	defer dt.mutex.RUnlock()
	ret := make([]Device, 0, len(dt.data))
	for _, d := range dt.data {
		ret = append(ret, d)
	}
	return ret
}

// Len returns the number of devices
func (dt *DeviceTable) Len() int {
	dt.mutex.RLock()
	defer dt.mutex.RUnlock()
	return len(dt.data)
}

// String returns json string of data
func (dt *DeviceTable) String() string {
	dt.mutex.RLock()
	defer dt.mutex.RUnlock()
	b, _ := json.Marshal(dt.data)
	return string(b)
}
