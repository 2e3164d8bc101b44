package internal

import (
	"github.com/go-ble/ble"
)

// DummyAdv is a canned advertisement
type DummyAdv struct {
	Address      ble.Addr
	Rssi         int
	Name         string
	ServiceUUIDs []string
}

type DummyAddr struct {
	Address string
}

func (addr DummyAddr) String() string { return addr.Address }

func (a DummyAdv) LocalName() string              { return a.Name }
func (a DummyAdv) ManufacturerData() []byte       { return nil }
func (a DummyAdv) ServiceData() []ble.ServiceData { return nil }
func (a DummyAdv) Services() []ble.UUID {
	ret := []ble.UUID{}
	for _, s := range a.ServiceUUIDs {
		ret = append(ret, ble.MustParse(s))
	}
	return ret
}
func (a DummyAdv) OverflowService() []ble.UUID  { return nil }
func (a DummyAdv) TxPowerLevel() int            { return 0 }
func (a DummyAdv) Connectable() bool            { return true }
func (a DummyAdv) SolicitedService() []ble.UUID { return nil }
func (a DummyAdv) RSSI() int                    { return a.Rssi }
func (a DummyAdv) Addr() ble.Addr               { return a.Address }

// GetTestServices builds a single service holding the given characteristics
func GetTestServices(serviceUUID string, charUUIDs []string) []*ble.Service {
	chars := []*ble.Characteristic{}
	for _, uuid := range charUUIDs {
		chars = append(chars, ble.NewCharacteristic(ble.MustParse(uuid)))
	}
	return []*ble.Service{{UUID: ble.MustParse(serviceUUID), Characteristics: chars}}
}
