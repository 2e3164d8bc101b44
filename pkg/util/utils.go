package util

import (
	"strings"

	"github.com/go-ble/ble"
)

// bluetoothBaseUUID is the tail shared by every 16/32-bit SIG assigned UUID
const bluetoothBaseUUID = "00001000800000805f9b34fb"

func AddrEqualAddr(a string, b string) bool {
	return strings.ToUpper(a) == strings.ToUpper(b)
}

// NormalizeUUID returns the 32 hex digit lowercase form of a UUID string.
// Short forms ("180d", "0x180D") are expanded with the bluetooth base UUID.
func NormalizeUUID(s string) string {
	s = strings.ToLower(strings.Replace(s, "-", "", -1))
	s = strings.TrimPrefix(s, "0x")
	switch len(s) {
	case 4:
		return "0000" + s + bluetoothBaseUUID
	case 8:
		return s + bluetoothBaseUUID
	}
	return s
}

// UuidToStr returns the normalized form of a ble.UUID
func UuidToStr(u ble.UUID) string {
	return NormalizeUUID(u.String())
}

func UuidEqualStr(u ble.UUID, s string) bool {
	return UuidToStr(u) == NormalizeUUID(s)
}
