// Copyright (c) 2026 ToeiRei
// Boardlock - classroom display board lock manager
// This source code is licensed under the MIT license found in the LICENSE file.

// package model holds the plain data types shared by the scanner, the
// dispatcher, the schedule engine and the persistence layer.
package model

import (
	"encoding/json"
	"fmt"
	"net/netip"
	"time"
)

// Device is a board believed to run an SSH server. Identity is the address.
type Device struct {
	Address  string
	LastSeen *time.Time
}

// NewDevice returns a Device for addr seen at the given time.
func NewDevice(addr string, seen time.Time) Device {
	return Device{Address: addr, LastSeen: &seen}
}

// String returns the dotted-quad address.
func (d Device) String() string {
	return d.Address
}

// MarshalJSON encodes a device as its bare address string, which is the
// persisted form of the device list.
func (d Device) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Address)
}

// UnmarshalJSON accepts the bare address string form.
func (d *Device) UnmarshalJSON(data []byte) error {
	var addr string
	if err := json.Unmarshal(data, &addr); err != nil {
		return fmt.Errorf("device must be an address string: %w", err)
	}
	d.Address = addr
	d.LastSeen = nil
	return nil
}

// DevicesFromAddresses builds devices without a last-seen time.
func DevicesFromAddresses(addrs []string) []Device {
	out := make([]Device, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, Device{Address: a})
	}
	return out
}

// Addresses returns the addresses of devices in order.
func Addresses(devices []Device) []string {
	out := make([]string, 0, len(devices))
	for _, d := range devices {
		out = append(out, d.Address)
	}
	return out
}

// ValidAddress reports whether s is a dotted-quad IPv4 address.
func ValidAddress(s string) bool {
	a, err := netip.ParseAddr(s)
	return err == nil && a.Is4()
}

// Credentials is the shared SSH username/password pair.
type Credentials struct {
	Username string
	Password string
}

// Settings is the operator-editable settings document.
type Settings struct {
	User    string `json:"user"`
	Pass    string `json:"pass"`
	IPRange string `json:"ip_range"`
}

// Default operator settings used when nothing is stored yet.
const (
	DefaultUser    = "etapadmin"
	DefaultPass    = "etap+pardus!"
	DefaultIPRange = "10.46.197.0/24"
)

// DefaultSettings returns the settings used on first start.
func DefaultSettings() Settings {
	return Settings{User: DefaultUser, Pass: DefaultPass, IPRange: DefaultIPRange}
}

// Credentials returns the SSH credentials carried by the settings.
func (s Settings) Credentials() Credentials {
	return Credentials{Username: s.User, Password: s.Pass}
}
