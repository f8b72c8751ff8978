package audio

import (
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/gen2brain/malgo"

	"launchpad/internal/bridge"
)

type DeviceType int

const (
	DeviceTypeInput DeviceType = iota
	DeviceTypeOutput
)

type Device struct {
	ID        string
	Name      string
	Type      DeviceType
	IsDefault bool
}

// ListDevices enumerates capture and playback devices. IDs are hex-encoded
// malgo device ids.
func ListDevices() ([]Device, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to init audio context: %w", err)
	}
	defer func() {
		_ = ctx.Uninit()
		ctx.Free()
	}()

	var devices []Device
	for _, kind := range []struct {
		malgo malgo.DeviceType
		typ   DeviceType
	}{
		{malgo.Capture, DeviceTypeInput},
		{malgo.Playback, DeviceTypeOutput},
	} {
		infos, err := ctx.Devices(kind.malgo)
		if err != nil {
			return nil, fmt.Errorf("failed to list audio devices: %w", err)
		}
		for _, info := range infos {
			d := Device{
				ID:        hex.EncodeToString(info.ID[:]),
				Name:      info.Name(),
				Type:      kind.typ,
				IsDefault: info.IsDefault != 0,
			}
			slog.Debug("found audio device", "name", d.Name, "type", d.Type)
			devices = append(devices, d)
		}
	}
	return devices, nil
}

// Microphones lists capture devices in the bridge's device shape.
func Microphones() ([]bridge.Device, error) {
	all, err := ListDevices()
	if err != nil {
		return nil, err
	}
	return filterDevices(all, DeviceTypeInput), nil
}

func filterDevices(all []Device, typ DeviceType) []bridge.Device {
	result := []bridge.Device{}
	for _, d := range all {
		if d.Type == typ {
			result = append(result, bridge.Device{ID: d.ID, Name: d.Name})
		}
	}
	return result
}

func ParseDeviceID(idHex string) (malgo.DeviceID, error) {
	raw, err := hex.DecodeString(idHex)
	if err != nil {
		return malgo.DeviceID{}, err
	}
	var id malgo.DeviceID
	if len(raw) > len(id) {
		return malgo.DeviceID{}, fmt.Errorf("device id too long: %d bytes", len(raw))
	}
	copy(id[:], raw)
	return id, nil
}
