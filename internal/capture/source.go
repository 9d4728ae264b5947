package capture

import (
	"encoding/binary"
	"strings"

	"github.com/gen2brain/malgo"

	"lookout/internal/config"
	"lookout/internal/services"
)

// Source delivers a continuous stream of mono PCM samples. Start is
// non-blocking: samples arrive on the source's own delivery goroutine until
// Stop returns.
type Source interface {
	Start(onSamples func(samples []int16)) error
	Stop() error
}

// MicSource captures from the default (or configured) microphone via
// miniaudio.
type MicSource struct {
	cfg     config.Capture
	context *malgo.AllocatedContext
	device  *malgo.Device
}

// NewMicSource builds a microphone source from capture configuration.
func NewMicSource(cfg config.Capture) *MicSource {
	return &MicSource{cfg: cfg}
}

// Start opens the capture device and begins sample delivery. Access
// failures surface as ErrPermissionDenied: they are fatal to capture start.
func (m *MicSource) Start(onSamples func(samples []int16)) error {
	allocated, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return services.Wrap(services.ErrPermissionDenied, "capture", "init audio context", "audio backend unavailable", err)
	}
	m.context = allocated

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = 1
	deviceConfig.SampleRate = uint32(m.cfg.SampleRate)
	deviceConfig.Alsa.NoMMap = 1

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, frameCount uint32) {
			if len(input) < 2 {
				return
			}
			samples := make([]int16, len(input)/2)
			for i := range samples {
				samples[i] = int16(binary.LittleEndian.Uint16(input[i*2:]))
			}
			onSamples(samples)
		},
	}
	device, err := malgo.InitDevice(allocated.Context, deviceConfig, callbacks)
	if err != nil {
		m.teardownContext()
		return services.Wrap(services.ErrPermissionDenied, "capture", "open microphone", describeDeviceError(err), err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		m.teardownContext()
		return services.Wrap(services.ErrPermissionDenied, "capture", "start microphone", "microphone refused to start", err)
	}
	m.device = device
	return nil
}

// Stop halts delivery and releases the device.
func (m *MicSource) Stop() error {
	if m.device != nil {
		m.device.Uninit()
		m.device = nil
	}
	m.teardownContext()
	return nil
}

func (m *MicSource) teardownContext() {
	if m.context != nil {
		_ = m.context.Uninit()
		m.context.Free()
		m.context = nil
	}
}

func describeDeviceError(err error) string {
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "access") {
		return "microphone access denied"
	}
	return "no usable capture device"
}
