package wgpu

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/flexbatch"
)

// Device bring-up errors.
var (
	// ErrNoBackend is returned when no HAL backend is registered.
	ErrNoBackend = errors.New("wgpu: no GPU backend available")

	// ErrNoAdapter is returned when the instance exposes no adapters.
	ErrNoAdapter = errors.New("wgpu: no GPU adapters found")

	// ErrNilProvider is returned when FromProvider receives nil.
	ErrNilProvider = errors.New("wgpu: nil device provider")

	// ErrBadProvider is returned when a provider's handles are not
	// hal.Device / hal.Queue.
	ErrBadProvider = errors.New("wgpu: provider does not expose hal device and queue")
)

// Provider exposes an externally owned HAL device and queue, typically from
// a host application that already initialized the GPU. The handles are
// returned as any to avoid a hard dependency in host interfaces; they must
// type-assert to hal.Device and hal.Queue.
type Provider interface {
	HalDevice() any
	HalQueue() any
}

// Device wraps a HAL device and queue. It either owns the full
// instance/adapter/device chain (Open) or borrows the device from a host
// (FromProvider); Close destroys only what it owns.
type Device struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	// owned reports whether Close should destroy the device.
	owned bool

	adapterName string
}

// Open creates a self-owned device: it picks a registered HAL backend,
// enumerates adapters preferring discrete then integrated GPUs, and opens a
// logical device with default limits.
func Open() (*Device, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, ErrNoBackend
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("wgpu: open device: %w", err)
	}

	flexbatch.Logger().Info("wgpu: device opened",
		slog.String("adapter", selected.Info.Name))

	return &Device{
		instance:    instance,
		device:      openDev.Device,
		queue:       openDev.Queue,
		owned:       true,
		adapterName: selected.Info.Name,
	}, nil
}

// FromProvider wraps a device and queue owned by a host application. Close
// on the returned Device will not destroy them.
func FromProvider(p Provider) (*Device, error) {
	if p == nil {
		return nil, ErrNilProvider
	}
	dev, okDev := p.HalDevice().(hal.Device)
	queue, okQueue := p.HalQueue().(hal.Queue)
	if !okDev || !okQueue || dev == nil || queue == nil {
		return nil, ErrBadProvider
	}
	return &Device{
		device: dev,
		queue:  queue,
	}, nil
}

// Hal returns the underlying HAL device.
func (d *Device) Hal() hal.Device { return d.device }

// Queue returns the underlying HAL queue.
func (d *Device) Queue() hal.Queue { return d.queue }

// AdapterName returns the selected adapter's name, or "" when the device
// was borrowed from a provider.
func (d *Device) AdapterName() string { return d.adapterName }

// Close destroys the device and instance if this Device owns them. Safe to
// call multiple times.
func (d *Device) Close() {
	if !d.owned {
		d.device = nil
		d.queue = nil
		return
	}
	if d.device != nil {
		d.device.Destroy()
		d.device = nil
		d.queue = nil
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
}
