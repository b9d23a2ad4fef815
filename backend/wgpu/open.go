// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/ggame/backend"
	"github.com/gogpu/ggame/gpucore"
	"github.com/gogpu/ggame/internal/logging"
)

// ErrNoAdapter is returned when the HAL exposes no adapter.
var ErrNoAdapter = errors.New("wgpu: no GPU adapters found")

// init registers the wgpu and noop backends on package import. A host
// provider in the config takes precedence over opening a device.
func init() {
	backend.Register(backend.BackendWGPU, func(cfg backend.Config) (gpucore.Device, error) {
		if cfg.Provider != nil {
			return NewFromProvider(cfg.Provider)
		}
		return Open(gputypes.BackendVulkan)
	})
	backend.Register(backend.BackendNoop, func(backend.Config) (gpucore.Device, error) {
		return OpenNoop()
	})
}

// Open creates an instance of the given HAL backend, picks a discrete or
// integrated GPU when one exists and opens it. The returned Device owns the
// HAL device and instance.
func Open(kind gputypes.Backend, opts ...Option) (*Device, error) {
	api, ok := hal.GetBackend(kind)
	if !ok {
		return nil, fmt.Errorf("%w: hal backend %v", backend.ErrBackendNotAvailable, kind)
	}
	instance, err := api.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create instance: %w", err)
	}
	return openInstance(instance, opts...)
}

// OpenNoop opens a device on the no-op HAL. Every call succeeds and nothing
// is rendered.
func OpenNoop(opts ...Option) (*Device, error) {
	instance, err := noop.API{}.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("wgpu: create noop instance: %w", err)
	}
	return openInstance(instance, append([]Option{WithName(backend.BackendNoop)}, opts...)...)
}

func openInstance(instance hal.Instance, opts ...Option) (*Device, error) {
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

	release := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	d, err := New(openDev.Device, openDev.Queue, append(opts, withRelease(release))...)
	if err != nil {
		release()
		return nil, err
	}
	logging.Logger().Info("wgpu: device opened", "adapter", selected.Info.Name, "backend", d.name)
	return d, nil
}

// NewFromProvider shares the GPU device of a host application. The provider
// must expose HalDevice() any and HalQueue() any returning hal.Device and
// hal.Queue, as gogpu's window provider does. The host keeps ownership.
func NewFromProvider(provider any, opts ...Option) (*Device, error) {
	hp, ok := provider.(interface {
		HalDevice() any
		HalQueue() any
	})
	if !ok {
		return nil, fmt.Errorf("wgpu: provider does not expose HAL device")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok {
		return nil, fmt.Errorf("wgpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok {
		return nil, fmt.Errorf("wgpu: provider HalQueue is not hal.Queue")
	}
	return New(device, queue, opts...)
}
