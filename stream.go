// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package engine

import (
	"fmt"

	"github.com/gogpu/engine/driver"
)

// Stream is an external image stream (camera or video frames) that
// can feed a texture. Frame data is pushed with [Stream.SetFrame].
type Stream struct {
	engine *Engine
	handle driver.StreamID
	width  uint32
	height uint32
}

// StreamBuilder accumulates stream configuration.
type StreamBuilder struct {
	width  uint32
	height uint32
}

// NewStreamBuilder returns an empty builder.
func NewStreamBuilder() *StreamBuilder { return &StreamBuilder{} }

// Width sets the frame width in pixels.
func (b *StreamBuilder) Width(w uint32) *StreamBuilder { b.width = w; return b }

// Height sets the frame height in pixels.
func (b *StreamBuilder) Height(h uint32) *StreamBuilder { b.height = h; return b }

// Build allocates the backend stream and registers it with the
// engine.
func (b *StreamBuilder) Build(e *Engine) (*Stream, error) {
	e.checkValid()
	if b.width == 0 || b.height == 0 {
		return nil, fmt.Errorf("%w: zero stream extent %dx%d", ErrInvalidArgument, b.width, b.height)
	}
	id := driver.StreamID(e.nextResourceID())
	e.enc.CreateStream(id, b.width, b.height)
	s := &Stream{engine: e, handle: id, width: b.width, height: b.height}
	e.streams.insert(s)
	return s, nil
}

// Width reports the frame width in pixels.
func (s *Stream) Width() uint32 { return s.width }

// Height reports the frame height in pixels.
func (s *Stream) Height() uint32 { return s.height }

func (s *Stream) kindName() string { return "stream" }

func (s *Stream) terminate(e *Engine) {
	e.enc.DestroyStream(s.handle)
	s.handle = 0
}
