// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package command implements the bounded command channel between the
// engine's caller thread and its execution role.
//
// The channel carries immutable command buffers: byte ranges encoding
// driver operations as a single-byte tag followed by fixed little-endian
// operands (variable payloads are length-prefixed). The producer encodes
// through [Encoder] into channel-owned memory; [Queue.Flush] publishes
// the accumulated range as one buffer. The consumer blocks in
// [Queue.WaitForCommands], runs each buffer through [Executor.Execute]
// in submission order, and returns the space with [Queue.ReleaseBuffer].
//
// Capacity is bounded: the region may grow up to the configured maximum,
// after which the producer blocks until the consumer releases buffers.
// [Queue.HighWatermark] tracks peak usage for capacity tuning.
//
// The only cancellation primitive is [Queue.RequestExit]: after the
// pending buffers drain, WaitForCommands returns an empty result, which
// is the consumer loop's sole termination signal.
package command
