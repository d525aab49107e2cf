package h264decoder

import "errors"

var (
	// ErrInit wraps every construction failure. The object must not be used.
	ErrInit = errors.New("h264decoder: initialization failed")

	// ErrDecoderNotFound is returned when the engine has no H.264 decoder.
	ErrDecoderNotFound = errors.New("h264decoder: H.264 decoder not found")

	// ErrContextAlloc is returned when the codec context cannot be allocated.
	ErrContextAlloc = errors.New("h264decoder: codec context allocation failed")

	// ErrContextOpen is returned when the codec context cannot be opened.
	ErrContextOpen = errors.New("h264decoder: codec context open failed")

	// ErrParserInit is returned when the bitstream parser cannot be created.
	ErrParserInit = errors.New("h264decoder: parser initialization failed")

	// ErrPacketAlloc is returned when the packet cannot be allocated.
	ErrPacketAlloc = errors.New("h264decoder: packet allocation failed")

	// ErrFrameAlloc is returned when a frame cannot be allocated.
	ErrFrameAlloc = errors.New("h264decoder: frame allocation failed")

	// ErrDecodeFailed is returned internally when the engine rejects a packet.
	// Parse reports such packets as an absent frame.
	ErrDecodeFailed = errors.New("h264decoder: decode failed")

	// ErrConversion is returned when the scaler cannot be built or run.
	ErrConversion = errors.New("h264decoder: conversion failed")

	// ErrBufferTooSmall is returned when the destination is shorter than PredictSize.
	ErrBufferTooSmall = errors.New("h264decoder: destination buffer too small")

	// ErrUnsupportedFrame is returned for nil frames, frames from another
	// implementation, and frames with an unknown geometry or pixel format.
	ErrUnsupportedFrame = errors.New("h264decoder: unsupported frame")

	// ErrClosed is returned when a closed converter is used.
	ErrClosed = errors.New("h264decoder: closed")
)
