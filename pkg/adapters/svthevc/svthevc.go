//go:build cgo && svthevc

// Package svthevc binds the SVT-HEVC encoder library to the core encoder
// port. The library is linked only when built with the svthevc tag.
package svthevc

/*
#cgo CFLAGS: -I/usr/include/svt-hevc -I/usr/local/include/svt-hevc
#cgo LDFLAGS: -lSvtHevcEnc

#include <stdlib.h>
#include <string.h>
#include "EbApi.h"

static EB_H265_ENC_INPUT* go_svt_alloc_input() {
    return (EB_H265_ENC_INPUT*)calloc(1, sizeof(EB_H265_ENC_INPUT));
}

static EB_BUFFERHEADERTYPE* go_svt_alloc_bufhdr() {
    return (EB_BUFFERHEADERTYPE*)calloc(1, sizeof(EB_BUFFERHEADERTYPE));
}
*/
import "C"

import (
	"unsafe"

	"github.com/user/encbridge/pkg/ports"
)

// Encoder drives a single SVT-HEVC encoder instance.
type Encoder struct {
	log ports.Logger

	handle *C.EB_COMPONENTTYPE
	params C.EB_H265_ENC_CONFIGURATION

	in     *C.EB_H265_ENC_INPUT
	inHdr  *C.EB_BUFFERHEADERTYPE
	ybuf   unsafe.Pointer
	cbbuf  unsafe.Pointer
	crbuf  unsafe.Pointer
	ysize  C.size_t
	cbsize C.size_t
	crsize C.size_t

	// pending maps returned output buffers to the library buffers they
	// view, so ReleaseOutput can hand the right one back.
	pending map[*ports.OutputBuffer]*C.EB_BUFFERHEADERTYPE
}

// New creates an unopened SVT-HEVC encoder.
func New(log ports.Logger) (ports.CoreEncoder, error) {
	return &Encoder{
		log:     log.WithComponent("svthevc"),
		pending: make(map[*ports.OutputBuffer]*C.EB_BUFFERHEADERTYPE),
	}, nil
}

func mapError(err C.EB_ERRORTYPE) ports.CoreStatus {
	switch err {
	case C.EB_ErrorNone:
		return ports.StatusOK
	case C.EB_ErrorInsufficientResources:
		return ports.StatusInsufficientResources
	case C.EB_ErrorUndefined:
		return ports.StatusUndefined
	case C.EB_ErrorInvalidComponent:
		return ports.StatusInvalidComponent
	case C.EB_ErrorBadParameter:
		return ports.StatusBadParameter
	case C.EB_ErrorDestroyThreadFailed:
		return ports.StatusDestroyThreadFailed
	case C.EB_ErrorSemaphoreUnresponsive:
		return ports.StatusSemaphoreUnresponsive
	case C.EB_ErrorDestroySemaphoreFailed:
		return ports.StatusDestroySemaphoreFailed
	case C.EB_ErrorCreateMutexFailed:
		return ports.StatusCreateMutexFailed
	case C.EB_ErrorMutexUnresponsive:
		return ports.StatusMutexUnresponsive
	case C.EB_ErrorDestroyMutexFailed:
		return ports.StatusDestroyMutexFailed
	case C.EB_NoErrorEmptyQueue:
		return ports.StatusEmptyQueue
	default:
		return ports.StatusUndefined
	}
}

// Init creates the component handle. The handle fills params with the
// library defaults, which Configure then overrides.
func (e *Encoder) Init() ports.CoreStatus {
	return mapError(C.EbInitHandle(&e.handle, nil, unsafe.Pointer(&e.params)))
}

// Configure pushes the configuration into the library and starts the
// encoder threads.
func (e *Encoder) Configure(cfg ports.EncoderConfig) ports.CoreStatus {
	e.params.sourceWidth = C.uint32_t(cfg.Width)
	e.params.sourceHeight = C.uint32_t(cfg.Height)
	e.params.encoderBitDepth = C.uint8_t(cfg.PixelFormat.BitDepth())
	switch cfg.PixelFormat.ChromaFormat() {
	case ports.Chroma422:
		e.params.encoderColorFormat = C.EB_YUV422
	case ports.Chroma444:
		e.params.encoderColorFormat = C.EB_YUV444
	default:
		e.params.encoderColorFormat = C.EB_YUV420
	}
	e.params.profile = C.uint32_t(cfg.Profile)
	e.params.tier = C.uint32_t(cfg.Tier)
	e.params.level = C.uint32_t(cfg.Level)
	e.params.encMode = C.uint8_t(cfg.Preset)
	e.params.hierarchicalLevels = C.uint32_t(cfg.HierarchicalLevels)
	e.params.frameRateNumerator = C.int32_t(cfg.FrameRateNum)
	e.params.frameRateDenominator = C.int32_t(cfg.FrameRateDen)
	e.params.rateControlMode = C.uint32_t(cfg.RateControl)
	e.params.targetBitRate = C.uint32_t(cfg.TargetBitrate)
	e.params.qp = C.uint32_t(cfg.QP)
	if cfg.RateControl != ports.RCConstantQP {
		e.params.minQpAllowed = C.uint32_t(cfg.MinQP)
		e.params.maxQpAllowed = C.uint32_t(cfg.MaxQP)
	}
	if cfg.GOPSize > 0 {
		e.params.intraPeriodLength = C.int32_t(cfg.GOPSize - 1)
	}
	if cfg.LookAheadDepth >= 0 {
		e.params.lookAheadDistance = C.uint32_t(cfg.LookAheadDepth)
	}
	if cfg.SceneChangeDetection {
		e.params.sceneChangeDetection = 1
	} else {
		e.params.sceneChangeDetection = 0
	}
	e.params.tune = C.uint8_t(cfg.Tune)
	if cfg.GlobalHeader {
		e.params.codeVpsSpsPps = 0
	} else {
		e.params.codeVpsSpsPps = 1
	}
	e.params.codeEosNal = 1

	if st := mapError(C.EbH265EncSetParameter(e.handle, &e.params)); st != ports.StatusOK {
		return st
	}
	if st := mapError(C.EbInitEncoder(e.handle)); st != ports.StatusOK {
		return st
	}

	return e.allocInput(cfg)
}

// allocInput sets up the reusable input picture and its plane buffers.
func (e *Encoder) allocInput(cfg ports.EncoderConfig) ports.CoreStatus {
	frameSize := cfg.PixelFormat.FrameSize(cfg.Width, cfg.Height)
	lumaSize := C.size_t(cfg.Width * cfg.Height)
	if cfg.PixelFormat.BitDepth() > 8 {
		lumaSize *= 2
	}
	chromaSize := (C.size_t(frameSize) - lumaSize) / 2

	e.in = C.go_svt_alloc_input()
	e.inHdr = C.go_svt_alloc_bufhdr()
	e.ybuf = C.malloc(lumaSize)
	e.cbbuf = C.malloc(chromaSize)
	e.crbuf = C.malloc(chromaSize)
	if e.in == nil || e.inHdr == nil || e.ybuf == nil || e.cbbuf == nil || e.crbuf == nil {
		return ports.StatusInsufficientResources
	}
	e.ysize = lumaSize
	e.cbsize = chromaSize
	e.crsize = chromaSize

	e.in.luma = (*C.uint8_t)(e.ybuf)
	e.in.cb = (*C.uint8_t)(e.cbbuf)
	e.in.cr = (*C.uint8_t)(e.crbuf)
	e.inHdr.pBuffer = (*C.uint8_t)(unsafe.Pointer(e.in))
	e.inHdr.nSize = C.uint32_t(unsafe.Sizeof(C.EB_BUFFERHEADERTYPE{}))
	return ports.StatusOK
}

// StreamHeader returns the out-of-band VPS/SPS/PPS header.
func (e *Encoder) StreamHeader() ([]byte, ports.CoreStatus) {
	var hdr *C.EB_BUFFERHEADERTYPE
	if st := mapError(C.EbH265EncStreamHeader(e.handle, &hdr)); st != ports.StatusOK {
		return nil, st
	}
	data := C.GoBytes(unsafe.Pointer(hdr.pBuffer), C.int(hdr.nFilledLen))
	return data, ports.StatusOK
}

// Submit hands one picture, or the EOS marker, to the encoder. Plane data
// is copied into library-visible buffers before the call.
func (e *Encoder) Submit(in *ports.InputBuffer) ports.CoreStatus {
	if in.EOS && in.Luma == nil {
		eos := C.go_svt_alloc_bufhdr()
		if eos == nil {
			return ports.StatusInsufficientResources
		}
		defer C.free(unsafe.Pointer(eos))
		eos.nFlags = C.EB_BUFFERFLAG_EOS
		eos.pBuffer = nil
		return mapError(C.EbH265EncSendPicture(e.handle, eos))
	}

	copyPlane(e.ybuf, in.Luma, e.ysize)
	copyPlane(e.cbbuf, in.Cb, e.cbsize)
	copyPlane(e.crbuf, in.Cr, e.crsize)
	e.in.yStride = C.uint32_t(in.LumaStride)
	e.in.cbStride = C.uint32_t(in.CbStride)
	e.in.crStride = C.uint32_t(in.CrStride)

	e.inHdr.nFilledLen = C.uint32_t(in.FilledLen)
	e.inHdr.pts = C.int64_t(in.PTS)
	e.inHdr.nFlags = 0
	e.inHdr.sliceType = C.EB_INVALID_PICTURE

	return mapError(C.EbH265EncSendPicture(e.handle, e.inHdr))
}

func copyPlane(dst unsafe.Pointer, src []byte, max C.size_t) {
	if len(src) == 0 {
		return
	}
	n := C.size_t(len(src))
	if n > max {
		n = max
	}
	C.memcpy(dst, unsafe.Pointer(&src[0]), n)
}

// PollOutput fetches one finished packet without blocking unless the
// stream is draining after EOS.
func (e *Encoder) PollOutput(eosSent bool) (*ports.OutputBuffer, ports.CoreStatus) {
	var hdr *C.EB_BUFFERHEADERTYPE
	done := C.uint8_t(0)
	if eosSent {
		done = 1
	}
	if st := mapError(C.EbH265GetPacket(e.handle, &hdr, done)); st != ports.StatusOK {
		return nil, st
	}

	out := &ports.OutputBuffer{
		Data: unsafe.Slice((*byte)(unsafe.Pointer(hdr.pBuffer)), int(hdr.nFilledLen)),
		PTS:  int64(hdr.pts),
		DTS:  int64(hdr.dts),
		EOS:  hdr.nFlags&C.EB_BUFFERFLAG_EOS != 0,
	}
	switch hdr.sliceType {
	case C.EB_IDR_PICTURE:
		out.PictureType = ports.PictureIDR
	case C.EB_I_PICTURE:
		out.PictureType = ports.PictureI
	case C.EB_P_PICTURE:
		out.PictureType = ports.PictureP
	case C.EB_B_PICTURE:
		out.PictureType = ports.PictureB
	case C.EB_NON_REF_PICTURE:
		out.PictureType = ports.PictureNonRef
	default:
		out.PictureType = ports.PictureInvalid
	}

	e.pending[out] = hdr
	return out, ports.StatusOK
}

// ReleaseOutput returns a packet buffer to the library. The buffer's Data
// slice must not be touched afterwards.
func (e *Encoder) ReleaseOutput(out *ports.OutputBuffer) ports.CoreStatus {
	hdr, ok := e.pending[out]
	if !ok {
		return ports.StatusBadParameter
	}
	delete(e.pending, out)
	C.EbH265ReleaseOutBuffer(&hdr)
	return ports.StatusOK
}

// Shutdown stops the encoder threads and frees everything this instance
// allocated.
func (e *Encoder) Shutdown() ports.CoreStatus {
	st := ports.StatusOK
	if e.handle != nil {
		if s := mapError(C.EbDeinitEncoder(e.handle)); s != ports.StatusOK {
			st = s
		}
		if s := mapError(C.EbDeinitHandle(e.handle)); s != ports.StatusOK && st == ports.StatusOK {
			st = s
		}
		e.handle = nil
	}
	for _, p := range []unsafe.Pointer{e.ybuf, e.cbbuf, e.crbuf, unsafe.Pointer(e.in), unsafe.Pointer(e.inHdr)} {
		if p != nil {
			C.free(p)
		}
	}
	e.ybuf, e.cbbuf, e.crbuf = nil, nil, nil
	e.in, e.inHdr = nil, nil
	return st
}

var _ ports.CoreEncoder = (*Encoder)(nil)
