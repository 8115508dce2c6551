// Package encode implements the correlation and flush engine around an
// external core video encoder. The core encoder buffers and reorders frames
// internally, so packets come back out of submission order; this package
// feeds it pictures, re-attaches per-frame metadata to the packet carrying
// the same PTS, and drives the end-of-stream drain so no buffered frame is
// lost on shutdown.
package encode

import (
	"fmt"

	"github.com/user/encbridge/pkg/ports"
)

// flushState tracks end-of-stream progress. It only ever advances.
type flushState int

const (
	flushNotReached flushState = iota
	flushSent
	flushReceived
)

// Adapter wraps one core encoder instance. All state is touched from a
// single calling goroutine per instance; there is no internal locking, and
// separate instances share nothing.
type Adapter struct {
	core ports.CoreEncoder
	cfg  ports.EncoderConfig
	log  ports.Logger

	// The single reusable input descriptor. The core encoder consumes it
	// synchronously inside Submit, so one is enough.
	in ports.InputBuffer

	cache *metaCache
	flush flushState

	streamHeader []byte
	closed       bool
}

// New opens a core encoder instance: handle init, configuration, optional
// out-of-band stream header, and the one-time input descriptor acquisition.
// Configuration validation failures surface as ErrInvalidParameter before
// any frame is submitted.
func New(core ports.CoreEncoder, cfg ports.EncoderConfig, logger ports.Logger) (*Adapter, error) {
	log := logger.WithComponent("encoder")

	cfg, err := normalizeConfig(cfg, log)
	if err != nil {
		return nil, err
	}

	if err := mapStatus(core.Init()); err != nil {
		return nil, fmt.Errorf("init encoder handle: %w", err)
	}

	if err := mapStatus(core.Configure(cfg)); err != nil {
		core.Shutdown()
		return nil, fmt.Errorf("configure encoder: %w", err)
	}

	a := &Adapter{
		core:  core,
		cfg:   cfg,
		log:   log,
		cache: newMetaCache(cfg.LookAheadDepth),
	}

	if cfg.GlobalHeader {
		hdr, st := core.StreamHeader()
		if err := mapStatus(st); err != nil {
			core.Shutdown()
			return nil, fmt.Errorf("build stream header: %w", err)
		}
		a.streamHeader = make([]byte, len(hdr))
		copy(a.streamHeader, hdr)
	}

	a.acquireInput()
	return a, nil
}

// normalizeConfig validates the profile/format combination and applies the
// forced-profile rules before anything reaches the core encoder.
func normalizeConfig(cfg ports.EncoderConfig, log ports.Logger) (ports.EncoderConfig, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return cfg, fmt.Errorf("%w: %dx%d picture size", ErrInvalidParameter, cfg.Width, cfg.Height)
	}

	if cfg.Profile == ports.ProfileMainStillPicture {
		return cfg, fmt.Errorf("%w: Main Still Picture profile not supported", ErrInvalidParameter)
	}

	if cfg.PixelFormat.ChromaFormat() != ports.Chroma420 && cfg.Profile != ports.ProfileRext {
		log.Warn("Rext profile forced for 4:2:2 and 4:4:4 input")
		cfg.Profile = ports.ProfileRext
	}

	if cfg.Profile == ports.ProfileMain && cfg.PixelFormat.BitDepth() > 8 {
		log.Warn("Main10 profile forced for 10-bit input")
		cfg.Profile = ports.ProfileMain10
	}

	if cfg.FrameRateNum <= 0 || cfg.FrameRateDen <= 0 {
		cfg.FrameRateNum = 25
		cfg.FrameRateDen = 1
	}

	log.Debug("Configured %d-bit %s input", cfg.PixelFormat.BitDepth(), cfg.PixelFormat)
	return cfg, nil
}

// acquireInput sets up the single input descriptor for a fresh stream.
func (a *Adapter) acquireInput() {
	a.in = ports.InputBuffer{}
}

// releaseInput drops the descriptor's borrowed plane views at close time.
func (a *Adapter) releaseInput() {
	a.in = ports.InputBuffer{}
}

// StreamHeader returns the out-of-band parameter sets collected at open
// time, or nil when global headers were not requested.
func (a *Adapter) StreamHeader() []byte {
	return a.streamHeader
}

// Config returns the normalized configuration in effect.
func (a *Adapter) Config() ports.EncoderConfig {
	return a.cfg
}

// SubmitFrame packs one picture into the input descriptor and hands it to
// the core encoder. If the frame carries metadata and no entry with the same
// PTS is already pending, the blob is copied into the cache for later
// correlation. On a submission error the cache entry is kept: the encoder
// may still have accepted the picture internally, so there is no rollback.
//
// Submitting a real frame after SubmitEOS is a caller contract violation and
// is not defended against here.
func (a *Adapter) SubmitFrame(frame *ports.VideoFrame) error {
	a.packInput(frame)

	st := a.core.Submit(&a.in)
	a.log.Debug("Sent PTS %d", frame.PTS)

	if len(frame.Metadata) > 0 {
		if evicted := a.cache.add(frame.PTS, frame.Metadata); evicted != nil {
			a.log.Warn("Abandoned metadata for PTS %d: no matching packet within look-ahead window", evicted.pts)
		}
	}

	if err := mapStatus(st); err != nil {
		return fmt.Errorf("submit picture pts=%d: %w", frame.PTS, err)
	}
	return nil
}

// packInput loads the descriptor with borrowed plane views. The core encoder
// takes strides in samples, so byte strides are halved for 16-bit storage,
// and the filled length scales with the chroma layout.
func (a *Adapter) packInput(frame *ports.VideoFrame) {
	shift := 0
	if a.cfg.PixelFormat.BitDepth() > 8 {
		shift = 1
	}

	a.in.Luma = frame.Luma
	a.in.Cb = frame.Cb
	a.in.Cr = frame.Cr
	a.in.LumaStride = frame.LumaStride >> shift
	a.in.CbStride = frame.CbStride >> shift
	a.in.CrStride = frame.CrStride >> shift
	a.in.FilledLen = a.cfg.PixelFormat.FrameSize(a.cfg.Width, a.cfg.Height)
	a.in.PTS = frame.PTS
	a.in.EOS = false
}

// SubmitEOS sends the end-of-stream sentinel: a zero-length descriptor with
// the EOS flag set. The first call advances the flush state to sent; later
// calls are no-ops.
func (a *Adapter) SubmitEOS() error {
	if a.flush != flushNotReached {
		return nil
	}
	a.flush = flushSent

	a.in = ports.InputBuffer{EOS: true}

	st := a.core.Submit(&a.in)
	a.log.Debug("Sent EOS")

	if err := mapStatus(st); err != nil {
		return fmt.Errorf("submit EOS: %w", err)
	}
	return nil
}

// FetchPacket polls the core encoder for the next completed packet. A nil
// packet with a nil error means nothing is ready yet (or, once the EOS
// packet has been observed, that the stream is fully drained); the caller
// retries later. The transient empty-queue status never surfaces as an
// error.
//
// Packets come back in the encoder's emission order, not submission order;
// metadata correlation is by PTS value against the cache.
func (a *Adapter) FetchPacket() (*ports.Packet, error) {
	if a.flush == flushReceived {
		return nil, nil
	}

	out, st := a.core.PollOutput(a.flush != flushNotReached)
	if st == ports.StatusEmptyQueue {
		a.log.Debug("Received none")
		return nil, nil
	}
	if err := mapStatus(st); err != nil {
		return nil, fmt.Errorf("poll output: %w", err)
	}

	pkt := &ports.Packet{
		Data: make([]byte, len(out.Data)),
		PTS:  out.PTS,
		DTS:  out.DTS,
	}
	copy(pkt.Data, out.Data)

	switch out.PictureType {
	case ports.PictureIDR, ports.PictureI:
		pkt.Keyframe = true
	case ports.PictureNonRef:
		pkt.Disposable = true
	}

	if payload := a.cache.take(out.PTS); len(payload) > 0 {
		pkt.Metadata = payload
	}

	// Everything needed from the descriptor is copied out above; the EOS
	// flag included, since no field may be read after release.
	eos := out.EOS

	if err := mapStatus(a.core.ReleaseOutput(out)); err != nil {
		a.log.Warn("Failed to release output buffer: %s", err)
	}

	a.log.Debug("Received PTS %d packet", pkt.PTS)

	if eos {
		a.flush = flushReceived
		a.log.Debug("Received EOS")
	}

	return pkt, nil
}

// Drained reports whether the EOS packet has been observed, after which
// FetchPacket returns empty without touching the core encoder.
func (a *Adapter) Drained() bool {
	return a.flush == flushReceived
}

// PendingMetadata returns the number of metadata entries still awaiting a
// matching packet.
func (a *Adapter) PendingMetadata() int {
	return a.cache.len()
}

// Close shuts the core encoder down and releases the adapter's own state,
// abandoning any unmatched metadata entries. Closing is permitted at any
// flush state; a core teardown failure is logged and returned but does not
// prevent the release of adapter state.
func (a *Adapter) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true

	var err error
	if st := a.core.Shutdown(); st != ports.StatusOK {
		err = fmt.Errorf("shutdown encoder: %w", mapStatus(st))
		a.log.Error("Encoder teardown failed: %s", err)
	}

	if n := a.cache.len(); n > 0 {
		a.log.Warn("Abandoning %d unmatched metadata entries at teardown", n)
	}
	a.cache.clear()
	a.releaseInput()

	return err
}
