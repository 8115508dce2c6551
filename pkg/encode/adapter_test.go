package encode

import (
	"errors"
	"fmt"
	"testing"

	"github.com/user/encbridge/pkg/adapters/logger"
	"github.com/user/encbridge/pkg/metadata"
	"github.com/user/encbridge/pkg/mocks"
	"github.com/user/encbridge/pkg/ports"
)

func testConfig() ports.EncoderConfig {
	return ports.EncoderConfig{
		Width:          64,
		Height:         48,
		PixelFormat:    ports.PixFmtYUV420,
		FrameRateNum:   25,
		FrameRateDen:   1,
		Profile:        ports.ProfileMain,
		QP:             32,
		LookAheadDepth: -1,
	}
}

func testFrame(pts int64, meta []byte) *ports.VideoFrame {
	return &ports.VideoFrame{
		Luma:       make([]byte, 64*48),
		Cb:         make([]byte, 32*24),
		Cr:         make([]byte, 32*24),
		LumaStride: 64,
		CbStride:   32,
		CrStride:   32,
		PTS:        pts,
		Metadata:   meta,
	}
}

func TestMetadataCorrelationUnderReordering(t *testing.T) {
	core := &mocks.CoreEncoder{Reverse: true}

	a, err := New(core, testConfig(), logger.NewNoop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer a.Close()

	// Frames 0..9 each carry a unique metadata blob; the mock emits the
	// packets in fully reversed order.
	for i := int64(0); i < 10; i++ {
		blob := []byte(fmt.Sprintf("meta-%d", i))
		if err := a.SubmitFrame(testFrame(i, blob)); err != nil {
			t.Fatalf("submit pts=%d: %v", i, err)
		}
	}
	if err := a.SubmitEOS(); err != nil {
		t.Fatalf("submit EOS: %v", err)
	}

	var pkts []*ports.Packet
	for !a.Drained() {
		pkt, err := a.FetchPacket()
		if err != nil {
			t.Fatalf("fetch: %v", err)
		}
		if pkt == nil {
			t.Fatal("expected a packet before the EOS packet is observed")
		}
		pkts = append(pkts, pkt)
	}

	if len(pkts) != 10 {
		t.Fatalf("expected 10 packets, got %d", len(pkts))
	}
	for i, pkt := range pkts {
		wantPTS := int64(9 - i)
		if pkt.PTS != wantPTS {
			t.Errorf("packet %d: expected PTS %d, got %d", i, wantPTS, pkt.PTS)
		}
		want := fmt.Sprintf("meta-%d", pkt.PTS)
		if string(pkt.Metadata) != want {
			t.Errorf("packet PTS %d: expected metadata %q, got %q", pkt.PTS, want, pkt.Metadata)
		}
	}

	if n := a.PendingMetadata(); n != 0 {
		t.Errorf("expected empty metadata cache, %d entries left", n)
	}
	if len(core.Released) != 10 {
		t.Errorf("expected 10 released output buffers, got %d", len(core.Released))
	}
}

func TestDuplicatePTSKeepsFirstPayload(t *testing.T) {
	core := &mocks.CoreEncoder{}

	a, err := New(core, testConfig(), logger.NewNoop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer a.Close()

	if err := a.SubmitFrame(testFrame(100, []byte("first"))); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := a.SubmitFrame(testFrame(100, []byte("second"))); err != nil {
		t.Fatalf("submit duplicate: %v", err)
	}

	if n := a.PendingMetadata(); n != 1 {
		t.Fatalf("expected 1 pending entry after duplicate submit, got %d", n)
	}

	pkt, err := a.FetchPacket()
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if pkt == nil {
		t.Fatal("expected a packet")
	}
	if string(pkt.Metadata) != "first" {
		t.Errorf("expected first-submitted payload, got %q", pkt.Metadata)
	}
}

func TestEOSDrainProtocol(t *testing.T) {
	core := &mocks.CoreEncoder{LookAhead: 5}

	a, err := New(core, testConfig(), logger.NewNoop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer a.Close()

	for _, pts := range []int64{100, 200, 300} {
		if err := a.SubmitFrame(testFrame(pts, nil)); err != nil {
			t.Fatalf("submit pts=%d: %v", pts, err)
		}
	}
	if err := a.SubmitEOS(); err != nil {
		t.Fatalf("submit EOS: %v", err)
	}

	var got []int64
	for i := 0; i < 3; i++ {
		pkt, err := a.FetchPacket()
		if err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
		if pkt == nil {
			t.Fatalf("fetch %d: expected a packet", i)
		}
		got = append(got, pkt.PTS)
	}
	if got[0] != 100 || got[1] != 200 || got[2] != 300 {
		t.Errorf("unexpected packet order: %v", got)
	}

	if !a.Drained() {
		t.Fatal("expected flush state received after the EOS packet")
	}

	polls := len(core.PollHints)
	pkt, err := a.FetchPacket()
	if err != nil {
		t.Fatalf("fetch after drain: %v", err)
	}
	if pkt != nil {
		t.Error("expected empty result after drain")
	}
	if len(core.PollHints) != polls {
		t.Error("expected no core poll once drained")
	}

	if n := a.PendingMetadata(); n != 0 {
		t.Errorf("expected no pending metadata, got %d", n)
	}
}

func TestEmptyPollMutatesNothing(t *testing.T) {
	core := &mocks.CoreEncoder{LookAhead: 5}

	a, err := New(core, testConfig(), logger.NewNoop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer a.Close()

	if err := a.SubmitFrame(testFrame(0, []byte("m"))); err != nil {
		t.Fatalf("submit: %v", err)
	}

	pkt, err := a.FetchPacket()
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if pkt != nil {
		t.Fatal("expected empty result while the encoder holds the frame")
	}
	if a.Drained() {
		t.Error("empty poll must not advance the flush state")
	}
	if n := a.PendingMetadata(); n != 1 {
		t.Errorf("empty poll must not touch the metadata cache, got %d entries", n)
	}
	if len(core.PollHints) != 1 || core.PollHints[0] {
		t.Errorf("expected one poll with eosSent=false, got %v", core.PollHints)
	}
}

func TestSubmitEOSIdempotent(t *testing.T) {
	core := &mocks.CoreEncoder{}

	a, err := New(core, testConfig(), logger.NewNoop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer a.Close()

	if err := a.SubmitEOS(); err != nil {
		t.Fatalf("first EOS: %v", err)
	}
	if err := a.SubmitEOS(); err != nil {
		t.Fatalf("second EOS: %v", err)
	}

	eosCount := 0
	for _, call := range core.SubmitCalls {
		if call.EOS {
			eosCount++
		}
	}
	if eosCount != 1 {
		t.Errorf("expected exactly one EOS submission, got %d", eosCount)
	}

	// Polls after EOS carry the sent hint.
	if _, err := a.FetchPacket(); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(core.PollHints) != 1 || !core.PollHints[0] {
		t.Errorf("expected poll with eosSent=true, got %v", core.PollHints)
	}
}

func TestPictureTypeMapping(t *testing.T) {
	cases := []struct {
		pic        ports.PictureType
		keyframe   bool
		disposable bool
	}{
		{ports.PictureIDR, true, false},
		{ports.PictureI, true, false},
		{ports.PictureP, false, false},
		{ports.PictureB, false, false},
		{ports.PictureNonRef, false, true},
	}

	for _, tc := range cases {
		core := &mocks.CoreEncoder{
			PollOutputFunc: func(eosSent bool) (*ports.OutputBuffer, ports.CoreStatus) {
				return &ports.OutputBuffer{Data: []byte("x"), PTS: 1, DTS: 1, PictureType: tc.pic}, ports.StatusOK
			},
		}

		a, err := New(core, testConfig(), logger.NewNoop())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		pkt, err := a.FetchPacket()
		if err != nil {
			t.Fatalf("fetch: %v", err)
		}
		if pkt.Keyframe != tc.keyframe || pkt.Disposable != tc.disposable {
			t.Errorf("picture type %d: got keyframe=%v disposable=%v", tc.pic, pkt.Keyframe, pkt.Disposable)
		}
		a.Close()
	}
}

func TestHighBitDepthPacking(t *testing.T) {
	core := &mocks.CoreEncoder{}
	cfg := testConfig()
	cfg.PixelFormat = ports.PixFmtYUV420P10
	cfg.Profile = ports.ProfileMain10

	a, err := New(core, cfg, logger.NewNoop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer a.Close()

	frame := testFrame(0, nil)
	frame.LumaStride = 64 * 2
	frame.CbStride = 32 * 2
	frame.CrStride = 32 * 2
	if err := a.SubmitFrame(frame); err != nil {
		t.Fatalf("submit: %v", err)
	}

	call := core.SubmitCalls[0]
	if call.LumaStride != 64 {
		t.Errorf("expected sample stride 64 for 16-bit storage, got %d", call.LumaStride)
	}
	// 64x48 luma, 2 bytes per sample, 4:2:0 layout.
	want := int64(64*48) * 2 * 3 / 2
	if call.FilledLen != want {
		t.Errorf("expected filled length %d, got %d", want, call.FilledLen)
	}
}

func TestChromaLayoutScaling(t *testing.T) {
	cases := []struct {
		format ports.PixelFormat
		factor int64 // filled length in luma-plane halves
	}{
		{ports.PixFmtYUV420, 3},
		{ports.PixFmtYUV422, 4},
		{ports.PixFmtYUV444, 6},
	}

	for _, tc := range cases {
		core := &mocks.CoreEncoder{}
		cfg := testConfig()
		cfg.PixelFormat = tc.format
		cfg.Profile = ports.ProfileRext

		a, err := New(core, cfg, logger.NewNoop())
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.format, err)
		}

		if err := a.SubmitFrame(testFrame(0, nil)); err != nil {
			t.Fatalf("%s: submit: %v", tc.format, err)
		}

		want := int64(64*48) * tc.factor / 2
		if got := core.SubmitCalls[0].FilledLen; got != want {
			t.Errorf("%s: expected filled length %d, got %d", tc.format, want, got)
		}
		a.Close()
	}
}

func TestConfigValidation(t *testing.T) {
	t.Run("main still picture rejected", func(t *testing.T) {
		cfg := testConfig()
		cfg.Profile = ports.ProfileMainStillPicture

		_, err := New(&mocks.CoreEncoder{}, cfg, logger.NewNoop())
		if !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("expected ErrInvalidParameter, got %v", err)
		}
	})

	t.Run("rext forced for 422", func(t *testing.T) {
		cfg := testConfig()
		cfg.PixelFormat = ports.PixFmtYUV422

		a, err := New(&mocks.CoreEncoder{}, cfg, logger.NewNoop())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer a.Close()
		if a.Config().Profile != ports.ProfileRext {
			t.Errorf("expected forced Rext profile, got %v", a.Config().Profile)
		}
	})

	t.Run("main10 forced for 10-bit", func(t *testing.T) {
		cfg := testConfig()
		cfg.PixelFormat = ports.PixFmtYUV420P10

		a, err := New(&mocks.CoreEncoder{}, cfg, logger.NewNoop())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer a.Close()
		if a.Config().Profile != ports.ProfileMain10 {
			t.Errorf("expected forced Main10 profile, got %v", a.Config().Profile)
		}
	})

	t.Run("configure failure aborts init", func(t *testing.T) {
		core := &mocks.CoreEncoder{
			ConfigureFunc: func(cfg ports.EncoderConfig) ports.CoreStatus {
				return ports.StatusBadParameter
			},
		}
		_, err := New(core, testConfig(), logger.NewNoop())
		if !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("expected ErrInvalidParameter, got %v", err)
		}
		if !core.ShutdownCalled {
			t.Error("expected shutdown after failed configure")
		}
	})
}

func TestGlobalStreamHeader(t *testing.T) {
	hdr := []byte{0x00, 0x00, 0x00, 0x01, 0x40, 0x01}
	core := &mocks.CoreEncoder{Header: hdr}

	cfg := testConfig()
	cfg.GlobalHeader = true

	a, err := New(core, cfg, logger.NewNoop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer a.Close()

	got := a.StreamHeader()
	if string(got) != string(hdr) {
		t.Errorf("expected stream header %x, got %x", hdr, got)
	}
}

func TestSubmissionFailureKeepsCacheEntry(t *testing.T) {
	core := &mocks.CoreEncoder{
		SubmitFunc: func(in *ports.InputBuffer) ports.CoreStatus {
			return ports.StatusBadParameter
		},
	}

	a, err := New(core, testConfig(), logger.NewNoop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer a.Close()

	err = a.SubmitFrame(testFrame(7, []byte("kept")))
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}

	// No rollback: the encoder may have accepted the picture internally.
	if n := a.PendingMetadata(); n != 1 {
		t.Errorf("expected cache entry to survive a submission failure, got %d entries", n)
	}
}

func TestCloseAbandonsPendingMetadata(t *testing.T) {
	core := &mocks.CoreEncoder{LookAhead: 10}

	a, err := New(core, testConfig(), logger.NewNoop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := a.SubmitFrame(testFrame(1, []byte("m1"))); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := a.SubmitFrame(testFrame(2, []byte("m2"))); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !core.ShutdownCalled {
		t.Error("expected core shutdown")
	}
	if n := a.PendingMetadata(); n != 0 {
		t.Errorf("expected abandoned cache after close, got %d entries", n)
	}

	// Second close is a no-op.
	if err := a.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestCloseReportsTeardownFailure(t *testing.T) {
	core := &mocks.CoreEncoder{
		ShutdownFunc: func() ports.CoreStatus {
			return ports.StatusDestroyThreadFailed
		},
	}

	a, err := New(core, testConfig(), logger.NewNoop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = a.Close()
	if !errors.Is(err, ErrExternal) {
		t.Errorf("expected ErrExternal, got %v", err)
	}
}

func TestMetadataRoundTripsThroughDictCodec(t *testing.T) {
	core := &mocks.CoreEncoder{}

	a, err := New(core, testConfig(), logger.NewNoop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer a.Close()

	dict := metadata.Dict{"top": "10", "left": "20", "width": "30", "height": "40"}
	if err := a.SubmitFrame(testFrame(5, dict.Pack())); err != nil {
		t.Fatalf("submit: %v", err)
	}

	pkt, err := a.FetchPacket()
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	got, err := metadata.Unpack(pkt.Metadata)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if got["left"] != "20" || got["height"] != "40" {
		t.Errorf("unexpected dict after round trip: %v", got)
	}
}
