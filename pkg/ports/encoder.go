// Package ports defines the interfaces between the encode pipeline and its
// collaborators: the external core encoder library, frame producers, packet
// consumers, logging and the file system.
package ports

// CoreStatus is a status code returned by the external core encoder library.
// The values mirror the library's own status surface; the encode package maps
// them onto its error taxonomy.
type CoreStatus int

const (
	StatusOK CoreStatus = iota
	StatusInsufficientResources
	StatusUndefined
	StatusInvalidComponent
	StatusBadParameter
	StatusDestroyThreadFailed
	StatusSemaphoreUnresponsive
	StatusDestroySemaphoreFailed
	StatusCreateMutexFailed
	StatusMutexUnresponsive
	StatusDestroyMutexFailed
	// StatusEmptyQueue is the transient "no packet ready yet" signal from
	// PollOutput. It is not an error.
	StatusEmptyQueue
)

// String returns the status name for logging.
func (s CoreStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusInsufficientResources:
		return "insufficient resources"
	case StatusUndefined:
		return "undefined"
	case StatusInvalidComponent:
		return "invalid component"
	case StatusBadParameter:
		return "bad parameter"
	case StatusDestroyThreadFailed:
		return "destroy thread failed"
	case StatusSemaphoreUnresponsive:
		return "semaphore unresponsive"
	case StatusDestroySemaphoreFailed:
		return "destroy semaphore failed"
	case StatusCreateMutexFailed:
		return "create mutex failed"
	case StatusMutexUnresponsive:
		return "mutex unresponsive"
	case StatusDestroyMutexFailed:
		return "destroy mutex failed"
	case StatusEmptyQueue:
		return "empty queue"
	default:
		return "unknown"
	}
}

// PictureType tags an output packet with the kind of picture it carries.
type PictureType int

const (
	PictureInvalid PictureType = iota
	PictureIDR
	PictureI
	PictureP
	PictureB
	PictureNonRef
)

// Profile is the codec profile requested from the core encoder.
type Profile int

const (
	ProfileMain Profile = iota + 1
	ProfileMain10
	ProfileMainStillPicture
	ProfileRext
)

// RateControlMode selects how the core encoder allocates bits.
type RateControlMode int

const (
	RCConstantQP RateControlMode = iota
	RCVariableBitrate
)

// EncoderConfig is the configuration surface passed through to the core
// encoder. The encode package validates profile/format combinations but
// otherwise forwards it verbatim.
type EncoderConfig struct {
	Width  int
	Height int

	PixelFormat PixelFormat

	FrameRateNum int
	FrameRateDen int

	Profile            Profile
	Tier               int
	Level              int
	Preset             int
	HierarchicalLevels int

	RateControl   RateControlMode
	TargetBitrate int64
	QP            int
	MinQP         int
	MaxQP         int

	GOPSize        int
	LookAheadDepth int // -1 leaves the core encoder default in place

	SceneChangeDetection bool
	Tune                 int

	// GlobalHeader requests the parameter sets out of band instead of
	// inline with the first keyframe.
	GlobalHeader bool
}

// InputBuffer is the single reusable input picture descriptor. The plane
// slices are borrowed views into the caller's frame, valid only for the
// duration of the Submit call; the core encoder must consume them
// synchronously.
type InputBuffer struct {
	Luma []byte
	Cb   []byte
	Cr   []byte

	LumaStride int
	CbStride   int
	CrStride   int

	FilledLen int64
	PTS       int64
	EOS       bool
}

// OutputBuffer is a completed packet descriptor. It is owned by the core
// encoder: the caller must copy everything it needs out of it and then hand
// it back through ReleaseOutput exactly once. After release no field may be
// read.
type OutputBuffer struct {
	Data []byte

	PTS int64
	DTS int64

	PictureType PictureType
	EOS         bool
}

// CoreEncoder is the boundary to the external encoder library. The library
// buffers and reorders pictures internally and owns its own worker threads;
// every call here is synchronous and must come from a single goroutine per
// instance.
type CoreEncoder interface {
	// Init creates the encoder handle.
	Init() CoreStatus

	// Configure applies the configuration. Called once, after Init and
	// before the first Submit.
	Configure(cfg EncoderConfig) CoreStatus

	// StreamHeader returns the out-of-band parameter sets. Only meaningful
	// when the configuration requested global headers.
	StreamHeader() ([]byte, CoreStatus)

	// Submit hands one picture (or the EOS sentinel) to the encoder. The
	// buffer contents are consumed before the call returns.
	Submit(in *InputBuffer) CoreStatus

	// PollOutput returns the next completed packet, or StatusEmptyQueue if
	// none is ready yet. The eosSent hint tells the encoder whether to
	// expect further input.
	PollOutput(eosSent bool) (*OutputBuffer, CoreStatus)

	// ReleaseOutput returns a polled buffer to the encoder.
	ReleaseOutput(out *OutputBuffer) CoreStatus

	// Shutdown tears the encoder down and releases its internal resources.
	Shutdown() CoreStatus
}
