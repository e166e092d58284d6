package inference

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/nvr-ai/go-yolo/images"
	"github.com/nvr-ai/go-yolo/models/model"
	"github.com/nvr-ai/go-yolo/models/postprocess"
)

// ErrSessionClosed is returned by Predict after Close.
var ErrSessionClosed = errors.New("session closed")

// SessionConfig describes one model session.
type SessionConfig struct {
	// ModelPath is the path to the .onnx file.
	ModelPath string `json:"model_path" yaml:"model_path"`
	// InputName is the name of the image input tensor.
	InputName string `json:"input_name" yaml:"input_name"`
	// OutputName is the name of the detection output tensor.
	OutputName string `json:"output_name" yaml:"output_name"`
	// OutputShape is the shape of the detection output tensor.
	OutputShape []int64 `json:"output_shape" yaml:"output_shape"`
	// Input describes the image tensor.
	Input InputConfig `json:"input" yaml:"input"`
	// Provider is the execution provider.
	Provider Provider `json:"provider" yaml:"provider"`
	// DeviceID selects the accelerator for CUDA and OpenVINO.
	DeviceID string `json:"device_id" yaml:"device_id"`
	// IntraOpThreads parallelizes execution within graph nodes. 0 uses the default.
	IntraOpThreads int `json:"intra_op_threads" yaml:"intra_op_threads"`
	// InterOpThreads parallelizes execution across graph nodes. 0 uses the default.
	InterOpThreads int `json:"inter_op_threads" yaml:"inter_op_threads"`
	// Logger receives session lifecycle logs. Nil uses the logrus standard logger.
	Logger logrus.FieldLogger `json:"-" yaml:"-"`
}

// SessionConfigFromModel builds a session configuration from model options.
//
// Arguments:
//   - opts: The model options.
//   - provider: The execution provider.
//
// Returns:
//   - SessionConfig: The configuration, with the default input preparation.
func SessionConfigFromModel(opts model.Options, provider Provider) SessionConfig {
	input := DefaultInputConfig()
	input.Width = opts.Config.InputWidth
	input.Height = opts.Config.InputHeight

	cfg := SessionConfig{
		ModelPath:   opts.Path,
		OutputShape: opts.OutputShape,
		Input:       input,
		Provider:    provider,
	}
	if len(opts.Inputs) > 0 {
		cfg.InputName = opts.Inputs[0]
	}
	if len(opts.Outputs) > 0 {
		cfg.OutputName = opts.Outputs[0]
	}
	return cfg
}

// Session is an opaque handle to a loaded model with preallocated input and
// output tensors. It is created by NewSession and must be released with Close.
//
// Predict calls are serialized because the tensors are shared between runs.
type Session struct {
	mu      sync.Mutex
	cfg     SessionConfig
	log     logrus.FieldLogger
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

// NewSession loads a model. InitEnvironment must have been called.
//
// Arguments:
//   - cfg: The session configuration.
//
// Returns:
//   - *Session: The session.
//   - error: An error if the configuration is invalid or the model fails to load.
func NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.ModelPath == "" {
		return nil, errors.New("session requires a model path")
	}
	if cfg.InputName == "" || cfg.OutputName == "" {
		return nil, errors.New("session requires input and output tensor names")
	}
	if len(cfg.OutputShape) == 0 {
		return nil, errors.New("session requires an output shape")
	}
	if cfg.Input.Width <= 0 || cfg.Input.Height <= 0 {
		return nil, errors.Errorf("invalid model input size %dx%d", cfg.Input.Width, cfg.Input.Height)
	}

	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithFields(logrus.Fields{"model": cfg.ModelPath, "provider": cfg.Provider})

	input, err := ort.NewEmptyTensor[float32](
		ort.NewShape(1, 3, int64(cfg.Input.Height), int64(cfg.Input.Width)))
	if err != nil {
		return nil, errors.Wrap(err, "error creating input tensor")
	}

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(cfg.OutputShape...))
	if err != nil {
		input.Destroy()
		return nil, errors.Wrap(err, "error creating output tensor")
	}

	session, err := newAdvancedSession(cfg, input, output)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"input":  input.GetShape().String(),
		"output": output.GetShape().String(),
	}).Info("model session created")

	return &Session{
		cfg:     cfg,
		log:     log,
		session: session,
		input:   input,
		output:  output,
	}, nil
}

func newAdvancedSession(cfg SessionConfig, input, output *ort.Tensor[float32]) (*ort.AdvancedSession, error) {
	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, errors.Wrap(err, "error creating ORT session options")
	}
	defer options.Destroy()

	if err := options.SetIntraOpNumThreads(cfg.IntraOpThreads); err != nil {
		return nil, errors.Wrap(err, "error setting intra-op threads")
	}
	if err := options.SetInterOpNumThreads(cfg.InterOpThreads); err != nil {
		return nil, errors.Wrap(err, "error setting inter-op threads")
	}
	if err := options.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableExtended); err != nil {
		return nil, errors.Wrap(err, "error setting graph optimization level")
	}
	if err := cfg.Provider.apply(options, cfg.DeviceID); err != nil {
		return nil, err
	}

	session, err := ort.NewAdvancedSession(
		cfg.ModelPath,
		[]string{cfg.InputName},
		[]string{cfg.OutputName},
		[]ort.ArbitraryTensor{input},
		[]ort.ArbitraryTensor{output},
		options,
	)
	if err != nil {
		return nil, errors.Wrap(err, "error creating ORT session")
	}
	return session, nil
}

// Predict prepares the image, runs the model and returns a copy of the raw
// output tensor.
//
// Arguments:
//   - ctx: Checked before the model runs. A run in progress is not interrupted.
//   - img: The original frame.
//
// Returns:
//   - postprocess.Tensor: The raw output with its shape.
//   - error: An error if the session is closed, the context is done, or the run fails.
func (s *Session) Predict(ctx context.Context, img *images.Image) (postprocess.Tensor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return postprocess.Tensor{}, ErrSessionClosed
	}
	if err := ctx.Err(); err != nil {
		return postprocess.Tensor{}, err
	}

	if err := PrepareInput(img, s.cfg.Input, s.input.GetData()); err != nil {
		return postprocess.Tensor{}, errors.Wrap(err, "failed to prepare input")
	}

	start := time.Now()
	if err := s.session.Run(); err != nil {
		return postprocess.Tensor{}, errors.Wrap(err, "failed to run inference")
	}
	s.log.WithField("elapsed", time.Since(start)).Debug("inference complete")

	out := s.output.GetData()
	data := make([]float32, len(out))
	copy(data, out)

	return postprocess.Tensor{
		Data:  data,
		Shape: append([]int64(nil), s.output.GetShape()...),
	}, nil
}

// Close releases the resources associated with the Session. It is safe to call
// more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if s.session != nil {
		err = s.session.Destroy()
		s.session = nil
	}
	if s.input != nil {
		s.input.Destroy()
		s.input = nil
	}
	if s.output != nil {
		s.output.Destroy()
		s.output = nil
	}
	return errors.Wrap(err, "error destroying ORT session")
}
