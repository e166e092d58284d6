// Package pipeline - Runs a model over frames and draws the detections.
package pipeline

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-yolo/imageio"
	"github.com/nvr-ai/go-yolo/images"
	"github.com/nvr-ai/go-yolo/models/postprocess"
	"github.com/nvr-ai/go-yolo/profiler"
	"github.com/nvr-ai/go-yolo/render"
)

// Predictor maps a frame to the raw output tensor of a detection model.
// *inference.Session implements it.
type Predictor interface {
	Predict(ctx context.Context, img *images.Image) (postprocess.Tensor, error)
}

// PostProcessor turns a raw output tensor into detections. model.Model
// implements it.
type PostProcessor interface {
	PostProcess(output postprocess.Tensor, frame postprocess.FrameSize) ([]postprocess.Detection, error)
}

// Result is the outcome of one frame.
type Result struct {
	// ID identifies the frame in logs.
	ID uuid.UUID `json:"id"`
	// Source is the input path, when the frame came from a file.
	Source string `json:"source,omitempty"`
	// Output is the annotated output path, when one was written.
	Output string `json:"output,omitempty"`
	// Detections are the kept detections, highest score first.
	Detections []postprocess.Detection `json:"detections"`
	// Elapsed is the wall time spent on the frame.
	Elapsed time.Duration `json:"elapsed"`
}

// Pipeline runs predictor, post-processing and rendering for each frame. It is
// safe for concurrent use when its Predictor is.
type Pipeline struct {
	predictor Predictor
	post      PostProcessor
	style     render.Style
	log       logrus.FieldLogger
	profiler  *profiler.Profiler
}

// New creates a pipeline.
//
// Arguments:
//   - predictor: The inference collaborator.
//   - post: The post-processor of the model the predictor runs.
//   - style: The outline style.
//   - log: The logger. Nil uses the logrus standard logger.
//
// Returns:
//   - *Pipeline: The pipeline.
func New(predictor Predictor, post PostProcessor, style render.Style, log logrus.FieldLogger) *Pipeline {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Pipeline{predictor: predictor, post: post, style: style, log: log}
}

// WithProfiler records stage timings into prof.
func (p *Pipeline) WithProfiler(prof *profiler.Profiler) *Pipeline {
	p.profiler = prof
	return p
}

// Detect runs the model on a frame without modifying it.
func (p *Pipeline) Detect(ctx context.Context, img *images.Image) (Result, error) {
	res := Result{ID: uuid.New()}
	start := time.Now()

	if err := img.Validate(); err != nil {
		return res, errors.Wrap(err, "invalid frame")
	}

	done := p.profiler.StartOperation(profiler.StagePredict)
	raw, err := p.predictor.Predict(ctx, img)
	done()
	if err != nil {
		return res, errors.Wrap(err, "inference failed")
	}

	done = p.profiler.StartOperation(profiler.StagePostProcess)
	dets, err := p.post.PostProcess(raw, postprocess.FrameSize{Width: img.Width, Height: img.Height})
	done()
	if err != nil {
		return res, errors.Wrap(err, "post-processing failed")
	}

	res.Detections = dets
	res.Elapsed = time.Since(start)
	p.profiler.Record(profiler.StageFrame, res.Elapsed)

	entry := p.log.WithFields(logrus.Fields{
		"frame":      res.ID,
		"detections": len(dets),
		"elapsed":    res.Elapsed,
	})
	entry.Debug("frame processed")
	for _, d := range dets {
		entry.WithFields(logrus.Fields{
			"label": d.Label,
			"score": d.Score,
			"box":   d.Box.String(),
		}).Trace("detection")
	}

	return res, nil
}

// Annotate runs the model on a frame and draws the detections onto it in place.
// A frame without detections is left unmodified.
func (p *Pipeline) Annotate(ctx context.Context, img *images.Image) (Result, error) {
	res, err := p.Detect(ctx, img)
	if err != nil {
		return res, err
	}
	done := p.profiler.StartOperation(profiler.StageRender)
	render.Detections(img, res.Detections, p.style)
	done()
	return res, nil
}

// ProcessFile loads an image, annotates it and writes it to output.
//
// Arguments:
//   - ctx: The context.
//   - codec: The image codec.
//   - input: The source image path.
//   - output: The destination path.
//   - quality: The JPEG quality.
//
// Returns:
//   - Result: The frame result.
//   - error: An error if any stage fails.
func (p *Pipeline) ProcessFile(ctx context.Context, codec imageio.Codec, input, output string, quality int) (Result, error) {
	img, err := codec.Load(input)
	if err != nil {
		return Result{Source: input}, err
	}

	res, err := p.Annotate(ctx, img)
	res.Source = input
	if err != nil {
		return res, errors.Wrapf(err, "failed to process %s", input)
	}

	if err := codec.Save(output, img, quality); err != nil {
		return res, err
	}
	res.Output = output

	p.log.WithFields(logrus.Fields{
		"frame":      res.ID,
		"source":     input,
		"output":     output,
		"detections": len(res.Detections),
	}).Info("annotated image written")

	return res, nil
}

// ProcessFiles annotates many images, writing each into outDir under its own
// base name. At most concurrency files are in flight.
//
// Returns:
//   - []Result: One result per input, in input order.
//   - error: The first error, by input order.
func (p *Pipeline) ProcessFiles(
	ctx context.Context,
	codec imageio.Codec,
	inputs []string,
	outDir string,
	quality int,
	concurrency int,
) ([]Result, error) {
	if concurrency <= 0 {
		concurrency = 1
	}

	results := make([]Result, len(inputs))
	errs := make([]error, len(inputs))

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, input := range inputs {
		wg.Add(1)
		go func(idx int, input string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = p.ProcessFile(ctx, codec, input, OutputPath(outDir, input), quality)
		}(i, input)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// OutputPath returns the annotated file path for input inside dir. Inputs
// without a writable extension are written as JPEG.
func OutputPath(dir, input string) string {
	base := filepath.Base(input)
	if images.FormatFromPath(base) == images.FormatUnknown {
		base = strings.TrimSuffix(base, filepath.Ext(base)) + ".jpg"
	}
	return filepath.Join(dir, base)
}
