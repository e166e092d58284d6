// Command detect runs a YOLO model over images and writes them back with the
// detections outlined.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-yolo/config"
	"github.com/nvr-ai/go-yolo/imageio"
	"github.com/nvr-ai/go-yolo/inference"
	"github.com/nvr-ai/go-yolo/models"
	"github.com/nvr-ai/go-yolo/models/model"
	"github.com/nvr-ai/go-yolo/pipeline"
	"github.com/nvr-ai/go-yolo/profiler"
)

// logLevelEnv overrides the configured log level.
const logLevelEnv = "GOYOLO_LOG_LEVEL"

type options struct {
	configPath  string
	modelName   string
	modelPath   string
	imagePath   string
	dir         string
	outputDir   string
	confidence  float64
	iou         float64
	classAware  bool
	classes     string
	provider    string
	backend     string
	logLevel    string
	libPath     string
	palette     bool
	concurrency int
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Path to a YAML or JSON configuration file")
	flag.StringVar(&opts.modelName, "model", "", fmt.Sprintf("Model name %v", models.Names()))
	flag.StringVar(&opts.modelPath, "onnx-model", "", "Path to the ONNX model file")
	flag.StringVar(&opts.imagePath, "image", "", "Path to an image file (.jpg, .jpeg, .png, .bmp)")
	flag.StringVar(&opts.dir, "dir", "", "Directory of images to process")
	flag.StringVar(&opts.outputDir, "output-dir", "", "Output directory for annotated images")
	flag.Float64Var(&opts.confidence, "confidence", 0, "Minimum detection score")
	flag.Float64Var(&opts.iou, "iou", 0, "NMS IoU threshold")
	flag.BoolVar(&opts.classAware, "class-aware", false, "Only suppress overlapping boxes of the same class")
	flag.StringVar(&opts.classes, "classes", "", "Comma-separated class names to keep, e.g. person,car")
	flag.StringVar(&opts.provider, "provider", "", "Execution provider (cpu, coreml, cuda, openvino)")
	flag.StringVar(&opts.backend, "backend", "", "Image backend (imaging, gocv)")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	flag.StringVar(&opts.libPath, "lib", "", "Path to the onnxruntime shared library")
	flag.BoolVar(&opts.palette, "palette", false, "Color each class differently")
	flag.IntVar(&opts.concurrency, "concurrency", 2, "Images processed concurrently in -dir mode")
	flag.Parse()

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "detect: %v\n", err)
		os.Exit(2)
	}

	log, err := cfg.Log.Logger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "detect: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts, log); err != nil {
		log.WithError(err).Error("detection failed")
		stop()
		os.Exit(1)
	}
}

// loadConfig merges the configuration file, explicitly set flags and the
// environment, in that order of increasing precedence.
func loadConfig(opts options) (config.Config, error) {
	cfg := config.DefaultConfig()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return cfg, err
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "model":
			cfg.Model.Name = model.Name(opts.modelName)
		case "onnx-model":
			cfg.Model.Path = opts.modelPath
		case "output-dir":
			cfg.Output.Dir = opts.outputDir
		case "confidence":
			cfg.Detection.ScoreThreshold = float32(opts.confidence)
		case "iou":
			cfg.Detection.IoUThreshold = float32(opts.iou)
		case "class-aware":
			cfg.Detection.ClassAware = opts.classAware
		case "classes":
			cfg.Detection.Classes = strings.Split(opts.classes, ",")
		case "provider":
			cfg.Model.Provider = inference.Provider(opts.provider)
		case "backend":
			cfg.Output.Backend = imageio.Backend(opts.backend)
		case "log-level":
			cfg.Log.Level = opts.logLevel
		case "lib":
			cfg.Model.Library = opts.libPath
		case "palette":
			cfg.Render.Palette = opts.palette
		}
	})

	if level := os.Getenv(logLevelEnv); level != "" {
		cfg.Log.Level = level
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	// Validate accepts any casing; the session needs the canonical name.
	cfg.Model.Provider, _ = inference.ParseProvider(string(cfg.Model.Provider))
	if cfg.Model.Path == "" {
		return cfg, errors.New("a model path is required (-onnx-model or model.path)")
	}
	if (opts.imagePath == "") == (opts.dir == "") {
		return cfg, errors.New("exactly one of -image or -dir is required")
	}
	return cfg, nil
}

func run(ctx context.Context, cfg config.Config, opts options, log *logrus.Logger) error {
	args, err := cfg.ModelArgs()
	if err != nil {
		return err
	}
	m, err := models.NewModel(args)
	if err != nil {
		return errors.Wrap(err, "failed to create model")
	}

	codec, err := imageio.NewCodec(cfg.Output.Backend)
	if err != nil {
		return err
	}

	if err := inference.InitEnvironment(cfg.Model.Library); err != nil {
		return err
	}
	defer func() {
		if err := inference.DestroyEnvironment(); err != nil {
			log.WithError(err).Warn("failed to destroy onnxruntime environment")
		}
	}()

	sessCfg := inference.SessionConfigFromModel(m.Options(), cfg.Model.Provider)
	sessCfg.Logger = log
	session, err := inference.NewSession(sessCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.WithError(err).Warn("failed to close session")
		}
	}()

	log.WithFields(logrus.Fields{
		"model":    m.Options().Name,
		"path":     cfg.Model.Path,
		"provider": cfg.Model.Provider,
		"input":    fmt.Sprintf("%dx%d", cfg.Detection.InputWidth, cfg.Detection.InputHeight),
	}).Info("model loaded")

	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create output directory %s", cfg.Output.Dir)
	}

	prof := profiler.New()
	defer prof.Report(log)

	p := pipeline.New(session, m, cfg.Render.Style(), log).WithProfiler(prof)

	if opts.imagePath != "" {
		res, err := p.ProcessFile(ctx, codec, opts.imagePath, pipeline.OutputPath(cfg.Output.Dir, opts.imagePath), cfg.Output.Quality)
		if err != nil {
			return err
		}
		printDetections(res)
		return nil
	}

	files, err := imageio.ListImages(opts.dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		log.WithField("dir", opts.dir).Warn("no images found")
		return nil
	}

	inputs := make([]string, len(files))
	for i, f := range files {
		inputs[i] = f.Path
	}

	results, err := p.ProcessFiles(ctx, codec, inputs, cfg.Output.Dir, cfg.Output.Quality, opts.concurrency)
	for _, res := range results {
		if res.Output != "" {
			printDetections(res)
		}
	}
	return err
}

func printDetections(res pipeline.Result) {
	fmt.Printf("%s: %d detections (%s)\n", res.Source, len(res.Detections), res.Elapsed)
	for _, d := range res.Detections {
		fmt.Printf("  %-14s %.2f  %s\n", d.Label, d.Score, d.Box)
	}
}
