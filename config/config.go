// Package config - Detection run configuration.
package config

import (
	"image/color"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/nvr-ai/go-yolo/imageio"
	"github.com/nvr-ai/go-yolo/inference"
	"github.com/nvr-ai/go-yolo/models"
	"github.com/nvr-ai/go-yolo/models/model"
	"github.com/nvr-ai/go-yolo/models/postprocess"
	"github.com/nvr-ai/go-yolo/render"
)

// Config is the configuration of a detection run.
type Config struct {
	Model     ModelConfig     `json:"model" yaml:"model"`
	Detection DetectionConfig `json:"detection" yaml:"detection"`
	Render    RenderConfig    `json:"render" yaml:"render"`
	Output    OutputConfig    `json:"output" yaml:"output"`
	Log       LogConfig       `json:"log" yaml:"log"`
}

// ModelConfig selects the model and how it is run.
type ModelConfig struct {
	// Name is the registered model name, e.g. "yolov8".
	Name model.Name `json:"name" yaml:"name"`
	// Path is the .onnx file.
	Path string `json:"path" yaml:"path"`
	// Inputs overrides the input tensor names.
	Inputs []string `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	// Outputs overrides the output tensor names.
	Outputs []string `json:"outputs,omitempty" yaml:"outputs,omitempty"`
	// Provider is the onnxruntime execution provider.
	Provider inference.Provider `json:"provider" yaml:"provider"`
	// Library is the onnxruntime shared library. Empty uses the platform default.
	Library string `json:"library,omitempty" yaml:"library,omitempty"`
}

// DetectionConfig holds the post-processing thresholds.
type DetectionConfig struct {
	ScoreThreshold float32  `json:"score_threshold" yaml:"score_threshold"`
	IoUThreshold   float32  `json:"iou_threshold" yaml:"iou_threshold"`
	ClassAware     bool     `json:"class_aware" yaml:"class_aware"`
	MaxDetections  int      `json:"max_detections" yaml:"max_detections"`
	InputWidth     int      `json:"input_width" yaml:"input_width"`
	InputHeight    int      `json:"input_height" yaml:"input_height"`
	Classes        []string `json:"classes,omitempty" yaml:"classes,omitempty"`
}

// RenderConfig controls the outline drawing.
type RenderConfig struct {
	// Color is a hex color such as "#00ff00".
	Color string `json:"color" yaml:"color"`
	// Thickness is the stroke width in pixels.
	Thickness int `json:"thickness" yaml:"thickness"`
	// Palette colors each class differently instead of using Color.
	Palette bool `json:"palette" yaml:"palette"`
}

// OutputConfig controls where annotated frames go.
type OutputConfig struct {
	Dir     string          `json:"dir" yaml:"dir"`
	Quality int             `json:"quality" yaml:"quality"`
	Backend imageio.Backend `json:"backend" yaml:"backend"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	pp := postprocess.DefaultConfig()
	style := render.DefaultStyle()

	return Config{
		Model: ModelConfig{
			Name:     model.ModelNameYOLOv8,
			Provider: inference.ProviderCPU,
		},
		Detection: DetectionConfig{
			ScoreThreshold: pp.ScoreThreshold,
			IoUThreshold:   pp.IoUThreshold,
			ClassAware:     pp.ClassAware,
			MaxDetections:  pp.MaxDetections,
			InputWidth:     pp.InputWidth,
			InputHeight:    pp.InputHeight,
		},
		Render: RenderConfig{
			Color:     colorful.Color{R: float64(style.Color.R) / 255, G: float64(style.Color.G) / 255, B: float64(style.Color.B) / 255}.Hex(),
			Thickness: style.Thickness,
		},
		Output: OutputConfig{
			Dir:     "output",
			Quality: imageio.DefaultQuality,
			Backend: imageio.BackendImaging,
		},
		Log: LogConfig{
			Level:  logrus.InfoLevel.String(),
			Format: "text",
		},
	}
}

// Load reads a YAML (or JSON) file over the defaults.
//
// Arguments:
//   - path: The configuration file.
//
// Returns:
//   - Config: The merged, validated configuration.
//   - error: An error if the file cannot be read, parsed or validated.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "failed to read config %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "failed to parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

// Validate checks every field that would otherwise fail deep inside a run.
func (c Config) Validate() error {
	if c.Model.Name == "" {
		return errors.New("model.name is required")
	}
	if _, err := inference.ParseProvider(string(c.Model.Provider)); err != nil {
		return errors.Wrap(err, "model.provider")
	}

	d := c.Detection
	if d.ScoreThreshold < 0 || d.ScoreThreshold > 1 {
		return errors.Errorf("detection.score_threshold %v out of range [0, 1]", d.ScoreThreshold)
	}
	if d.IoUThreshold < 0 || d.IoUThreshold > 1 {
		return errors.Errorf("detection.iou_threshold %v out of range [0, 1]", d.IoUThreshold)
	}
	if d.MaxDetections < 0 {
		return errors.Errorf("detection.max_detections %d is negative", d.MaxDetections)
	}
	if d.InputWidth <= 0 || d.InputHeight <= 0 {
		return errors.Errorf("detection input size %dx%d is invalid", d.InputWidth, d.InputHeight)
	}
	if _, err := models.YOLOClasses.Indices(d.Classes); err != nil {
		return errors.Wrap(err, "detection.classes")
	}

	if _, err := c.Render.RGBA(); err != nil {
		return err
	}
	if c.Render.Thickness < 0 {
		return errors.Errorf("render.thickness %d is negative", c.Render.Thickness)
	}

	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return errors.Errorf("output.quality %d out of range [1, 100]", c.Output.Quality)
	}
	if _, err := imageio.NewCodec(c.Output.Backend); err != nil {
		return errors.Wrap(err, "output.backend")
	}

	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(err, "log.level")
	}
	return nil
}

// RGBA parses the outline color.
func (r RenderConfig) RGBA() (color.RGBA, error) {
	c, err := colorful.Hex(r.Color)
	if err != nil {
		return color.RGBA{}, errors.Wrapf(err, "render.color %q", r.Color)
	}
	red, green, blue := c.RGB255()
	return color.RGBA{R: red, G: green, B: blue, A: 255}, nil
}

// Style returns the render style. Call Validate first.
func (r RenderConfig) Style() render.Style {
	style := render.DefaultStyle()
	if r.Palette {
		style = render.PaletteStyle()
	}
	if clr, err := r.RGBA(); err == nil {
		style.Color = clr
	}
	style.Thickness = r.Thickness
	return style
}

// ModelArgs returns the arguments for models.NewModel.
func (c Config) ModelArgs() (model.NewModelArgs, error) {
	classes, err := models.YOLOClasses.Indices(c.Detection.Classes)
	if err != nil {
		return model.NewModelArgs{}, errors.Wrap(err, "detection.classes")
	}

	pp := postprocess.Config{
		ScoreThreshold: c.Detection.ScoreThreshold,
		IoUThreshold:   c.Detection.IoUThreshold,
		ClassAware:     c.Detection.ClassAware,
		MaxDetections:  c.Detection.MaxDetections,
		InputWidth:     c.Detection.InputWidth,
		InputHeight:    c.Detection.InputHeight,
		Classes:        classes,
	}

	return model.NewModelArgs{
		Name:    c.Model.Name,
		Path:    c.Model.Path,
		Inputs:  c.Model.Inputs,
		Outputs: c.Model.Outputs,
		Config:  &pp,
	}, nil
}

// Logger builds a logrus logger from the log section.
func (l LogConfig) Logger() (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(l.Level)
	if err != nil {
		return nil, errors.Wrap(err, "log.level")
	}

	logger := logrus.New()
	logger.SetLevel(level)
	if l.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger, nil
}
