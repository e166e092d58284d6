package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-yolo/inference"
	"github.com/nvr-ai/go-yolo/models/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, model.ModelNameYOLOv8, cfg.Model.Name)
	assert.Equal(t, float32(0.25), cfg.Detection.ScoreThreshold)
	assert.Equal(t, float32(0.45), cfg.Detection.IoUThreshold)
	assert.False(t, cfg.Detection.ClassAware)
	assert.Equal(t, 100, cfg.Output.Quality)
	assert.Equal(t, "#00ff00", cfg.Render.Color)

	style := cfg.Render.Style()
	assert.Equal(t, color.RGBA{G: 255, A: 255}, style.Color)
	assert.Equal(t, 2, style.Thickness)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "detect.yaml", `
model:
  name: yolov4
  path: /models/yolov4.onnx
  inputs: [input_1:0]
  outputs: [Identity:0]
  provider: cuda
detection:
  score_threshold: 0.4
  class_aware: true
  input_width: 416
  input_height: 416
  classes: [person, car]
render:
  color: "#ff8000"
  thickness: 3
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, model.ModelNameYOLOv4, cfg.Model.Name)
	assert.Equal(t, inference.ProviderCUDA, cfg.Model.Provider)
	assert.Equal(t, float32(0.4), cfg.Detection.ScoreThreshold)
	assert.Equal(t, float32(0.45), cfg.Detection.IoUThreshold, "unset fields keep defaults")
	assert.True(t, cfg.Detection.ClassAware)

	clr, err := cfg.Render.RGBA()
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 255, G: 128, A: 255}, clr)

	args, err := cfg.ModelArgs()
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, args.Config.Classes)
	assert.Equal(t, 416, args.Config.InputWidth)
	assert.Equal(t, []string{"input_1:0"}, args.Inputs)

	logger, err := cfg.Log.Logger()
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "detect.json", `{"model": {"name": "yolov8", "path": "y.onnx"}, "output": {"quality": 90}}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 90, cfg.Output.Quality)
	assert.Equal(t, "y.onnx", cfg.Model.Path)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad.yaml", "model: [unclosed"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "invalid.yaml", "detection:\n  iou_threshold: 2\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no model", func(c *Config) { c.Model.Name = "" }},
		{"bad provider", func(c *Config) { c.Model.Provider = "tpu" }},
		{"negative score", func(c *Config) { c.Detection.ScoreThreshold = -0.1 }},
		{"iou above one", func(c *Config) { c.Detection.IoUThreshold = 1.1 }},
		{"negative max", func(c *Config) { c.Detection.MaxDetections = -1 }},
		{"zero input", func(c *Config) { c.Detection.InputHeight = 0 }},
		{"unknown class", func(c *Config) { c.Detection.Classes = []string{"dragon"} }},
		{"bad color", func(c *Config) { c.Render.Color = "green" }},
		{"negative thickness", func(c *Config) { c.Render.Thickness = -1 }},
		{"quality zero", func(c *Config) { c.Output.Quality = 0 }},
		{"unknown backend", func(c *Config) { c.Output.Backend = "vips" }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestRenderStylePalette(t *testing.T) {
	style := RenderConfig{Color: "#0000ff", Thickness: 4, Palette: true}.Style()
	assert.NotEmpty(t, style.ClassColors)
	assert.Equal(t, color.RGBA{B: 255, A: 255}, style.Color)
	assert.Equal(t, 4, style.Thickness)
}
