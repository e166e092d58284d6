package inference

import (
	"strings"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

// Provider is an onnxruntime execution provider.
type Provider string

const (
	// ProviderCPU runs on the default CPU provider.
	ProviderCPU Provider = "cpu"
	// ProviderCoreML runs on Apple CoreML.
	ProviderCoreML Provider = "coreml"
	// ProviderCUDA runs on NVIDIA CUDA.
	ProviderCUDA Provider = "cuda"
	// ProviderOpenVINO runs on Intel OpenVINO.
	ProviderOpenVINO Provider = "openvino"
)

// ParseProvider converts a flag or config value into a Provider.
func ParseProvider(s string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case "", ProviderCPU:
		return ProviderCPU, nil
	case ProviderCoreML, ProviderCUDA, ProviderOpenVINO:
		return p, nil
	default:
		return "", errors.Errorf("unknown execution provider %q", s)
	}
}

// apply appends the execution provider to the session options.
func (p Provider) apply(options *ort.SessionOptions, deviceID string) error {
	if deviceID == "" {
		deviceID = "0"
	}

	switch p {
	case "", ProviderCPU:
		return nil
	case ProviderCoreML:
		return errors.Wrap(options.AppendExecutionProviderCoreML(0), "error enabling CoreML")
	case ProviderOpenVINO:
		return errors.Wrap(options.AppendExecutionProviderOpenVINO(map[string]string{
			"device_id":   deviceID,
			"device_type": "CPU",
			"precision":   "FP32",
		}), "error enabling OpenVINO")
	case ProviderCUDA:
		cuda, err := ort.NewCUDAProviderOptions()
		if err != nil {
			return errors.Wrap(err, "error creating CUDA options")
		}
		defer cuda.Destroy()

		if err := cuda.Update(map[string]string{"device_id": deviceID}); err != nil {
			return errors.Wrap(err, "error updating CUDA options")
		}
		return errors.Wrap(options.AppendExecutionProviderCUDA(cuda), "error enabling CUDA")
	default:
		return errors.Errorf("unknown execution provider %q", p)
	}
}
