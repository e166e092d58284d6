// Package postprocess - provides Non-Maximum Suppression for detection results.
package postprocess

import (
	"sort"

	"github.com/chewxy/math32"

	"github.com/nvr-ai/go-yolo/images"
)

// NMSConfig defines parameters for Non-Maximum Suppression.
type NMSConfig struct {
	// ScoreThreshold is the minimum score a candidate needs to be kept.
	ScoreThreshold float32 `json:"score_threshold" yaml:"score_threshold"`
	// IoUThreshold is the overlap above which a lower-scored box is suppressed.
	IoUThreshold float32 `json:"iou_threshold" yaml:"iou_threshold"`
	// ClassAware restricts suppression to boxes of the same class.
	ClassAware bool `json:"class_aware" yaml:"class_aware"`
	// MaxDetections caps the number of kept boxes. Zero means no cap.
	MaxDetections int `json:"max_detections" yaml:"max_detections"`
}

// DefaultNMSConfig returns the thresholds used by the Ultralytics exporters.
func DefaultNMSConfig() NMSConfig {
	return NMSConfig{
		ScoreThreshold: 0.25,
		IoUThreshold:   0.45,
		MaxDetections:  300,
	}
}

// Suppress runs greedy Non-Maximum Suppression over the candidates.
//
// Candidates are visited in descending score order, ties broken by their
// original position. A visited candidate below ScoreThreshold ends the scan.
// Otherwise it is kept and every later candidate whose IoU with it is strictly
// greater than IoUThreshold is suppressed. Candidates with degenerate boxes or
// with a score that is NaN or outside [0, 1] are dropped before the scan.
//
// Arguments:
//   - candidates: The candidates to filter. The slice is not modified.
//   - cfg: The suppression configuration.
//
// Returns:
//   - Indices into candidates of the kept boxes, in descending score order.
func Suppress(candidates []Result, cfg NMSConfig) []int {
	order := make([]int, 0, len(candidates))
	for i, c := range candidates {
		if c.Box.Valid() && validScore(c.Score) {
			order = append(order, i)
		}
	}
	if len(order) == 0 {
		return []int{}
	}

	sort.SliceStable(order, func(a, b int) bool {
		return candidates[order[a]].Score > candidates[order[b]].Score
	})

	suppressed := make([]bool, len(order))
	kept := make([]int, 0, len(order))

	for a, i := range order {
		if suppressed[a] {
			continue
		}
		anchor := candidates[i]
		if anchor.Score < cfg.ScoreThreshold {
			break
		}

		kept = append(kept, i)
		if cfg.MaxDetections > 0 && len(kept) >= cfg.MaxDetections {
			break
		}

		for b := a + 1; b < len(order); b++ {
			if suppressed[b] {
				continue
			}
			other := candidates[order[b]]
			if cfg.ClassAware && anchor.Class != other.Class {
				continue
			}
			if images.CalculateIoU(anchor.Box, other.Box) > cfg.IoUThreshold {
				suppressed[b] = true
			}
		}
	}

	return kept
}

// ApplyNMS filters overlapping detections using Non-Maximum Suppression.
//
// Arguments:
//   - detections: The candidates, in any order.
//   - config: NMS configuration.
//
// Returns:
//   - The kept detections, highest score first.
func ApplyNMS(detections []Result, config NMSConfig) []Result {
	kept := Suppress(detections, config)
	filtered := make([]Result, len(kept))
	for i, k := range kept {
		filtered[i] = detections[k]
	}
	return filtered
}

func validScore(s float32) bool {
	return !math32.IsNaN(s) && s >= 0 && s <= 1
}
