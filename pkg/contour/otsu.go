package contour

import "github.com/menta2k/maskvec/pkg/types"

const otsuBins = 256

// OtsuThreshold estimates a foreground/background split for a grid whose
// value convention is unknown, by maximizing the between-class variance over
// a histogram of the grid's value range. The result can be fed into
// Config.Threshold when the model collaborator's output is neither raw
// logits nor normalized probabilities.
func OtsuThreshold(grid *types.Grid) float64 {
	if grid == nil || len(grid.Data) == 0 {
		return 0
	}

	minV, maxV := grid.Data[0], grid.Data[0]
	for _, v := range grid.Data {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	if minV == maxV {
		return minV
	}

	span := maxV - minV
	var hist [otsuBins]int
	for _, v := range grid.Data {
		bin := int((v - minV) / span * (otsuBins - 1))
		hist[bin]++
	}

	total := len(grid.Data)
	var sumAll float64
	for i, n := range hist {
		sumAll += float64(i) * float64(n)
	}

	var sumBack, weightBack float64
	bestBin := 0
	bestVariance := -1.0

	for i := 0; i < otsuBins; i++ {
		weightBack += float64(hist[i])
		if weightBack == 0 {
			continue
		}
		weightFore := float64(total) - weightBack
		if weightFore == 0 {
			break
		}

		sumBack += float64(i) * float64(hist[i])
		meanBack := sumBack / weightBack
		meanFore := (sumAll - sumBack) / weightFore

		variance := weightBack * weightFore * (meanBack - meanFore) * (meanBack - meanFore)
		if variance > bestVariance {
			bestVariance = variance
			bestBin = i
		}
	}

	// Threshold sits at the upper edge of the best background bin so that
	// values above it land in the foreground class.
	return minV + (float64(bestBin)+1)/otsuBins*span
}
