package transform

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/menta2k/maskvec/pkg/types"
)

// FitCanvasMapping recovers the uniform scale and translation that best map
// the src points onto the dst points in the least-squares sense. Callers use
// it to measure the canvas scale from observed layout positions instead of
// trusting a supplied value, for example after a zoom or a container resize.
// The model is dst = scale*src + offset with one scale for both axes.
func FitCanvasMapping(src, dst []types.Point) (float64, types.Point, error) {
	if len(src) != len(dst) {
		return 0, types.Point{}, fmt.Errorf("point count mismatch: %d vs %d", len(src), len(dst))
	}
	if len(src) < 2 {
		return 0, types.Point{}, fmt.Errorf("need at least 2 points, got %d", len(src))
	}

	n := len(src)

	// Each pair contributes two rows in the unknowns [s, tx, ty]:
	//   xp = s*x + tx
	//   yp = s*y + ty
	A := mat.NewDense(n*2, 3, nil)
	B := mat.NewVecDense(n*2, nil)

	for i := 0; i < n; i++ {
		A.Set(i*2, 0, src[i].X)
		A.Set(i*2, 1, 1)
		B.SetVec(i*2, dst[i].X)

		A.Set(i*2+1, 0, src[i].Y)
		A.Set(i*2+1, 2, 1)
		B.SetVec(i*2+1, dst[i].Y)
	}

	var qr mat.QR
	qr.Factorize(A)

	var params mat.VecDense
	if err := qr.SolveVecTo(&params, false, B); err != nil {
		return 0, types.Point{}, fmt.Errorf("failed to solve mapping: %v", err)
	}

	scale := params.AtVec(0)
	offset := types.Point{X: params.AtVec(1), Y: params.AtVec(2)}

	if math.IsNaN(scale) || math.IsInf(scale, 0) || scale <= 0 {
		return 0, types.Point{}, fmt.Errorf("degenerate point configuration, fitted scale %v", scale)
	}

	return scale, offset, nil
}
