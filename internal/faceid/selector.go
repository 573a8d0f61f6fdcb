package faceid

import "math"

// DefaultSelectorLambda balances face size against distance from the image
// center when several faces appear in one frame.
const DefaultSelectorLambda = 0.5

// scoreBox rates a candidate face as area minus a penalty for being far
// from the image center. The dominant photographed subject is usually both
// large and centered; the penalty avoids picking a face that is large only
// because a bystander stands close to the camera at the frame edge.
func scoreBox(b Box, imgW, imgH int, lambda float64) float64 {
	cx, cy := b.Center()
	dx := cx - float64(imgW)/2
	dy := cy - float64(imgH)/2
	return b.Area() - lambda*math.Hypot(dx, dy)
}

// SelectBest returns the index of the best face among the candidates.
// Ties go to the first-seen box in detector order: the scan below only
// replaces the current best on a strictly greater score, so the result is
// deterministic for a fixed input regardless of detector internals.
// Returns -1 for an empty candidate list.
func SelectBest(boxes []Box, imgW, imgH int, lambda float64) int {
	if len(boxes) == 0 {
		return -1
	}

	bestIdx := 0
	bestScore := scoreBox(boxes[0], imgW, imgH, lambda)
	for i := 1; i < len(boxes); i++ {
		if s := scoreBox(boxes[i], imgW, imgH, lambda); s > bestScore {
			bestScore = s
			bestIdx = i
		}
	}
	return bestIdx
}
