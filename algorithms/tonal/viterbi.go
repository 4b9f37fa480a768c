package tonal

import (
	"math"

	"github.com/RyanBlaney/sonido-pyin/algorithms/common"
)

// viterbi returns the most likely hidden state sequence (see
// transitionModel) for the given per-frame observations, each of length
// numBins+1, under a uniform initial distribution. Voiced state k emits
// obs[k]; every unvoiced copy emits obs[numBins]/numBins. Ties go to the
// lowest-indexed predecessor and final state.
func (tm *transitionModel) viterbi(observations [][]float64) []int {
	numFrames := len(observations)
	if numFrames == 0 {
		return nil
	}

	bins := tm.numBins
	numStates := tm.numStates()

	logInit := -math.Log(float64(numStates))
	prev := make([]float64, numStates)
	tm.emit(prev, observations[0])
	for s := range prev {
		prev[s] += logInit
	}

	cur := make([]float64, numStates)
	rowed := make([]float64, numStates)
	emission := make([]float64, numStates)
	backptr := make([][]int32, numFrames)

	for f := 1; f < numFrames; f++ {
		ptr := make([]int32, numStates)
		tm.emit(emission, observations[f])

		for s, score := range prev {
			rowed[s] = score + tm.logRowScale[s%bins]
		}

		for k := range bins {
			fromVoiced, voicedArg := tm.bandMax(rowed, 0, k)
			fromUnvoiced, unvoicedArg := tm.bandMax(rowed, bins, k)

			// Voiced destination: keeping voicing wins ties (lower index)
			best, arg := fromVoiced+tm.logStay, voicedArg
			if score := fromUnvoiced + tm.logSwitch; score > best {
				best, arg = score, unvoicedArg
			}
			cur[k] = best + emission[k]
			ptr[k] = int32(arg)

			// Unvoiced copy: the voiced sources still have the lower index
			best, arg = fromVoiced+tm.logSwitch, voicedArg
			if score := fromUnvoiced + tm.logStay; score > best {
				best, arg = score, unvoicedArg
			}
			cur[bins+k] = best + emission[bins+k]
			ptr[bins+k] = int32(arg)
		}

		backptr[f] = ptr
		prev, cur = cur, prev
	}

	path := make([]int, numFrames)
	path[numFrames-1] = common.ArgMax(prev)
	for f := numFrames - 1; f > 0; f-- {
		path[f-1] = int(backptr[f][path[f]])
	}

	return path
}

// emit fills dst with the log emission of every hidden state for one frame
func (tm *transitionModel) emit(dst, obs []float64) {
	bins := tm.numBins
	for k := range bins {
		dst[k] = common.SafeLog(obs[k])
	}
	unvoiced := common.SafeLog(obs[bins] / float64(bins))
	for k := range bins {
		dst[bins+k] = unvoiced
	}
}

// bandMax returns the best rowed[offset+j] + logTriangle over the source
// bins j within the band around destination bin k, and the state index it
// came from. The lowest j wins ties.
func (tm *transitionModel) bandMax(rowed []float64, offset, k int) (float64, int) {
	best := math.Inf(-1)
	arg := offset + max(k-tm.half, 0)
	for j := max(k-tm.half, 0); j <= min(k+tm.half, tm.numBins-1); j++ {
		if score := rowed[offset+j] + tm.logTriangle[k-j+tm.half]; score > best {
			best, arg = score, offset+j
		}
	}
	return best, arg
}
