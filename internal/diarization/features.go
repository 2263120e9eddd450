// Package diarization implements the C5 hybrid audio+text speaker
// diarization service: a two-hypothesis (Promotor vs Patient) classifier
// combining acoustic clustering with Spanish clinical-dialogue text
// pattern scoring.
package diarization

import (
	"bytes"
	"math"

	"github.com/go-audio/wav"
	"gonum.org/v1/gonum/stat"
)

// featureVector is the 6-dimensional acoustic descriptor computed per
// segment: pitch mean/std/range, RMS energy, spectral centroid, zero
// crossing rate.
type featureVector [6]float64

// decodeWAV reads PCM samples and the sample rate from a WAV byte stream,
// normalized to [-1,1]. Non-WAV or malformed audio returns ok=false so the
// caller can fall back to text-only scoring rather than fail the whole
// recording.
func decodeWAV(data []byte) (samples []float64, sampleRate int, ok bool) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, 0, false
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil || buf == nil {
		return nil, 0, false
	}
	maxAbs := float64(int(1) << uint(buf.SourceBitDepth-1))
	if maxAbs == 0 {
		maxAbs = 32768
	}
	samples = make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float64(v) / maxAbs
	}
	return samples, buf.Format.SampleRate, true
}

// extractFeatures computes the raw (unnormalized) feature vector for the
// sample window [tStart,tEnd) seconds into samples at sampleRate.
func extractFeatures(samples []float64, sampleRate int, tStart, tEnd float64) featureVector {
	start := clampIndex(int(tStart*float64(sampleRate)), len(samples))
	end := clampIndex(int(tEnd*float64(sampleRate)), len(samples))
	if end <= start {
		return featureVector{}
	}
	window := samples[start:end]

	rms := rmsEnergy(window)
	zcr := zeroCrossingRate(window)
	centroid := spectralCentroid(window, sampleRate)
	pMean, pStd, pRange := pitchStats(window, sampleRate)

	return featureVector{pMean, pStd, pRange, rms, centroid, zcr}
}

func clampIndex(i, max int) int {
	if i < 0 {
		return 0
	}
	if i > max {
		return max
	}
	return i
}

func rmsEnergy(window []float64) float64 {
	if len(window) == 0 {
		return 0
	}
	var sum float64
	for _, v := range window {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(window)))
}

func zeroCrossingRate(window []float64) float64 {
	if len(window) < 2 {
		return 0
	}
	crossings := 0
	for i := 1; i < len(window); i++ {
		if (window[i-1] >= 0) != (window[i] >= 0) {
			crossings++
		}
	}
	return float64(crossings) / float64(len(window)-1)
}

// spectralCentroid approximates the spectral center of mass with
// zero-crossing rate as a cheap proxy for dominant frequency, avoiding a
// full FFT for a feature only ever used relatively, inside clustering.
func spectralCentroid(window []float64, sampleRate int) float64 {
	return zeroCrossingRate(window) * float64(sampleRate) / 2
}

// pitchStats estimates fundamental frequency per ~30ms frame via
// autocorrelation and returns mean/std/range across frames.
func pitchStats(window []float64, sampleRate int) (mean, std, rng float64) {
	frameLen := sampleRate / 33
	if frameLen < 64 {
		frameLen = 64
	}
	var pitches []float64
	for start := 0; start+frameLen <= len(window); start += frameLen {
		frame := window[start : start+frameLen]
		if p := estimatePitch(frame, sampleRate); p > 0 {
			pitches = append(pitches, p)
		}
	}
	if len(pitches) == 0 {
		return 0, 0, 0
	}
	mean = stat.Mean(pitches, nil)
	std = stat.StdDev(pitches, nil)
	minP, maxP := pitches[0], pitches[0]
	for _, p := range pitches {
		if p < minP {
			minP = p
		}
		if p > maxP {
			maxP = p
		}
	}
	return mean, std, maxP - minP
}

// estimatePitch finds the lag of peak autocorrelation within the typical
// human voice range (80-400 Hz) and converts it to a frequency estimate.
func estimatePitch(frame []float64, sampleRate int) float64 {
	minLag := sampleRate / 400
	maxLag := sampleRate / 80
	if maxLag >= len(frame) {
		maxLag = len(frame) - 1
	}
	if minLag >= maxLag {
		return 0
	}
	bestLag := 0
	bestCorr := 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		var corr float64
		for i := 0; i+lag < len(frame); i++ {
			corr += frame[i] * frame[i+lag]
		}
		if corr > bestCorr {
			bestCorr = corr
			bestLag = lag
		}
	}
	if bestLag == 0 {
		return 0
	}
	return float64(sampleRate) / float64(bestLag)
}

// normalizeFeatures z-normalizes each dimension across the recording so
// clustering isn't dominated by a single large-magnitude feature.
func normalizeFeatures(vectors []featureVector) []featureVector {
	if len(vectors) == 0 {
		return vectors
	}
	dims := len(vectors[0])
	means := make([]float64, dims)
	stds := make([]float64, dims)
	for d := 0; d < dims; d++ {
		col := make([]float64, len(vectors))
		for i, v := range vectors {
			col[i] = v[d]
		}
		means[d] = stat.Mean(col, nil)
		stds[d] = stat.StdDev(col, nil)
	}
	out := make([]featureVector, len(vectors))
	for i, v := range vectors {
		for d := 0; d < dims; d++ {
			if stds[d] == 0 {
				out[i][d] = 0
				continue
			}
			out[i][d] = (v[d] - means[d]) / stds[d]
		}
	}
	return out
}
