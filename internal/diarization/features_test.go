package diarization

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// seekableBuffer is a minimal in-memory io.WriteSeeker, what wav.Encoder
// needs to patch the RIFF/data chunk sizes after writing samples.
type seekableBuffer struct {
	data []byte
	pos  int64
}

func (b *seekableBuffer) Write(p []byte) (int, error) {
	end := b.pos + int64(len(p))
	if end > int64(len(b.data)) {
		grown := make([]byte, end)
		copy(grown, b.data)
		b.data = grown
	}
	copy(b.data[b.pos:end], p)
	b.pos = end
	return len(p), nil
}

func (b *seekableBuffer) Seek(offset int64, whence int) (int64, error) {
	var newPos int64
	switch whence {
	case io.SeekStart:
		newPos = offset
	case io.SeekCurrent:
		newPos = b.pos + offset
	case io.SeekEnd:
		newPos = int64(len(b.data)) + offset
	default:
		return 0, errors.New("invalid whence")
	}
	if newPos < 0 {
		return 0, errors.New("negative seek position")
	}
	b.pos = newPos
	return newPos, nil
}

func synthSineWav(t *testing.T, freq float64, seconds float64, sampleRate int) []byte {
	t.Helper()
	n := int(float64(sampleRate) * seconds)
	buf := &audio.IntBuffer{
		Format: &audio.Format{SampleRate: sampleRate, NumChannels: 1},
		Data:   make([]int, n),
	}
	for i := 0; i < n; i++ {
		sample := math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
		buf.Data[i] = int(sample * 16000)
	}

	out := &seekableBuffer{}
	enc := wav.NewEncoder(out, sampleRate, 16, 1, 1)
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encode wav: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
	return out.data
}

func TestDecodeWAV_Valid(t *testing.T) {
	data := synthSineWav(t, 150, 1.0, 16000)
	samples, sampleRate, ok := decodeWAV(data)
	if !ok {
		t.Fatal("expected ok=true for a valid WAV")
	}
	if sampleRate != 16000 {
		t.Errorf("expected sample rate 16000, got %d", sampleRate)
	}
	if len(samples) == 0 {
		t.Error("expected non-empty samples")
	}
}

func TestDecodeWAV_Invalid(t *testing.T) {
	_, _, ok := decodeWAV([]byte("not a wav file"))
	if ok {
		t.Fatal("expected ok=false for garbage input")
	}
}

func TestDecodeWAV_Empty(t *testing.T) {
	_, _, ok := decodeWAV(nil)
	if ok {
		t.Fatal("expected ok=false for empty input")
	}
}

func TestExtractFeatures_EmptyWindowIsZero(t *testing.T) {
	samples := make([]float64, 100)
	v := extractFeatures(samples, 16000, 1, 0.5)
	if v != (featureVector{}) {
		t.Errorf("expected zero vector for an inverted window, got %v", v)
	}
}

func TestRMSEnergy_ConstantSignal(t *testing.T) {
	window := []float64{0.5, 0.5, 0.5, 0.5}
	if got := rmsEnergy(window); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("expected rms 0.5, got %v", got)
	}
}

func TestZeroCrossingRate_Alternating(t *testing.T) {
	window := []float64{1, -1, 1, -1, 1}
	got := zeroCrossingRate(window)
	if got <= 0 {
		t.Errorf("expected positive zero crossing rate, got %v", got)
	}
}

func TestEstimatePitch_RecoversApproximateFrequency(t *testing.T) {
	sampleRate := 16000
	freq := 150.0
	frameLen := sampleRate / 20
	frame := make([]float64, frameLen)
	for i := range frame {
		frame[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
	}
	got := estimatePitch(frame, sampleRate)
	if math.Abs(got-freq) > 20 {
		t.Errorf("expected pitch near %v Hz, got %v", freq, got)
	}
}

func TestNormalizeFeatures_ZeroMeanUnitVariance(t *testing.T) {
	vectors := []featureVector{
		{0, 10, 0, 0, 0, 0},
		{2, 20, 0, 0, 0, 0},
		{4, 30, 0, 0, 0, 0},
	}
	norm := normalizeFeatures(vectors)
	var sum float64
	for _, v := range norm {
		sum += v[0]
	}
	if math.Abs(sum) > 1e-6 {
		t.Errorf("expected normalized column to sum near zero, got %v", sum)
	}
	for _, v := range norm {
		if v[2] != 0 {
			t.Errorf("expected a constant column to normalize to zero, got %v", v[2])
		}
	}
}

func TestNormalizeFeatures_EmptyInput(t *testing.T) {
	out := normalizeFeatures(nil)
	if out != nil {
		t.Errorf("expected nil for empty input, got %v", out)
	}
}
