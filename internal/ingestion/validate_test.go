package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinicrag/internal/coreerr"
	"clinicrag/internal/records"
)

func wavHeader() []byte {
	data := make([]byte, 44)
	copy(data[0:4], "RIFF")
	copy(data[8:12], "WAVE")
	return data
}

func TestValidateAudio_AcceptsWAV(t *testing.T) {
	require.NoError(t, validateAudio(wavHeader(), "consulta.wav"))
}

func TestValidateAudio_AcceptsMP3ID3(t *testing.T) {
	data := append([]byte("ID3"), make([]byte, 10)...)
	require.NoError(t, validateAudio(data, "consulta.mp3"))
}

func TestValidateAudio_RejectsGarbage(t *testing.T) {
	err := validateAudio([]byte("not audio"), "consulta.wav")
	require.Error(t, err)
	assert.Equal(t, coreerr.InvalidMedia, coreerr.KindOf(err))
}

func TestValidateAudio_RejectsOversized(t *testing.T) {
	data := wavHeader()
	oversized := make([]byte, maxAudioBytes+1)
	copy(oversized, data)
	err := validateAudio(oversized, "consulta.wav")
	require.Error(t, err)
	assert.Equal(t, coreerr.InvalidMedia, coreerr.KindOf(err))
}

func TestValidateDocument_AcceptsPDF(t *testing.T) {
	data := append([]byte("%PDF-1.4"), make([]byte, 10)...)
	kind, err := validateDocument(data, "examen.pdf")
	require.NoError(t, err)
	assert.Equal(t, records.FileKindPdf, kind)
}

func TestValidateDocument_AcceptsPNG(t *testing.T) {
	data := append([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 10)...)
	kind, err := validateDocument(data, "examen.png")
	require.NoError(t, err)
	assert.Equal(t, records.FileKindImage, kind)
}

func TestValidateDocument_RejectsUnknownFormat(t *testing.T) {
	_, err := validateDocument([]byte("plain text file"), "notes.txt")
	require.Error(t, err)
	assert.Equal(t, coreerr.InvalidMedia, coreerr.KindOf(err))
}
