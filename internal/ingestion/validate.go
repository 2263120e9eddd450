package ingestion

import (
	"bytes"
	"path/filepath"
	"strings"

	"clinicrag/internal/coreerr"
	"clinicrag/internal/records"
)

const (
	maxAudioBytes    = 25 * 1024 * 1024
	maxDocumentBytes = 10 * 1024 * 1024
	maxOCRPages      = 50
	minOCRConfidence = 0.60
)

// validateAudio sniffs a WAV/MP3 magic byte signature and enforces the
// 25 MiB cap. It does not trust the caller-supplied extension alone.
func validateAudio(data []byte, filename string) error {
	if int64(len(data)) > maxAudioBytes {
		return coreerr.New(coreerr.InvalidMedia, "audio exceeds 25 MiB limit")
	}
	if ext := strings.ToLower(filepath.Ext(filename)); ext != ".wav" && ext != ".mp3" {
		return coreerr.New(coreerr.InvalidMedia, "unsupported audio extension: "+filename)
	}
	if !isWAV(data) && !isMP3(data) {
		return coreerr.New(coreerr.InvalidMedia, "unrecognized audio format: "+filename)
	}
	return nil
}

func isWAV(data []byte) bool {
	return len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE"))
}

func isMP3(data []byte) bool {
	if len(data) >= 3 && bytes.Equal(data[0:3], []byte("ID3")) {
		return true
	}
	// MP3 frame sync: 11 set bits at the start of a frame header.
	return len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0
}

// validateDocument sniffs PDF/image magic bytes and enforces the 10 MiB
// cap, returning the detected FileKind.
func validateDocument(data []byte, filename string) (records.FileKind, error) {
	if int64(len(data)) > maxDocumentBytes {
		return "", coreerr.New(coreerr.InvalidMedia, "document exceeds 10 MiB limit")
	}
	if isPDF(data) {
		return records.FileKindPdf, nil
	}
	if isImage(data) {
		return records.FileKindImage, nil
	}
	return "", coreerr.New(coreerr.InvalidMedia, "unrecognized document format: "+filename)
}

func isPDF(data []byte) bool {
	return len(data) >= 5 && bytes.Equal(data[0:5], []byte("%PDF-"))
}

func isImage(data []byte) bool {
	if len(data) >= 8 && bytes.Equal(data[0:8], []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}) {
		return true
	}
	if len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return true
	}
	return false
}
