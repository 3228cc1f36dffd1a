package storage

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/kshitijlau/AIPM/internal/domain"
)

var testLimits = Limits{Transcript: 64, Audio: 128}

func TestReadUploadClassifies(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
		want     domain.UploadKind
	}{
		{"text by extension", "notes.txt", []byte("hello"), domain.UploadTranscript},
		{"upper-case extension", "NOTES.TXT", []byte("hello"), domain.UploadTranscript},
		{"mp3", "call.mp3", []byte("ID3\x03\x00fake"), domain.UploadAudio},
		{"m4a", "call.m4a", []byte("fake"), domain.UploadAudio},
		{"wav", "call.wav", []byte("RIFF"), domain.UploadAudio},
		{"sniffed text without extension", "transcript", []byte("plain words here"), domain.UploadTranscript},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upload, err := ReadUpload(bytes.NewReader(tt.data), tt.filename, testLimits)
			if err != nil {
				t.Fatalf("ReadUpload() error = %v", err)
			}
			if upload.Kind != tt.want {
				t.Fatalf("Kind = %q, want %q", upload.Kind, tt.want)
			}
			if !bytes.Equal(upload.Data, tt.data) {
				t.Fatalf("Data = %q, want %q", upload.Data, tt.data)
			}
		})
	}
}

func TestReadUploadRejects(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
	}{
		{"unsupported extension", "slides.pdf", []byte("%PDF-1.4")},
		{"transcript over limit", "notes.txt", bytes.Repeat([]byte("a"), 65)},
		{"audio over ceiling", "call.mp3", bytes.Repeat([]byte("a"), 129)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadUpload(bytes.NewReader(tt.data), tt.filename, testLimits)
			var decodeErr *domain.InputDecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("error = %v, want InputDecodeError", err)
			}
		})
	}
}

func TestDecodeTranscript(t *testing.T) {
	text, err := DecodeTranscript(domain.Upload{Name: "a.txt", Data: []byte("\xEF\xBB\xBFTeam agreed to add CSV export.")})
	if err != nil {
		t.Fatalf("DecodeTranscript() error = %v", err)
	}
	if text != "Team agreed to add CSV export." {
		t.Fatalf("text = %q", text)
	}
}

func TestDecodeTranscriptInvalidUTF8(t *testing.T) {
	_, err := DecodeTranscript(domain.Upload{Name: "bad.txt", Data: []byte{0xff, 0xfe, 0x41}})
	var decodeErr *domain.InputDecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("error = %v, want InputDecodeError", err)
	}
	if !strings.Contains(err.Error(), "UTF-8") {
		t.Fatalf("error %q should mention UTF-8", err)
	}
}

func TestDecodeTranscriptBlank(t *testing.T) {
	if _, err := DecodeTranscript(domain.Upload{Name: "blank.txt", Data: []byte(" \n\t")}); err == nil {
		t.Fatal("expected error for blank transcript")
	}
}
