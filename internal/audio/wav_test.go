package audio

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"
)

func TestEncodeWAVHeader(t *testing.T) {
	pcm := []byte{0x01, 0x02, 0x03, 0x04}
	wav := EncodeWAV(pcm, 1, 24000, 16)

	if len(wav) != 44+len(pcm) {
		t.Fatalf("expected 44-byte header plus data, got %d bytes", len(wav))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Fatal("missing RIFF/WAVE markers")
	}
	if got := binary.LittleEndian.Uint32(wav[4:8]); got != uint32(36+len(pcm)) {
		t.Fatalf("wrong RIFF size: %d", got)
	}
	if string(wav[12:16]) != "fmt " {
		t.Fatal("missing fmt chunk")
	}
	if got := binary.LittleEndian.Uint16(wav[20:22]); got != 1 {
		t.Fatalf("expected PCM format 1, got %d", got)
	}
	if got := binary.LittleEndian.Uint16(wav[22:24]); got != 1 {
		t.Fatalf("expected 1 channel, got %d", got)
	}
	if got := binary.LittleEndian.Uint32(wav[24:28]); got != 24000 {
		t.Fatalf("expected 24kHz sample rate, got %d", got)
	}
	if got := binary.LittleEndian.Uint32(wav[28:32]); got != 48000 {
		t.Fatalf("expected byte rate 48000, got %d", got)
	}
	if got := binary.LittleEndian.Uint16(wav[34:36]); got != 16 {
		t.Fatalf("expected 16-bit depth, got %d", got)
	}
	if string(wav[36:40]) != "data" {
		t.Fatal("missing data chunk")
	}
	if got := binary.LittleEndian.Uint32(wav[40:44]); got != uint32(len(pcm)) {
		t.Fatalf("wrong data size: %d", got)
	}
	if !bytes.Equal(wav[44:], pcm) {
		t.Fatal("PCM payload should follow the header unchanged")
	}
}

func TestDataURI(t *testing.T) {
	uri := DataURI([]byte("RIFF"))
	if !strings.HasPrefix(uri, "data:audio/wav;base64,") {
		t.Fatalf("unexpected prefix: %s", uri)
	}
	if uri != "data:audio/wav;base64,UklGRg==" {
		t.Fatalf("unexpected encoding: %s", uri)
	}
}
