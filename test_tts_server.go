//go:build ignore

// Standalone mock TTS server for local pipeline testing. Run with:
//
//	go run test_tts_server.go
//
// and point the http engine at http://localhost:9000/synthesize.
package main

import (
	"encoding/json"
	"log"
	"math"
	"net/http"
	"time"
)

type SynthesizeRequest struct {
	Text     string `json:"text"`
	Voice    string `json:"voice"`
	Language string `json:"language"`
}

const sampleRate = 22050

func synthesizeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SynthesizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Error parsing request", http.StatusBadRequest)
		return
	}

	log.Printf("🎤 SYNTHESIS REQUEST RECEIVED:")
	log.Printf("    Voice: %s", req.Voice)
	log.Printf("    Language: %s", req.Language)
	log.Printf("    Text: %q", req.Text)

	// Simulate processing time
	time.Sleep(100 * time.Millisecond)

	// 50 ms of fake speech per character, 250 ms minimum
	durationMS := 50 * len(req.Text)
	if durationMS < 250 {
		durationMS = 250
	}
	wav := fakeSpeechWAV(durationMS)

	w.Header().Set("Content-Type", "audio/wav")
	w.WriteHeader(http.StatusOK)
	w.Write(wav)

	log.Printf("✅ SENT %d ms of audio (%d bytes)", durationMS, len(wav))
	log.Println("---")
}

// fakeSpeechWAV builds a quiet 220 Hz tone so stitched output is audible
// but obviously synthetic.
func fakeSpeechWAV(durationMS int) []byte {
	n := sampleRate * durationMS / 1000
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = int16(4000 * math.Sin(2*math.Pi*220*float64(i)/sampleRate))
	}

	data := make([]byte, 44+2*len(samples))
	copy(data[0:4], "RIFF")
	putUint32(data[4:8], uint32(36+2*len(samples)))
	copy(data[8:12], "WAVE")
	copy(data[12:16], "fmt ")
	putUint32(data[16:20], 16)
	putUint16(data[20:22], 1) // PCM
	putUint16(data[22:24], 1) // mono
	putUint32(data[24:28], sampleRate)
	putUint32(data[28:32], sampleRate*2)
	putUint16(data[32:34], 2)
	putUint16(data[34:36], 16)
	copy(data[36:40], "data")
	putUint32(data[40:44], uint32(2*len(samples)))
	for i, s := range samples {
		putUint16(data[44+2*i:], uint16(s))
	}
	return data
}

func putUint16(b []byte, v uint16) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
}

func putUint32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func main() {
	http.HandleFunc("/synthesize", synthesizeHandler)

	port := ":9000"
	log.Printf("🚀 Mock TTS Server starting on port %s", port)
	log.Printf("📡 Endpoint: http://localhost%s/synthesize", port)
	log.Println("💡 Update your config to use: http://localhost:9000/synthesize")

	if err := http.ListenAndServe(port, nil); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}
