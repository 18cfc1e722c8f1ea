package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"github.com/gin-gonic/gin"
)

// speaker turns text into MP3 audio.
type speaker interface {
	synthesize(ctx context.Context, text string) ([]byte, error)
}

// cloudSpeaker synthesizes with Google Cloud Text-to-Speech. Credentials come
// from the ambient application default credentials.
type cloudSpeaker struct {
	client *texttospeech.Client
}

func newCloudSpeaker(ctx context.Context) (*cloudSpeaker, error) {
	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create text-to-speech client: %w", err)
	}
	return &cloudSpeaker{client: client}, nil
}

func (s *cloudSpeaker) close() error { return s.client.Close() }

func (s *cloudSpeaker) synthesize(ctx context.Context, text string) ([]byte, error) {
	req := texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: "en-US",
			Name:         "en-US-Chirp3-HD-Kore",
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
			SpeakingRate:  1.05,
		},
	}
	resp, err := s.client.SynthesizeSpeech(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("synthesize speech: %w", err)
	}
	return resp.AudioContent, nil
}

/* ─── Text cleaning ──────────────────────────────────────────────────── */

const (
	maxSpeechRunes = 800
	speechPrefix   = "Briefing: "
)

var (
	markdownSymbols = regexp.MustCompile("[#*_~`\\[\\]()>]")
	repeatedSigns   = regexp.MustCompile(`[-+]{2,}`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
)

// cleanSpeechText strips markdown, collapses runs of -/+ and whitespace, and
// truncates to maxSpeechRunes. Returns "" when nothing speakable is left.
func cleanSpeechText(text string) string {
	text = markdownSymbols.ReplaceAllString(text, "")
	text = repeatedSigns.ReplaceAllString(text, "-")
	text = whitespaceRun.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)
	if r := []rune(text); len(r) > maxSpeechRunes {
		text = string(r[:maxSpeechRunes])
	}
	return text
}

// coachSpeak reads a coach reply aloud.
// POST /api/coach/speak. Body: { "text": "..." }.
// Returns { "audio": "<base64 mp3>", "mime_type": "audio/mpeg" }.
func (h *Handler) coachSpeak(c *gin.Context) {
	if h.speaker == nil {
		apiError(c, http.StatusServiceUnavailable, "text-to-speech not enabled")
		return
	}

	var body struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	text := cleanSpeechText(body.Text)
	if text == "" {
		apiError(c, http.StatusBadRequest, "nothing to speak")
		return
	}

	audio, err := h.speaker.synthesize(c.Request.Context(), speechPrefix+text)
	if err != nil {
		log.Printf("[coachSpeak] %v", err)
		apiError(c, http.StatusBadGateway, "speech synthesis failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"audio":     base64.StdEncoding.EncodeToString(audio),
		"mime_type": "audio/mpeg",
	})
}
