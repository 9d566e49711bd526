package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"dictate/encoder"
)

const groqAPIURL = "https://api.groq.com/openai/v1/audio/transcriptions"

type Groq struct {
	client *http.Client
	apiURL string
	apiKey string
	model  string
	lang   string
}

func NewGroq(apiKey string) *Groq {
	return &Groq{
		client: &http.Client{Timeout: 60 * time.Second},
		apiURL: groqAPIURL,
		apiKey: apiKey,
		model:  "whisper-large-v3-turbo",
	}
}

func (g *Groq) Name() string            { return "groq" }
func (g *Groq) SetLanguage(lang string) { g.lang = lang }
func (g *Groq) Language() string        { return g.lang }

type groqResponse struct {
	Text     string `json:"text"`
	Segments []struct {
		Text         string  `json:"text"`
		NoSpeechProb float64 `json:"no_speech_prob"`
	} `json:"segments"`
}

func (g *Groq) Transcribe(ctx context.Context, samples []int16) (string, error) {
	enc, err := encoder.NewFlac()
	if err != nil {
		return "", fmt.Errorf("preparing audio: %w", err)
	}
	audioData, err := encoder.Encode(enc, samples)
	if err != nil {
		return "", fmt.Errorf("encoding audio: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "audio.flac")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(audioData); err != nil {
		return "", err
	}

	writer.WriteField("model", g.model)
	writer.WriteField("response_format", "verbose_json")
	if g.lang != "" {
		writer.WriteField("language", g.lang)
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, "POST", g.apiURL, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotReady, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", ErrNotReady, err)
	}
	if resp.StatusCode != 200 {
		return "", fmt.Errorf("%w: groq API error %d: %s", ErrNotReady, resp.StatusCode, string(respBody))
	}

	var gResp groqResponse
	if err := json.Unmarshal(respBody, &gResp); err != nil {
		return "", fmt.Errorf("groq response parse error: %w", err)
	}

	text := strings.TrimSpace(gResp.Text)
	if text == "" {
		return "", ErrNoSpeech
	}
	return text, nil
}
