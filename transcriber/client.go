package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"voicekey/encoder"
)

const (
	groqURL   = "https://api.groq.com/openai/v1/audio/transcriptions"
	openaiURL = "https://api.openai.com/v1/audio/transcriptions"

	groqModel   = "whisper-large-v3-turbo"
	openaiModel = "whisper-1"
)

// httpTranscriber is the single upload path shared by all providers.
// They differ only in endpoint, credential and model identifier.
type httpTranscriber struct {
	name   string
	apiURL string
	apiKey string
	model  string
	enc    encoder.Encoder
	client *TracedClient
}

func newHTTPTranscriber(name, apiURL, apiKey, model, format string) (*httpTranscriber, error) {
	enc, err := encoder.New(format)
	if err != nil {
		return nil, err
	}
	return &httpTranscriber{
		name:   name,
		apiURL: apiURL,
		apiKey: apiKey,
		model:  model,
		enc:    enc,
		client: NewTracedClient(apiURL),
	}, nil
}

// NewGroq talks to the Groq Whisper API (free tier).
func NewGroq(apiKey, format string) (Transcriber, error) {
	return newHTTPTranscriber("groq", groqURL, apiKey, groqModel, format)
}

// NewOpenAI talks to the OpenAI Whisper API (paid).
func NewOpenAI(apiKey, format string) (Transcriber, error) {
	return newHTTPTranscriber("openai", openaiURL, apiKey, openaiModel, format)
}

// NewCustom talks to any OpenAI-compatible transcription endpoint,
// e.g. a local whisper server.
func NewCustom(baseURL, apiKey, model, format string) (Transcriber, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("custom provider requires a base URL")
	}
	if model == "" {
		model = openaiModel
	}
	if apiKey == "" {
		apiKey = "not-needed"
	}
	apiURL := strings.TrimRight(baseURL, "/") + "/audio/transcriptions"
	return newHTTPTranscriber("custom", apiURL, apiKey, model, format)
}

func (t *httpTranscriber) Name() string { return t.name }

// Warm opens the TLS connection ahead of the upload so the handshake
// overlaps the recording instead of delaying the transcript.
func (t *httpTranscriber) Warm() { t.client.Warm() }

func (t *httpTranscriber) Transcribe(ctx context.Context, pcm []int16) (Result, error) {
	encodeStart := time.Now()
	audioData, err := t.enc.Encode(pcm)
	if err != nil {
		return Result{}, fmt.Errorf("encoding audio: %w", err)
	}
	encodeDur := time.Since(encodeStart)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "audio."+t.enc.Ext())
	if err != nil {
		return Result{}, err
	}
	if _, err := part.Write(audioData); err != nil {
		return Result{}, err
	}
	writer.WriteField("model", t.model)
	writer.WriteField("response_format", "json")
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, "POST", t.apiURL, &body)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Authorization", "Bearer "+t.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := t.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%s request: %w", t.name, err)
	}
	if resp.StatusCode != 200 {
		return Result{}, fmt.Errorf("%s API error %d: %s", t.name, resp.StatusCode, string(resp.Body))
	}

	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return Result{}, fmt.Errorf("%s response parse error: %w", t.name, err)
	}

	text := strings.TrimSpace(parsed.Text)
	return Result{
		Text:         text,
		NoSpeech:     text == "",
		Metrics:      resp.Metrics,
		AudioSeconds: float64(len(pcm)) / float64(encoder.SampleRate),
		RawKB:        float64(len(pcm)*2) / 1024,
		UploadKB:     float64(len(audioData)) / 1024,
		EncodeMs:     float64(encodeDur.Milliseconds()),
	}, nil
}
