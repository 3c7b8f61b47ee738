package speech

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hammamikhairi/voicenotify/internal/logger"
)

const userAgent = "VoiceNotify/1.0"

// AzureOption configures AzureClient.
type AzureOption func(*AzureClient)

// WithVoice sets the neural voice. Its locale prefix also becomes the SSML
// language.
func WithVoice(voice string) AzureOption {
	return func(c *AzureClient) {
		c.voice = voice
	}
}

// WithAudioFormat sets the X-Microsoft-OutputFormat header.
func WithAudioFormat(format string) AzureOption {
	return func(c *AzureClient) {
		c.format = format
	}
}

// WithRate sets the prosody rate, e.g. "+10%" or "slow". Empty leaves the
// voice default.
func WithRate(rate string) AzureOption {
	return func(c *AzureClient) {
		c.rate = rate
	}
}

func WithHTTPTimeout(d time.Duration) AzureOption {
	return func(c *AzureClient) {
		c.http.Timeout = d
	}
}

// WithEndpoint overrides the URL derived from the region.
func WithEndpoint(url string) AzureOption {
	return func(c *AzureClient) {
		c.endpoint = url
	}
}

var _ Synthesizer = (*AzureClient)(nil)

// StatusError is a non-200 reply from the synthesis endpoint.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("azure tts error %d: %s", e.Code, e.Body)
}

// Retryable reports whether the request may succeed if sent again.
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// AzureClient is a Synthesizer backed by the Azure Speech REST API.
type AzureClient struct {
	key      string
	endpoint string
	voice    string
	format   string
	rate     string
	http     *http.Client
	log      *logger.Logger
}

func NewAzureClient(key, region string, log *logger.Logger, opts ...AzureOption) *AzureClient {
	c := &AzureClient{
		key:      key,
		endpoint: fmt.Sprintf("https://%s.tts.speech.microsoft.com/cognitiveservices/v1", region),
		voice:    DefaultVoice,
		format:   DefaultAudioFormat,
		http:     &http.Client{Timeout: 30 * time.Second},
		log:      log.With("azure"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *AzureClient) Voice() string { return c.voice }

// Synthesize returns the audio for text in the configured format. A
// retryable status is tried once more.
func (c *AzureClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	body, err := c.ssml(text)
	if err != nil {
		return nil, err
	}

	audio, err := c.post(ctx, body)
	var status *StatusError
	if errors.As(err, &status) && status.Retryable() {
		c.log.Warn("status %d, retrying once", status.Code)
		audio, err = c.post(ctx, body)
	}
	if err != nil {
		return nil, err
	}

	c.log.Debug("%d chars -> %d bytes (%s)", len([]rune(text)), len(audio), c.voice)
	return audio, nil
}

func (c *AzureClient) post(ctx context.Context, ssml []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(ssml))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)
	req.Header.Set("Content-Type", "application/ssml+xml")
	req.Header.Set("X-Microsoft-OutputFormat", c.format)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading audio: %w", err)
	}
	return audio, nil
}

type ssmlSpeak struct {
	XMLName xml.Name  `xml:"speak"`
	Version string    `xml:"version,attr"`
	Lang    string    `xml:"xml:lang,attr"`
	Voice   ssmlVoice `xml:"voice"`
}

type ssmlVoice struct {
	Name    string       `xml:"name,attr"`
	Text    string       `xml:",chardata"`
	Prosody *ssmlProsody `xml:"prosody,omitempty"`
}

type ssmlProsody struct {
	Rate string `xml:"rate,attr"`
	Text string `xml:",chardata"`
}

// ssml builds the request document. Notification text is arbitrary and is
// escaped by the encoder.
func (c *AzureClient) ssml(text string) ([]byte, error) {
	doc := ssmlSpeak{
		Version: "1.0",
		Lang:    voiceLocale(c.voice),
		Voice:   ssmlVoice{Name: c.voice},
	}
	if c.rate != "" {
		doc.Voice.Prosody = &ssmlProsody{Rate: c.rate, Text: text}
	} else {
		doc.Voice.Text = text
	}

	out, err := xml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding ssml: %w", err)
	}
	return out, nil
}

// voiceLocale returns the "xx-YY" prefix of a voice name such as
// "en-GB-SoniaNeural", or en-US when there is none.
func voiceLocale(voice string) string {
	parts := strings.SplitN(voice, "-", 3)
	if len(parts) < 3 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return "en-US"
	}
	return parts[0] + "-" + parts[1]
}
