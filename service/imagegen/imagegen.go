package imagegen

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/disintegration/imaging"
	"github.com/minters-xyz/go-minters/env"
	"github.com/minters-xyz/go-minters/service/logger"
)

const (
	huggingFaceEndpoint  = "https://api-inference.huggingface.co/models/stabilityai/stable-diffusion-2-1"
	stabilityEndpoint    = "https://api.stability.ai/v2beta/stable-image/generate/core"
	pollinationsEndpoint = "https://image.pollinations.ai/prompt"

	outputSize = 512
)

// ErrProviderFailed is returned when an image synthesis provider responds
// with a non-success status
type ErrProviderFailed struct {
	Provider string
	Status   int
}

func (e ErrProviderFailed) Error() string {
	return fmt.Sprintf("%s returned status %d", e.Provider, e.Status)
}

// Generator synthesizes images from prompts, preferring a keyed provider and
// falling back to the keyless one when it fails
type Generator struct {
	httpClient *http.Client

	// overridable for tests
	huggingFaceURL  string
	stabilityURL    string
	pollinationsURL string
}

// NewGenerator creates a generator using the given HTTP client
func NewGenerator(httpClient *http.Client) *Generator {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 0}
	}
	return &Generator{
		httpClient:      httpClient,
		huggingFaceURL:  huggingFaceEndpoint,
		stabilityURL:    stabilityEndpoint,
		pollinationsURL: pollinationsEndpoint,
	}
}

// Generate synthesizes an image for the prompt and normalizes it to a
// 512x512 center-cropped PNG
func (g *Generator) Generate(ctx context.Context, prompt string) ([]byte, error) {
	raw, err := g.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return squareCrop(raw)
}

// generate picks a provider following the configured selector and available
// keys; HuggingFace failures fall back to the keyless provider
func (g *Generator) generate(ctx context.Context, prompt string) ([]byte, error) {
	provider := env.GetString("IMAGE_PROVIDER")
	hfKey := env.GetString("HUGGINGFACE_API_KEY")
	stabilityKey := env.GetString("STABILITY_API_KEY")

	if stabilityKey != "" && provider == "stability" {
		logger.For(ctx).Info("generating image with Stability AI")
		return g.generateStability(ctx, prompt, stabilityKey)
	}

	if hfKey != "" {
		logger.For(ctx).Info("generating image with Hugging Face")
		img, err := g.generateHuggingFace(ctx, prompt, hfKey)
		if err == nil {
			return img, nil
		}
		logger.For(ctx).Warnf("Hugging Face failed, falling back to Pollinations: %s", err)
		return g.generatePollinations(ctx, prompt)
	}

	if stabilityKey != "" {
		logger.For(ctx).Info("generating image with Stability AI")
		return g.generateStability(ctx, prompt, stabilityKey)
	}

	logger.For(ctx).Info("no provider keys found, generating image with Pollinations")
	return g.generatePollinations(ctx, prompt)
}

func (g *Generator) generateHuggingFace(ctx context.Context, prompt, key string) ([]byte, error) {
	payload := fmt.Sprintf(`{"inputs":%q}`, prompt)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.huggingFaceURL, bytes.NewBufferString(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", key))
	req.Header.Set("Content-Type", "application/json")

	return g.fetchImage(req, "Hugging Face")
}

func (g *Generator) generateStability(ctx context.Context, prompt, key string) ([]byte, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("prompt", prompt); err != nil {
		return nil, err
	}
	if err := writer.WriteField("output_format", "png"); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.stabilityURL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", key))
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "image/*")

	return g.fetchImage(req, "Stability AI")
}

func (g *Generator) generatePollinations(ctx context.Context, prompt string) ([]byte, error) {
	imageURL := fmt.Sprintf("%s/%s?model=turbo", g.pollinationsURL, url.PathEscape(prompt))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}

	return g.fetchImage(req, "Pollinations")
}

func (g *Generator) fetchImage(req *http.Request, provider string) ([]byte, error) {
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrProviderFailed{Provider: provider, Status: resp.StatusCode}
	}

	return io.ReadAll(resp.Body)
}

// squareCrop center-crops the image to the standard square output and
// re-encodes it as PNG
func squareCrop(raw []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode generated image: %w", err)
	}

	cropped := imaging.Fill(img, outputSize, outputSize, imaging.Center, imaging.Lanczos)

	out := &bytes.Buffer{}
	if err := imaging.Encode(out, cropped, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode generated image: %w", err)
	}

	return out.Bytes(), nil
}
