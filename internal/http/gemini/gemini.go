package gemini

import (
	"context"
	"errors"
	"strings"

	"github.com/bwise1/reportnow/util"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultModel is used when GEMINI_MODEL is not set.
const DefaultModel = "gemini-2.0-flash-lite"

// Client calls the Gemini multimodal API.
type Client struct {
	genai *genai.Client
	model string
}

// NewClient creates a Gemini client. The underlying connection is shared by
// every request; call Close on shutdown.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	return &Client{genai: client, model: model}, nil
}

// Generate sends the prompt and the inline image, returning the text of the
// first candidate.
func (c *Client) Generate(ctx context.Context, prompt string, image util.DataURL) (string, error) {
	m := c.genai.GenerativeModel(c.model)

	resp, err := m.GenerateContent(ctx,
		genai.Text(prompt),
		genai.Blob{MIMEType: image.MimeType, Data: image.Data},
	)
	if err != nil {
		return "", err
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		var sb strings.Builder
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
		if sb.Len() > 0 {
			return sb.String(), nil
		}
	}

	return "", errors.New("model returned no text")
}

func (c *Client) Model() string {
	return c.model
}

func (c *Client) Close() error {
	return c.genai.Close()
}
