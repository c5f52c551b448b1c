// Package anthropic grades submissions through the Anthropic messages API.
// Whatever happens on the wire, Grade returns text: successful responses
// come back verbatim, transient failures are retried, and everything else
// degrades into a user-facing error string that flows through the pipeline
// like a normal (scoreless) response.
package anthropic

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/kirillkom/lab-grader/internal/config"
	"github.com/kirillkom/lab-grader/internal/core/domain"
	"github.com/kirillkom/lab-grader/internal/infrastructure/resilience"
)

// Fixed degradation strings for exhausted retry classes. The export layer
// shows these verbatim, so they are operator-facing copy, not error codes.
const (
	RateLimitMessage  = "⚠️ Error: the grading API kept rate limiting this request. The submission was not graded; re-run the batch to retry it."
	OverloadedMessage = "⚠️ Error: the grading API stayed overloaded. The submission was not graded; re-run the batch to retry it."
)

type Client struct {
	model     anthropic.Model
	maxTokens int64
	rubric    config.Rubric
	executor  *resilience.Executor

	create func(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error)
}

func New(apiKey, model string, maxTokens int, rubric config.Rubric, executor *resilience.Executor, opts ...option.RequestOption) *Client {
	// The SDK retries 429/5xx internally by default; the executor owns the
	// retry policy here, so SDK-level retries must stay off.
	base := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	sdk := anthropic.NewClient(append(base, opts...)...)
	return &Client{
		model:     anthropic.Model(model),
		maxTokens: int64(maxTokens),
		rubric:    rubric,
		executor:  executor,
		create: func(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
			return sdk.Messages.New(ctx, params)
		},
	}
}

// Grade makes exactly one logical model call for the submission (the
// executor may retry the transient classes underneath). The returned text
// is raw model output; scratchpad stripping and reconciliation happen in
// the caller.
func (c *Client) Grade(ctx context.Context, filename string, content domain.ExtractedContent) string {
	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			{
				Role:    anthropic.MessageParamRoleUser,
				Content: c.buildUserContent(filename, content),
			},
		},
	}

	var msg *anthropic.Message
	err := c.executor.Execute(ctx, "anthropic.grade", func(callCtx context.Context) error {
		m, err := c.create(callCtx, params)
		if err != nil {
			return err
		}
		msg = m
		return nil
	}, classifyAnthropicError)
	if err != nil {
		return degradationMessage(err)
	}

	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text
		}
	}
	return fmt.Sprintf("⚠️ Error: the model returned no text content for %s", filename)
}

// buildUserContent assembles the user turn: grading instructions and rubric
// first, then either the extracted text plus embedded images, or a single
// opaque document/image attachment.
func (c *Client) buildUserContent(filename string, content domain.ExtractedContent) []anthropic.ContentBlockParamUnion {
	blocks := []anthropic.ContentBlockParamUnion{
		anthropic.NewTextBlock(buildUserText(c.rubric, filename, content)),
	}

	if content.Inline() {
		for _, img := range content.Images {
			blocks = append(blocks, anthropic.NewImageBlockBase64(img.MediaType, base64.StdEncoding.EncodeToString(img.Data)))
		}
		return blocks
	}

	encoded := base64.StdEncoding.EncodeToString(content.RawBytes)
	if content.MediaType == "application/pdf" {
		blocks = append(blocks, anthropic.NewDocumentBlock(anthropic.Base64PDFSourceParam{Data: encoded}))
	} else {
		blocks = append(blocks, anthropic.NewImageBlockBase64(content.MediaType, encoded))
	}
	return blocks
}

func degradationMessage(err error) string {
	switch transientClass(err) {
	case classRateLimit:
		return RateLimitMessage
	case classOverloaded:
		return OverloadedMessage
	default:
		return fmt.Sprintf("⚠️ Error: %v", err)
	}
}
