package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bff-tools/receipts-pipeline/constants"
	"github.com/bff-tools/receipts-pipeline/internal/llm"
)

// ExtractText implements llm.Extractor using chat completions with the
// document attached. Images go as a base64 data URL; PDFs as a file part —
// rasterization is the provider's concern.
func (c *Client) ExtractText(ctx context.Context, req llm.ExtractRequest) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"filename", req.Filename,
		"mime_type", req.MimeType,
		"bytes", len(req.Data),
		"with_category", req.WithCategory,
	)

	prompt := llm.BuildExtractionPrompt(req.WithCategory, constants.LineItemCategories)
	body := map[string]any{
		"model":       c.cfg.Model,
		"max_tokens":  c.cfg.MaxTokens,
		"temperature": c.cfg.Temperature,
		"messages": []map[string]any{
			{"role": "system", "content": llm.ExtractionSystemPrompt},
			{"role": "user", "content": []map[string]any{
				{"type": "text", "text": prompt},
				documentPart(req),
			}},
		},
	}

	content, err := c.chat(ctx, body)
	if err != nil {
		c.logger.Error("llm.extract.failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", err
	}

	c.logger.Info("llm.extract.ok",
		"req_id", rid,
		"response_bytes", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}

// Categorize implements llm.CategoryOracle. The response is returned as-is;
// enum validation is the caller's job (classify.OracleClassifier).
func (c *Client) Categorize(ctx context.Context, req llm.CategoryRequest) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.categorize.start",
		"req_id", rid, "model", c.cfg.Model, "vendor", req.Vendor, "filename", req.Filename,
	)

	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": 0.1,
		"max_tokens":  10,
		"messages": []map[string]any{
			{"role": "system", "content": llm.CategorySystemPrompt},
			{"role": "user", "content": llm.BuildCategoryPrompt(req)},
		},
	}

	content, err := c.chat(ctx, body)
	if err != nil {
		c.logger.Error("llm.categorize.failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", err
	}

	c.logger.Info("llm.categorize.ok",
		"req_id", rid, "category", content,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}

func documentPart(req llm.ExtractRequest) map[string]any {
	data := base64.StdEncoding.EncodeToString(req.Data)
	if req.MimeType == "application/pdf" {
		return map[string]any{
			"type": "file",
			"file": map[string]any{
				"filename":  req.Filename,
				"file_data": "data:application/pdf;base64," + data,
			},
		}
	}
	return map[string]any{
		"type": "image_url",
		"image_url": map[string]any{
			"url": "data:" + req.MimeType + ";base64," + data,
		},
	}
}

// chat posts a chat/completions body and returns the first choice's trimmed
// message content.
func (c *Client) chat(ctx context.Context, body map[string]any) (string, error) {
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		return "", err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return "", fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		return "", fmt.Errorf("no choices in openai response")
	}
	return strings.TrimSpace(cc.Choices[0].Message.Content), nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai http error: %w", err)
	}
	defer func(rc io.ReadCloser) {
		if err := rc.Close(); err != nil {
			c.logger.Warn("openai response body close error", "error", err)
		}
	}(resp.Body)

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("read openai response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openai status %d: %s", resp.StatusCode, buf.String())
	}
	return buf.Bytes(), nil
}
