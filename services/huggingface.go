package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const huggingFaceBaseURL = "https://api-inference.huggingface.co/models"

// HuggingFaceClient generates text through the Hugging Face inference API.
type HuggingFaceClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

func NewHuggingFaceClient(apiKey, model string, httpClient *http.Client) *HuggingFaceClient {
	return &HuggingFaceClient{
		apiKey:     apiKey,
		model:      model,
		baseURL:    huggingFaceBaseURL,
		httpClient: httpClient,
	}
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	ReturnFullText bool    `json:"return_full_text"`
}

type hfResponse []struct {
	GeneratedText string `json:"generated_text"`
}

func (c *HuggingFaceClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	reqBody := hfRequest{
		// Mistral-style instruction wrapping.
		Inputs: "[INST] " + strings.TrimSpace(prompt) + " [/INST]",
		Parameters: hfParameters{
			MaxNewTokens:   1500,
			Temperature:    0.6,
			ReturnFullText: false,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/%s", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusServiceUnavailable {
		return "", fmt.Errorf("huggingface model %s is loading", c.model)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &httpStatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var hfResp hfResponse
	if err := json.Unmarshal(body, &hfResp); err != nil {
		return "", fmt.Errorf("failed to parse huggingface response: %w", err)
	}

	if len(hfResp) == 0 || strings.TrimSpace(hfResp[0].GeneratedText) == "" {
		return "", ErrEmptyGeneration
	}

	return hfResp[0].GeneratedText, nil
}
