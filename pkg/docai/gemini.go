package docai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-3-flash-preview"

// DefaultTimeout bounds a single analyzer call. A timed-out call feeds the
// same normalized failure path as any other service error.
const DefaultTimeout = 30 * time.Second

// GeminiConfig holds configuration for the Gemini document analyzer.
type GeminiConfig struct {
	APIKey  string
	Model   string        // defaults to DefaultModel
	Timeout time.Duration // defaults to DefaultTimeout
}

// GeminiAnalyzer implements DocumentAnalyzer and TextGenerator on the Gemini
// API.
type GeminiAnalyzer struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiAnalyzer creates a Gemini-backed analyzer. Close must be called
// when the analyzer is no longer needed.
func NewGeminiAnalyzer(ctx context.Context, cfg GeminiConfig) (*GeminiAnalyzer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &GeminiAnalyzer{
		client:  client,
		model:   model,
		timeout: timeout,
	}, nil
}

// Close releases the underlying API client.
func (a *GeminiAnalyzer) Close() error {
	return a.client.Close()
}

// GetName returns the name of this analyzer implementation
func (a *GeminiAnalyzer) GetName() string {
	return fmt.Sprintf("Gemini Document Analyzer (%s)", a.model)
}

// Verify sends the document and a structured-output prompt to Gemini and
// returns its judgement. Exactly one outbound call is made; transport and
// parse failures are normalized into ServiceErrorResult rather than
// returned as errors.
func (a *GeminiAnalyzer) Verify(ctx context.Context, req VerifyRequest) (VerificationResult, error) {
	if err := validateRequest(req); err != nil {
		return VerificationResult{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	model := a.client.GenerativeModel(a.model)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = verificationSchema()

	resp, err := model.GenerateContent(ctx,
		genai.Blob{MIMEType: req.MIMEType, Data: req.Document},
		genai.Text(verificationPrompt(req)),
	)
	if err != nil {
		return ServiceErrorResult(), nil
	}

	text, ok := firstTextPart(resp)
	if !ok {
		return ServiceErrorResult(), nil
	}

	return parseVerificationResponse([]byte(text), req.ExpectedType), nil
}

// GenerateText sends a free-text prompt and returns the raw response text.
func (a *GeminiAnalyzer) GenerateText(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	model := a.client.GenerativeModel(a.model)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text, ok := firstTextPart(resp)
	if !ok {
		return "", fmt.Errorf("no text content in response")
	}

	return text, nil
}

// verificationPrompt builds the analysis instruction for one document. The
// college-match tolerance (typos, abbreviations) is delegated to the model.
func verificationPrompt(req VerifyRequest) string {
	var b strings.Builder

	docName := "Driving License"
	if req.ExpectedType == DocumentID {
		docName = "College Student ID"
	}

	fmt.Fprintf(&b, "Analyze this document (%s). We are looking for a %s.\n", req.MIMEType, docName)

	if req.ExpectedType == DocumentID {
		fmt.Fprintf(&b, "CRITICAL: The user claims to be from %q. Verify if this ID card matches this college specifically.\n", req.ExpectedCollege)
		b.WriteString("\nVerify if it is valid, extract the full name and College Name.\n")
	} else {
		b.WriteString("\nVerify if it is valid, extract the full name and Expiration Date.\n")
	}

	b.WriteString("\nRules for isValid:\n")
	fmt.Fprintf(&b, "1. The document must be clearly a %s.\n", docName)
	if req.ExpectedType == DocumentID {
		fmt.Fprintf(&b, "2. The college name on the card MUST match %q (allow for minor typos or abbreviations).\n", req.ExpectedCollege)
	}
	b.WriteString("3. The image must be clear enough to read.\n")
	b.WriteString("\nReturn a JSON object indicating validity, extracted data, and a confidence score (0-1). If invalid, provide a clear reason.")

	return b.String()
}

// verificationSchema constrains the model to the structured response the
// caller parses. isValid, confidence and documentType are mandatory.
func verificationSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"isValid":          {Type: genai.TypeBoolean},
			"extractedName":    {Type: genai.TypeString},
			"extractedCollege": {Type: genai.TypeString},
			"documentType":     {Type: genai.TypeString},
			"confidence":       {Type: genai.TypeNumber},
			"reason":           {Type: genai.TypeString},
		},
		Required: []string{"isValid", "confidence", "documentType"},
	}
}

// parseVerificationResponse decodes the model's JSON judgement. Anything
// unparseable degrades to the normalized service-error result.
func parseVerificationResponse(data []byte, expectedType DocumentType) VerificationResult {
	var result VerificationResult
	if err := json.Unmarshal(data, &result); err != nil {
		return ServiceErrorResult()
	}

	if result.DocumentType == "" {
		result.DocumentType = expectedType
	}
	if result.Confidence < 0 {
		result.Confidence = 0
	}
	if result.Confidence > 1 {
		result.Confidence = 1
	}

	return result
}

// firstTextPart extracts the first text part of a Gemini response.
func firstTextPart(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", false
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			return string(text), true
		}
	}
	return "", false
}
