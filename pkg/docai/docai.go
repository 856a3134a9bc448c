// Package docai wraps the external AI document analyzer. It exposes a narrow
// interface so the real Gemini-backed client can be swapped for a
// deterministic mock in tests and in dev mode.
package docai

import (
	"context"
	"fmt"
)

// DocumentType is what a document is claimed or judged to be.
type DocumentType string

const (
	DocumentID      DocumentType = "ID"
	DocumentLicense DocumentType = "License"
	DocumentUnknown DocumentType = "Unknown"
)

// ServiceErrorReason is the normalized reason reported whenever the analyzer
// is unreachable or returns something unparseable.
const ServiceErrorReason = "Verification service error. Please check your internet connection and try again."

// allowedMIMETypes are the document formats accepted for upload. Anything
// else is rejected locally, before any outbound call.
var allowedMIMETypes = map[string]bool{
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// SupportedMIMEType reports whether the analyzer accepts documents of the
// given MIME type.
func SupportedMIMEType(mimeType string) bool {
	return allowedMIMETypes[mimeType]
}

// VerifyRequest is one document to be judged.
type VerifyRequest struct {
	Document        []byte
	MIMEType        string
	ExpectedType    DocumentType
	ExpectedCollege string // required when ExpectedType is DocumentID
}

// VerificationResult is the analyzer's structured judgement. It is ephemeral:
// the verification service consumes it immediately and discards it.
type VerificationResult struct {
	IsValid          bool         `json:"isValid"`
	Confidence       float64      `json:"confidence"`
	DocumentType     DocumentType `json:"documentType"`
	ExtractedName    string       `json:"extractedName,omitempty"`
	ExtractedCollege string       `json:"extractedCollege,omitempty"`
	Reason           string       `json:"reason,omitempty"`
}

// ServiceErrorResult is the uniform result returned when the external call
// fails for any reason. The caller's failure path stays the same whether the
// transport broke, the response was garbage, or the call timed out.
func ServiceErrorResult() VerificationResult {
	return VerificationResult{
		IsValid:      false,
		Confidence:   0,
		DocumentType: DocumentUnknown,
		Reason:       ServiceErrorReason,
	}
}

// DocumentAnalyzer judges an uploaded document.
//
// Verify makes at most one outbound call per invocation and performs no
// retries. A non-nil error is returned only for local input problems
// (unsupported format, missing expected college); remote failures are
// normalized into the returned result instead.
type DocumentAnalyzer interface {
	Verify(ctx context.Context, req VerifyRequest) (VerificationResult, error)
	GetName() string
}

// TextGenerator produces free-text output for advisory features. No schema
// is guaranteed on the response.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// validateRequest applies the local pre-flight checks shared by all
// analyzer implementations.
func validateRequest(req VerifyRequest) error {
	if len(req.Document) == 0 {
		return fmt.Errorf("document is empty")
	}
	if !SupportedMIMEType(req.MIMEType) {
		return fmt.Errorf("unsupported document format %q: upload a JPG, PNG, WEBP image or a PDF", req.MIMEType)
	}
	switch req.ExpectedType {
	case DocumentID:
		if req.ExpectedCollege == "" {
			return fmt.Errorf("expected college is required for student ID verification")
		}
	case DocumentLicense:
		// no college check for licenses
	default:
		return fmt.Errorf("unknown expected document type %q", req.ExpectedType)
	}
	return nil
}
