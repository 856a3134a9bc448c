package docai

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validIDRequest() VerifyRequest {
	return VerifyRequest{
		Document:        []byte("fake-image-bytes"),
		MIMEType:        "image/jpeg",
		ExpectedType:    DocumentID,
		ExpectedCollege: "City College",
	}
}

func TestVerify_RejectsUnsupportedFormatLocally(t *testing.T) {
	mock := NewMockAnalyzer()

	req := validIDRequest()
	req.MIMEType = "text/html"

	_, err := mock.Verify(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported document format")

	// No call reaches the analyzer on a local rejection.
	assert.Equal(t, 0, mock.CallCount())
}

func TestVerify_RejectsEmptyDocument(t *testing.T) {
	mock := NewMockAnalyzer()

	req := validIDRequest()
	req.Document = nil

	_, err := mock.Verify(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, 0, mock.CallCount())
}

func TestVerify_RequiresCollegeForStudentID(t *testing.T) {
	mock := NewMockAnalyzer()

	req := validIDRequest()
	req.ExpectedCollege = ""

	_, err := mock.Verify(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected college")
}

func TestVerify_LicenseNeedsNoCollege(t *testing.T) {
	mock := NewMockAnalyzer()

	req := VerifyRequest{
		Document:     []byte("fake-pdf-bytes"),
		MIMEType:     "application/pdf",
		ExpectedType: DocumentLicense,
	}

	result, err := mock.Verify(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Equal(t, DocumentLicense, result.DocumentType)
	assert.Equal(t, 1, mock.CallCount())
}

func TestSupportedMIMEType(t *testing.T) {
	supported := []string{"image/jpeg", "image/jpg", "image/png", "image/webp", "application/pdf"}
	for _, mt := range supported {
		assert.True(t, SupportedMIMEType(mt), mt)
	}

	unsupported := []string{"image/gif", "text/plain", "application/zip", ""}
	for _, mt := range unsupported {
		assert.False(t, SupportedMIMEType(mt), mt)
	}
}

func TestParseVerificationResponse_Valid(t *testing.T) {
	data := []byte(`{"isValid": true, "confidence": 0.92, "documentType": "ID", "extractedName": "Jane Doe", "extractedCollege": "City College"}`)

	result := parseVerificationResponse(data, DocumentID)

	assert.True(t, result.IsValid)
	assert.InDelta(t, 0.92, result.Confidence, 0.0001)
	assert.Equal(t, DocumentID, result.DocumentType)
	assert.Equal(t, "Jane Doe", result.ExtractedName)
}

func TestParseVerificationResponse_MissingDocumentTypeFallsBack(t *testing.T) {
	data := []byte(`{"isValid": false, "confidence": 0.3, "documentType": "", "reason": "blurry"}`)

	result := parseVerificationResponse(data, DocumentLicense)

	assert.Equal(t, DocumentLicense, result.DocumentType)
	assert.Equal(t, "blurry", result.Reason)
}

func TestParseVerificationResponse_GarbageNormalizesToServiceError(t *testing.T) {
	result := parseVerificationResponse([]byte("I am not JSON"), DocumentID)

	assert.False(t, result.IsValid)
	assert.Zero(t, result.Confidence)
	assert.Equal(t, DocumentUnknown, result.DocumentType)
	assert.Equal(t, ServiceErrorReason, result.Reason)
}

func TestParseVerificationResponse_ClampsConfidence(t *testing.T) {
	result := parseVerificationResponse([]byte(`{"isValid": true, "confidence": 1.7, "documentType": "ID"}`), DocumentID)
	assert.Equal(t, 1.0, result.Confidence)

	result = parseVerificationResponse([]byte(`{"isValid": false, "confidence": -0.2, "documentType": "ID"}`), DocumentID)
	assert.Zero(t, result.Confidence)
}

func TestVerificationPrompt_StudentID(t *testing.T) {
	prompt := verificationPrompt(validIDRequest())

	assert.Contains(t, prompt, "College Student ID")
	assert.Contains(t, prompt, `"City College"`)
	assert.Contains(t, prompt, "minor typos or abbreviations")
	assert.NotContains(t, prompt, "Expiration Date")
}

func TestVerificationPrompt_License(t *testing.T) {
	prompt := verificationPrompt(VerifyRequest{
		Document:     []byte("x"),
		MIMEType:     "image/png",
		ExpectedType: DocumentLicense,
	})

	assert.Contains(t, prompt, "Driving License")
	assert.Contains(t, prompt, "Expiration Date")
	assert.False(t, strings.Contains(prompt, "college"), "license prompt must not mention a college check")
}

func TestServiceErrorResult(t *testing.T) {
	result := ServiceErrorResult()

	assert.False(t, result.IsValid)
	assert.Zero(t, result.Confidence)
	assert.Equal(t, DocumentUnknown, result.DocumentType)
	assert.NotEmpty(t, result.Reason)
}
