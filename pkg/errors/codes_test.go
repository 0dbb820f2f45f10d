package errors

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode_String(t *testing.T) {
	assert.Equal(t, "COMMON_001", ErrCodeInternal.String())
}

func TestHTTPStatusForCode(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected int
	}{
		{ErrCodeInternal, 500},
		{ErrCodeBadRequest, 400},
		{ErrCodeValidation, 422},
		{ErrCodeSplitSizesInvalid, 400},
		{ErrCodeScaffoldExtractionFailed, 422},
		{ErrCodeDatasetParseFailed, 400},
		{ErrorCode("UNKNOWN"), 500},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, HTTPStatusForCode(tt.code), tt.code.String())
	}
}

func TestDefaultMessageForCode(t *testing.T) {
	assert.Equal(t, "internal server error", DefaultMessageForCode(ErrCodeInternal))
	assert.Equal(t, "split sizes must sum to 1", DefaultMessageForCode(ErrCodeSplitSizesInvalid))
	assert.Equal(t, "unknown error", DefaultMessageForCode(ErrorCode("UNKNOWN")))
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(ErrCodeSplitSizesInvalid))
	assert.False(t, IsClientError(ErrCodeInternal))
}

func TestModuleForCode(t *testing.T) {
	assert.Equal(t, "COMMON", ModuleForCode(ErrCodeInternal))
	assert.Equal(t, "MOL", ModuleForCode(ErrCodeMoleculeInvalidSMILES))
	assert.Equal(t, "SPL", ModuleForCode(ErrCodeScaffoldExtractionFailed))
	assert.Equal(t, "DS", ModuleForCode(ErrCodeDatasetParseFailed))
	assert.Equal(t, "UNKNOWN", ModuleForCode(ErrorCode("")))
}

func TestErrorCodeFormat_Convention(t *testing.T) {
	re := regexp.MustCompile(`^[A-Z]+_\d{3}$`)
	for code := range ErrorCodeHTTPStatus {
		assert.Regexp(t, re, code.String())
		_, hasMsg := ErrorCodeMessage[code]
		assert.True(t, hasMsg, "code %s has no default message", code)
	}
}

//Personal.AI order the ending
