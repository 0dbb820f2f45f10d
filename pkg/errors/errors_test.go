// Package errors_test covers AppError, the factory functions and the
// error-chain helpers.
package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/scaffold-split/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// New / Wrap
// ─────────────────────────────────────────────────────────────────────────────

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal error", errors.CodeInternal, "unexpected failure"},
		{"sizes", errors.ErrCodeSplitSizesInvalid, "sizes (0.7, 0.2) sum to 0.9"},
		{"invalid smiles", errors.CodeMoleculeInvalidSMILES, "unclosed ring"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)

			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail)
			assert.Nil(t, ae.Cause)
		})
	}
}

func TestWrap_NilErrReturnsNil(t *testing.T) {
	t.Parallel()

	assert.Nil(t, errors.Wrap(nil, errors.CodeInternal, "should not matter"))
}

func TestWrap_CauseChainIsPreserved(t *testing.T) {
	t.Parallel()

	root := stderrors.New("dial tcp: connection refused")
	wrapped := errors.Wrap(root, errors.ErrCodeCacheError, "redis unreachable")

	require.NotNil(t, wrapped)
	assert.Equal(t, errors.ErrCodeCacheError, wrapped.Code)
	assert.Equal(t, root, stderrors.Unwrap(wrapped))
	assert.True(t, stderrors.Is(wrapped, root))
}

func TestWrap_PreservesOriginalCodeWhenCodeUnknown(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeScaffoldExtractionFailed, "extraction failed")
	outer := errors.Wrap(inner, errors.CodeUnknown, "adding context")

	assert.Equal(t, errors.ErrCodeScaffoldExtractionFailed, outer.Code)
}

func TestWrap_OverridesCodeWhenExplicit(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.CodeMoleculeInvalidSMILES, "bad smiles")
	outer := errors.Wrap(inner, errors.ErrCodeScaffoldExtractionFailed, "molecule 3")

	assert.Equal(t, errors.ErrCodeScaffoldExtractionFailed, outer.Code)
	assert.True(t, errors.IsCode(outer, errors.CodeMoleculeInvalidSMILES))
}

// ─────────────────────────────────────────────────────────────────────────────
// Error()
// ─────────────────────────────────────────────────────────────────────────────

func TestError_Format(t *testing.T) {
	t.Parallel()

	ae := errors.New(errors.ErrCodeSplitSizesInvalid, "split sizes must sum to 1")
	assert.Equal(t, "[SPL_001] split sizes must sum to 1", ae.Error())

	detailed := ae.WithDetail("train=0.7 test=0.2")
	assert.Equal(t, "[SPL_001] split sizes must sum to 1: train=0.7 test=0.2", detailed.Error())
	assert.Empty(t, ae.Detail, "WithDetail must not mutate the original")

	caused := errors.Wrap(fmt.Errorf("eof"), errors.ErrCodeDatasetParseFailed, "read failed")
	assert.Equal(t, "[DS_001] read failed <- eof", caused.Error())
}

func TestWithDetail_NilReceiver(t *testing.T) {
	t.Parallel()

	var ae *errors.AppError
	assert.Nil(t, ae.WithDetail("x"))
	assert.Nil(t, ae.WithCause(stderrors.New("x")))
}

// ─────────────────────────────────────────────────────────────────────────────
// Chain helpers
// ─────────────────────────────────────────────────────────────────────────────

func TestIsCode_TraversesFmtWrapping(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeSplitSizesInvalid, "bad sizes")
	outer := fmt.Errorf("split: %w", inner)

	assert.True(t, errors.IsCode(outer, errors.ErrCodeSplitSizesInvalid))
	assert.False(t, errors.IsCode(outer, errors.CodeInternal))
	assert.False(t, errors.IsCode(nil, errors.CodeInternal))
}

func TestGetCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(stderrors.New("plain")))
	assert.Equal(t, errors.ErrCodeDatasetParseFailed,
		errors.GetCode(fmt.Errorf("wrapped: %w", errors.New(errors.ErrCodeDatasetParseFailed, "x"))))
}

func TestNewValidationError(t *testing.T) {
	t.Parallel()

	ae := errors.NewValidationError("sizes", "must have two entries")
	assert.Equal(t, errors.ErrCodeValidation, ae.Code)
	assert.Equal(t, "field=sizes", ae.Detail)
}

//Personal.AI order the ending
