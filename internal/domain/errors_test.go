package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_KeepsKindAndAddsContext(t *testing.T) {
	err := InvalidInputError("invalid file type, expected a .pdf document", ErrInvalidExtension)

	got := Classify(err, StageValidate, "id.txt")

	require.NotNil(t, got)
	assert.Equal(t, KindInvalidInput, got.Kind)
	assert.Equal(t, StageValidate, got.Stage)
	assert.Equal(t, "id.txt", got.Filename)
	assert.ErrorIs(t, got, ErrInvalidExtension)

	// the original is left untouched
	assert.Empty(t, err.Stage)
	assert.Empty(t, err.Filename)
}

func TestClassify_WrappedDomainError(t *testing.T) {
	inner := ParseError("model response is not valid JSON", nil)
	wrapped := fmt.Errorf("parse stage: %w", inner)

	got := Classify(wrapped, StageParse, "card.pdf")

	assert.Equal(t, KindParseFailure, got.Kind)
	assert.Equal(t, StageParse, got.Stage)
}

func TestClassify_UnknownErrorIsInternalFault(t *testing.T) {
	cause := errors.New("boom")

	got := Classify(cause, StageExtract, "card.pdf")

	assert.Equal(t, KindInternalFault, got.Kind)
	assert.ErrorIs(t, got, cause)
	assert.Nil(t, Classify(nil, StageExtract, "card.pdf"))
}

func TestError_PublicMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "stage and filename",
			err:  &Error{Kind: KindInvalidInput, Stage: StageValidate, Filename: "id.txt", Message: ErrInvalidExtension.Error()},
			want: `validation failed for "id.txt": invalid file type, expected a .pdf document`,
		},
		{
			name: "stage only",
			err:  &Error{Kind: KindInvalidInput, Stage: StageUpload, Message: "missing file field"},
			want: "upload failed: missing file field",
		},
		{
			name: "bare message",
			err:  &Error{Kind: KindInternalFault, Message: "unexpected error"},
			want: "unexpected error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.PublicMessage())
		})
	}
}

func TestError_PublicMessageHidesCause(t *testing.T) {
	err := &Error{
		Kind:     KindExtractionFailure,
		Stage:    StageExtract,
		Filename: "card.pdf",
		Message:  "model request failed",
		Err:      errors.New("dial tcp 10.0.0.1:443: connection refused"),
	}

	assert.NotContains(t, err.PublicMessage(), "10.0.0.1")
	assert.Contains(t, err.Error(), "10.0.0.1")
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindRenderFailure, KindOf(RenderError("x", nil)))
	assert.Equal(t, KindInternalFault, KindOf(errors.New("plain")))
}

func TestKind_IsClientFault(t *testing.T) {
	for _, k := range []Kind{KindInvalidInput, KindRenderFailure, KindExtractionFailure, KindParseFailure} {
		assert.True(t, k.IsClientFault(), k)
	}
	assert.False(t, KindInternalFault.IsClientFault())
	assert.False(t, Kind("unknown").IsClientFault())
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusCode(KindInvalidInput))
	assert.Equal(t, http.StatusBadRequest, StatusCode(KindRenderFailure))
	assert.Equal(t, http.StatusBadRequest, StatusCode(KindExtractionFailure))
	assert.Equal(t, http.StatusBadRequest, StatusCode(KindParseFailure))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(KindInternalFault))
}
