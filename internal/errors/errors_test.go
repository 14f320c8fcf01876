package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"drawlab/domain/core"

	"github.com/stretchr/testify/assert"
)

func TestGetCodeClassifiesDomainErrors(t *testing.T) {
	cases := []struct {
		err  error
		code string
		http int
	}{
		{core.NewEmptyInputError("statistics"), CodeEmptyInput, http.StatusBadRequest},
		{core.NewMalformedDrawError(0, []int{1}, "short"), CodeMalformedDraw, http.StatusBadRequest},
		{&core.NoveltyExhaustedError{Target: 1}, CodeNoveltyExhausted, http.StatusUnprocessableEntity},
		{core.NewNotFoundError("run", "x"), CodeNotFound, http.StatusNotFound},
		{stderrors.New("disk on fire"), CodeInternalError, http.StatusInternalServerError},
		{Unavailable("busy"), CodeUnavailable, http.StatusServiceUnavailable},
		{PayloadTooLarge("big"), CodePayloadTooLarge, http.StatusRequestEntityTooLarge},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.code, GetCode(tc.err), "%v", tc.err)
		assert.Equal(t, tc.http, HTTPStatus(tc.err), "%v", tc.err)
	}
}

func TestWrapKeepsCodeAndChain(t *testing.T) {
	base := &core.NoveltyExhaustedError{Target: 10, Accepted: 3, Attempts: 100}
	wrapped := Wrap(fmt.Errorf("generation: %w", base), "analysis failed")

	assert.Equal(t, CodeNoveltyExhausted, GetCode(wrapped))
	assert.True(t, stderrors.Is(wrapped, core.ErrNoveltyExhausted))
	assert.Contains(t, wrapped.Error(), "analysis failed")

	rewrapped := Wrap(wrapped, "request failed")
	assert.Equal(t, CodeNoveltyExhausted, GetCode(rewrapped))
	assert.Nil(t, Wrap(nil, "nothing"))
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeInvalidInput, stderrors.New("bad k"))
	assert.Equal(t, CodeInvalidInput, GetCode(err))
	assert.True(t, IsAppError(err))
	assert.Nil(t, WithCode(CodeInvalidInput, nil))

	recoded := WithCode(CodeValidationError, InvalidInput("bad n"))
	assert.Equal(t, CodeValidationError, GetCode(recoded))
	assert.Equal(t, "bad n", recoded.Error())
}
