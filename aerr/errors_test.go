package aerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Error_MessageComposesWithCause(t *testing.T) {
	assert := assert.New(t)

	plain := New("lookup failed")
	assert.Equal("lookup failed", plain.Error())

	wrapped := New("lookup failed", ErrMissingDocument)
	assert.Equal("lookup failed: "+ErrMissingDocument.Error(), wrapped.Error())

	causeOnly := New("", ErrTimeout)
	assert.Equal(ErrTimeout.Error(), causeOnly.Error())
}

func Test_Error_IsMatchesWrappedCause(t *testing.T) {
	assert := assert.New(t)

	err := New("evaluating attribute", ErrTimeout)
	assert.True(errors.Is(err, ErrTimeout))
	assert.False(errors.Is(err, ErrInterrupted))
}

func Test_IsAbnormal_TimeoutOnlyAbnormalInDebug(t *testing.T) {
	assert := assert.New(t)

	assert.True(IsAbnormal(ErrTimeout, true))
	assert.False(IsAbnormal(ErrTimeout, false))
	assert.True(IsAbnormal(ErrUninitSemantics, false))
}

func Test_UnwrapAbnormal_PanicsOnAbnormalOnly(t *testing.T) {
	assert := assert.New(t)

	assert.NotPanics(func() {
		got := UnwrapAbnormal(ErrInterrupted, true)
		assert.ErrorIs(got, ErrInterrupted)
	})
	assert.Panics(func() {
		UnwrapAbnormal(ErrUninitSemantics, false)
	})
}
