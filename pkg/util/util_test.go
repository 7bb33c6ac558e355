package util

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapErrorf(t *testing.T) {
	orig := errors.New("no path")
	err := WrapErrorf(orig, ErrNotFound, "no path found from %d to %d", 1, 2)

	assert.True(t, errors.Is(err, orig))

	var ue *Error
	assert.True(t, errors.As(err, &ue))
	assert.Equal(t, ErrNotFound, ue.Code())
	assert.Equal(t, "no path found from 1 to 2", ue.Message())
	assert.Equal(t, "no path found from 1 to 2: no path", ue.Error())
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 60.0, Clamp(64.0, 0.1, 60.0))
	assert.Equal(t, 0.1, Clamp(-3.0, 0.1, 60.0))
	assert.Equal(t, 5, Clamp(5, 0, 10))
}

func TestReverseG(t *testing.T) {
	arr := []int{1, 2, 3}
	rev := ReverseG(arr)
	assert.Equal(t, []int{3, 2, 1}, rev)
	assert.Equal(t, []int{1, 2, 3}, arr)
}
