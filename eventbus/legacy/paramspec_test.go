package legacy

import (
	"errors"
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestParamSpec(t *testing.T) {
	params := []Param{
		"A",
		nil,
		true,
		3,
		nil,
	}

	var (
		a   string
		b   bool
		c   int
		opt int
	)

	spec := ParamSpec(4,
		AssertAndStore(&a),
		nil,
		AssertAndStore(&b),
		AssertAndStore(&c),
		Optional(AssertAndStore(&opt)),
	)
	assert.NoError(t, spec(params))
	assert.Equal(t, "A", a)
	assert.Equal(t, true, b)
	assert.Equal(t, 3, c)
	assert.Equal(t, 0, opt)
}

func TestParamSpec_Failures(t *testing.T) {
	var (
		a string
		b int
	)
	spec := ParamSpec(2, AssertAndStore(&a), AssertAndStore(&b))
	assert.ErrorIs(t, spec([]Param{"A"}), ErrNotEnoughParams)

	err := spec([]Param{1, "B"})
	assert.ErrorIs(t, err, ErrUnexpectedTypeParam)
	assert.Contains(t, err.Error(), "position 0")
	assert.Contains(t, err.Error(), "position 1")

	assert.Error(t, AssertAndStore[string](nil)(0, "A"))
	assert.ErrorIs(t, AssertAndStore(&a)(0, nil), ErrUnexpectedTypeParam)
}

func TestAnyPass(t *testing.T) {
	stringOrInt := AnyPass(IsType[string](), IsType[int]())
	assert.NoError(t, stringOrInt(0, "A"))
	assert.NoError(t, stringOrInt(0, 1))
	err := stringOrInt(0, true)
	assert.ErrorIs(t, err, ErrUnexpectedTypeParam)
}

func TestMapParam(t *testing.T) {
	var target error
	expected := errors.New("mapped")
	assert.NoError(t, MapParam(&target, []Param{expected}))
	assert.Same(t, expected, target)
	assert.ErrorIs(t, MapParam(&target, nil), ErrNotEnoughParams)
}

func TestAssertParam(t *testing.T) {
	val, ok := AssertParam[string]("A")
	assert.True(t, ok)
	assert.Equal(t, "A", val)
	_, ok = AssertParam[string](nil)
	assert.False(t, ok)
}
