package assert

import (
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestCollector_Unwrap(t *testing.T) {
	var (
		ErrA = errors.New("A")
		ErrB = errors.New("B")
		err  = CollectErrors().Add(ErrA).Add(ErrB).Result()
		as   = new(Collector[error])
	)

	require.NotNil(t, err)
	assert.ErrorIs(t, err, ErrA)
	assert.ErrorIs(t, err, ErrB)
	assert.ErrorAs(t, err, &as)
}

func TestCollector_Error(t *testing.T) {
	var (
		ErrA = errors.New("A")
		ErrB = errors.New("B")
		err  = CollectErrors(" ").Add(ErrA).Add(ErrB).Addf("C").Result()
	)
	require.NotNil(t, err)
	assert.Equal(t, "A B C", err.Error())
}

func TestCollector_Result_Empty(t *testing.T) {
	c := CollectErrors().Add(nil)
	assert.Equal(t, 0, c.Len())
	assert.NoError(t, c.Result())
	c.Add(errors.New("A"))
	assert.Equal(t, 1, c.Len())
	assert.Error(t, c.Result())
	c.Reset()
	assert.NoError(t, c.Result())
}

type handlerFailure struct {
	handler string
	err     error
}

func (f *handlerFailure) Error() string { return f.handler + ": " + f.err.Error() }
func (f *handlerFailure) Unwrap() error { return f.err }

func TestCollector_Typed(t *testing.T) {
	errTimeout := errors.New("timeout")
	c := Collect[*handlerFailure]("; ")
	c.Add(nil)
	c.Add(&handlerFailure{handler: "OnString", err: errTimeout})
	c.Add(&handlerFailure{handler: "OnInt", err: errors.New("bad int")})

	require.Len(t, c.Errors(), 2, "Nil pointers should be skipped")
	assert.Equal(t, "OnString", c.Errors()[0].handler)
	err := c.Result()
	assert.EqualError(t, err, "OnString: timeout; OnInt: bad int")
	assert.ErrorIs(t, err, errTimeout)
	var failure *handlerFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "OnString", failure.handler)

	assert.Panics(t, func() {
		c.Addf("not a %s", "handlerFailure")
	})
}
