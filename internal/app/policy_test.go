package app

import (
	"errors"
	"testing"

	"github.com/dkeye/coderoom/internal/core"
	"github.com/stretchr/testify/assert"
)

func TestSimplePolicy(t *testing.T) {
	p := SimplePolicy{}
	assert.Equal(t, KickMember, p.OnBackPressure(nil, core.ErrBackpressure))
	assert.Equal(t, KickMember, p.OnBackPressure(nil, errors.Join(errors.New("x"), core.ErrBackpressure)))
	assert.Equal(t, DropFrame, p.OnBackPressure(nil, core.ErrConnClosed))
}
