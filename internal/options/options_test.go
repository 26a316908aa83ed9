package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type ceilingConfig struct {
	ceiling  int
	sinkName string
	calls    []string
}

var errNegativeCeiling = errors.New("ceiling cannot be negative")

func withCeiling(n int) Option[*ceilingConfig] {
	return New(func(c *ceilingConfig) error {
		if n < 0 {
			return errNegativeCeiling
		}
		c.ceiling = n
		c.calls = append(c.calls, "ceiling")

		return nil
	})
}

func withSink(name string) Option[*ceilingConfig] {
	return NoError(func(c *ceilingConfig) {
		c.sinkName = name
		c.calls = append(c.calls, "sink")
	})
}

func TestApply_InOrder(t *testing.T) {
	cfg := &ceilingConfig{}

	err := Apply(cfg, withCeiling(70), withSink("radio"), withCeiling(64))
	require.NoError(t, err)
	require.Equal(t, 64, cfg.ceiling)
	require.Equal(t, "radio", cfg.sinkName)
	require.Equal(t, []string{"ceiling", "sink", "ceiling"}, cfg.calls)
}

func TestApply_StopsAtFirstError(t *testing.T) {
	cfg := &ceilingConfig{}

	err := Apply(cfg, withCeiling(10), withCeiling(-1), withSink("never"))
	require.ErrorIs(t, err, errNegativeCeiling)
	require.Equal(t, 10, cfg.ceiling)
	require.Empty(t, cfg.sinkName)
}

func TestApply_SkipsNilAndEmpty(t *testing.T) {
	cfg := &ceilingConfig{}

	require.NoError(t, Apply(cfg))
	require.NoError(t, Apply(cfg, nil, withSink("stdout"), nil))
	require.Equal(t, "stdout", cfg.sinkName)
	require.Zero(t, cfg.ceiling)
}

func TestNoError_PrimitiveTarget(t *testing.T) {
	var n int
	opt := NoError(func(p *int) { *p = 42 })

	require.NoError(t, opt.apply(&n))
	require.Equal(t, 42, n)
}
