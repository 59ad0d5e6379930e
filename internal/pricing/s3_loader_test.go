package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// mockLoader is a mock implementation of the Loader interface for testing.
type mockLoader struct {
	loadFunc func(ctx context.Context, path string) (*Rules, error)
}

func (m *mockLoader) Load(ctx context.Context, path string) (*Rules, error) {
	if m.loadFunc != nil {
		return m.loadFunc(ctx, path)
	}
	return nil, errors.New("not implemented")
}

func rulesWithFee(fee int64) *Rules {
	r := DefaultRules()
	r.ShippingFee = decimal.NewFromInt(fee)
	return r
}

func TestFallbackLoader_S3Success(t *testing.T) {
	s3Loader := &mockLoader{
		loadFunc: func(ctx context.Context, path string) (*Rules, error) {
			assert.Equal(t, "pricing/rules.yaml", path, "S3 key should have prefix")
			return rulesWithFee(10), nil
		},
	}
	fileLoader := &mockLoader{
		loadFunc: func(ctx context.Context, path string) (*Rules, error) {
			t.Error("file loader should not be called when S3 succeeds")
			return nil, errors.New("should not be called")
		},
	}

	fallback := NewFallbackLoader(s3Loader, fileLoader, "pricing/", true, zerolog.Nop())

	rules, err := fallback.Load(context.Background(), "rules.yaml")
	assert.NoError(t, err)
	assert.Equal(t, "10", rules.ShippingFee.String())
}

func TestFallbackLoader_S3FailsFallsBackToLocal(t *testing.T) {
	s3Loader := &mockLoader{
		loadFunc: func(ctx context.Context, path string) (*Rules, error) {
			return nil, errors.New("S3 connection failed")
		},
	}
	fileLoader := &mockLoader{
		loadFunc: func(ctx context.Context, path string) (*Rules, error) {
			assert.Equal(t, "rules.yaml", path, "local path should not have prefix")
			return rulesWithFee(20), nil
		},
	}

	fallback := NewFallbackLoader(s3Loader, fileLoader, "pricing/", true, zerolog.Nop())

	rules, err := fallback.Load(context.Background(), "rules.yaml")
	assert.NoError(t, err)
	assert.Equal(t, "20", rules.ShippingFee.String())
}

func TestFallbackLoader_S3Disabled(t *testing.T) {
	s3Loader := &mockLoader{
		loadFunc: func(ctx context.Context, path string) (*Rules, error) {
			t.Error("S3 loader should not be called when S3 is disabled")
			return nil, errors.New("should not be called")
		},
	}
	fileLoader := &mockLoader{
		loadFunc: func(ctx context.Context, path string) (*Rules, error) {
			return rulesWithFee(30), nil
		},
	}

	fallback := NewFallbackLoader(s3Loader, fileLoader, "pricing/", false, zerolog.Nop())

	rules, err := fallback.Load(context.Background(), "rules.yaml")
	assert.NoError(t, err)
	assert.Equal(t, "30", rules.ShippingFee.String())
}

func TestFallbackLoader_S3LoaderNil(t *testing.T) {
	fileLoader := &mockLoader{
		loadFunc: func(ctx context.Context, path string) (*Rules, error) {
			return rulesWithFee(40), nil
		},
	}

	fallback := NewFallbackLoader(nil, fileLoader, "pricing/", true, zerolog.Nop())

	rules, err := fallback.Load(context.Background(), "rules.yaml")
	assert.NoError(t, err)
	assert.Equal(t, "40", rules.ShippingFee.String())
}

func TestFallbackLoader_BothFail(t *testing.T) {
	s3Loader := &mockLoader{
		loadFunc: func(ctx context.Context, path string) (*Rules, error) {
			return nil, errors.New("S3 error")
		},
	}
	fileLoader := &mockLoader{
		loadFunc: func(ctx context.Context, path string) (*Rules, error) {
			return nil, errors.New("file not found")
		},
	}

	fallback := NewFallbackLoader(s3Loader, fileLoader, "pricing/", true, zerolog.Nop())

	rules, err := fallback.Load(context.Background(), "rules.yaml")
	assert.Error(t, err)
	assert.Nil(t, rules)
	assert.Contains(t, err.Error(), "file not found")
}
