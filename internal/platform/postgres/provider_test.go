package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/kidsafisha/api/internal/platform/config"
)

func TestProviderRequiresURL(t *testing.T) {
	provider := NewProvider(config.DatabaseConfig{})
	if _, err := provider.Pool(context.Background()); err == nil {
		t.Fatal("expected error for empty database url")
	}
}

func TestProviderRejectsMalformedURL(t *testing.T) {
	provider := NewProvider(config.DatabaseConfig{URL: "postgres://%zz"})
	if _, err := provider.Pool(context.Background()); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestProviderClosed(t *testing.T) {
	provider := NewProvider(config.DatabaseConfig{URL: "postgres://localhost/kids"})
	provider.Close()
	provider.Close()

	if _, err := provider.Pool(context.Background()); !errors.Is(err, ErrProviderClosed) {
		t.Fatalf("expected ErrProviderClosed, got %v", err)
	}
	if err := provider.Ping(context.Background()); !errors.Is(err, ErrProviderClosed) {
		t.Fatalf("expected ErrProviderClosed from ping, got %v", err)
	}
}
