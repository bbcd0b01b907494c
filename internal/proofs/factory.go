package proofs

import (
	"context"
	"fmt"

	"contribot/internal/config"
)

// FromConfig builds the Store selected by PROOF_BACKEND. The returned
// cleanup func is never nil.
func FromConfig(ctx context.Context, cfg *config.Config) (Store, func() error, error) {
	noop := func() error { return nil }
	switch cfg.ProofBackend {
	case "", "local":
		s, err := NewLocalStore(cfg.ProofDir)
		return s, noop, err
	case "gcs":
		s, err := NewGCSStore(ctx, cfg.ProofBucket)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	case "s3":
		s, err := NewS3Store(ctx, cfg.ProofBucket, cfg.AWSRegion)
		return s, noop, err
	default:
		return nil, noop, fmt.Errorf("unsupported proof backend: %s", cfg.ProofBackend)
	}
}
