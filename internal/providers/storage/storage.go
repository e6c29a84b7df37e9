package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/smallbiznis/referra/internal/config"
	"go.uber.org/zap"
)

// Provider persists uploaded documents and returns a public URL for them.
type Provider interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

type localProvider struct {
	dir     string
	baseURL string
	log     *zap.Logger
}

// NewLocal stores files on disk under cfg.StorageDir, served back under
// /files.
func NewLocal(cfg config.Config, log *zap.Logger) (Provider, error) {
	if err := os.MkdirAll(cfg.StorageDir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create dir: %w", err)
	}
	return &localProvider{
		dir:     cfg.StorageDir,
		baseURL: cfg.PublicBaseURL,
		log:     log.Named("storage.local"),
	}, nil
}

func (p *localProvider) Upload(_ context.Context, filename string, r io.Reader) (string, error) {
	name := uuid.NewString() + sanitizeExt(filename)
	path := filepath.Join(p.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("storage: create: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("storage: write: %w", err)
	}

	p.log.Debug("file stored", zap.String("name", name))
	return p.baseURL + "/files/" + name, nil
}

func sanitizeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if len(ext) > 10 {
		return ""
	}
	for _, r := range ext {
		if r != '.' && (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
