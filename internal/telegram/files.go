package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-telegram/bot"
)

// maxDownloadSize is the Bot API limit for files fetched by bots.
const maxDownloadSize = 20 << 20

// fetchFile returns a closure that downloads the Telegram file on demand.
func (h *Handler) fetchFile(fileID string) func(context.Context) ([]byte, error) {
	return func(ctx context.Context) ([]byte, error) {
		start := time.Now()
		defer func() { downloadDuration.Observe(time.Since(start).Seconds()) }()

		file, err := h.api.GetFile(ctx, &bot.GetFileParams{FileID: fileID})
		if err != nil {
			return nil, fmt.Errorf("get file %s: %w", fileID, err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.fileBaseURL+file.FilePath, nil)
		if err != nil {
			return nil, fmt.Errorf("build download request: %w", err)
		}
		resp, err := h.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("download file: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("download file: unexpected status %s", resp.Status)
		}
		data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadSize+1))
		if err != nil {
			return nil, fmt.Errorf("read file body: %w", err)
		}
		if len(data) > maxDownloadSize {
			return nil, fmt.Errorf("file exceeds %d bytes", maxDownloadSize)
		}
		return data, nil
	}
}
