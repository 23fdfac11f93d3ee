package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	secureClient "github.com/kabourne/wordmatch/internal/secure/client"
)

// RunFetch fetches one vocabulary unit over the encrypted channel and writes
// the decrypted payload to w. It exercises the full exchange end to end,
// which makes it useful for smoke-testing a deployment.
func RunFetch(
	ctx context.Context,
	client *secureClient.SecureChannelClient,
	logger *slog.Logger,
	w io.Writer,
	book, unit string,
) error {
	if book == "" || unit == "" {
		return fmt.Errorf("--book and --unit are required")
	}

	payload, err := client.RequestPayload(ctx, book, unit)
	if err != nil {
		return fmt.Errorf("failed to fetch %s/%s: %w", book, unit, err)
	}

	logger.Info("payload fetched and verified",
		slog.String("book", book),
		slog.String("unit", unit),
		slog.Int("payload_bytes", len(payload)),
	)

	fmt.Fprintln(w, string(payload))

	return nil
}
