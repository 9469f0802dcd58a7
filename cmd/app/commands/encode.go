package commands

import (
	"context"
	"fmt"
)

// RunEncode converts a plaintext payload into a transport token and writes it
// to the output. A payload of "-" is read from the input reader instead, so
// session data with shell-hostile characters can be piped in.
func RunEncode(ctx context.Context, io IOTuple, payload string) error {
	payload, err := readPayload(payload, io.Reader)
	if err != nil {
		return err
	}

	container, err := newContainer()
	if err != nil {
		return err
	}
	logger := container.Logger()
	defer closeContainer(container, logger)

	transformer, err := container.Transformer()
	if err != nil {
		return fmt.Errorf("failed to build transformer: %w", err)
	}

	token, err := transformer.Encode(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	fmt.Fprintln(io.Writer, token)
	return nil
}
