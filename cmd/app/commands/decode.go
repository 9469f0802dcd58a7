package commands

import (
	"context"
	"fmt"
)

// RunDecode verifies and decrypts a transport token and writes the recovered
// payload to the output. Any rejected token produces the same error with no
// indication of which verification step failed.
func RunDecode(ctx context.Context, io IOTuple, token string) error {
	token, err := readPayload(token, io.Reader)
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

	plaintext, err := transformer.Decode(token)
	if err != nil {
		return err
	}

	fmt.Fprintln(io.Writer, plaintext)
	return nil
}
