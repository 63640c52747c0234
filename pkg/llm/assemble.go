package llm

import "context"

// Assemble drains a stream produced by Client.StreamChatCompletion and returns
// the assembled message together with the finish reason of the done event.
//
// Deltas are absorbed in arrival order. The accumulator is finalized only once
// the transport has signalled completion with a done event and closed the
// channel; on an error event, context cancellation, or a channel that closes
// without a done event, the partial state is discarded and an error returned.
func Assemble(ctx context.Context, events <-chan StreamEvent) (*AssembledMessage, string, error) {
	acc := NewDeltaAccumulator()
	done := false
	finishReason := ""

	for {
		select {
		case <-ctx.Done():
			return nil, "", ctx.Err()

		case event, ok := <-events:
			if !ok {
				if !done {
					// a transport that stops on cancellation closes without a done event
					if err := ctx.Err(); err != nil {
						return nil, "", err
					}
					return nil, "", ErrIncompleteStream
				}
				msg := acc.Finalize()
				return &msg, finishReason, nil
			}

			switch {
			case event.IsError():
				return nil, "", event.Error
			case event.IsDone():
				done = true
				finishReason = event.FinishReason
			case event.IsDelta() && !done:
				acc.Absorb(event.Delta)
			}
		}
	}
}
