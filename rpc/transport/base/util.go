package base

import (
	"bufio"
	"errors"
	"fmt"
	"github.com/ValentinKolb/hzwire/lib/protocol"
	"github.com/ValentinKolb/hzwire/lib/protocol/codec"
	"io"
	"net"
)

// writeMessage writes a message to the connection. Messages with a wire size
// above fragmentSize are split into fragments, fragmentSize <= 0 disables fragmentation.
// All frames are written with net.Buffers, so one call results in one writev per message.
func writeMessage(w io.Writer, msg *protocol.ClientMessage, fragmentSize int, fragmentationID func() int64) error {
	if fragmentSize <= 0 || msg.TotalLength() <= fragmentSize {
		return protocol.WriteMessage(w, msg)
	}

	for _, fragment := range protocol.SplitIntoFragments(msg, fragmentSize, fragmentationID()) {
		if err := protocol.WriteMessage(w, fragment); err != nil {
			return err
		}
	}
	return nil
}

// readMessage reads messages from the connection until a complete message is
// assembled. Fragments without a begin fragment are dropped.
func readMessage(r *bufio.Reader, maxFrameSize int, assembler *protocol.FragmentAssembler) (*protocol.ClientMessage, error) {
	for {
		msg, err := protocol.ReadMessage(r, maxFrameSize)
		if err != nil {
			return nil, err
		}

		merged, complete, err := assembler.Add(msg)
		if errors.Is(err, protocol.ErrFragmentMissing) {
			Logger.Warningf("Dropping fragment: %v", err)
			continue
		}
		if err != nil {
			return nil, err
		}
		if complete {
			return merged, nil
		}
	}
}

// isClosedErr reports errors caused by closing the connection or the peer hanging up
func isClosedErr(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed)
}

// ErrAuthenticationFailed is returned by Connect if the member rejects the credentials or the cluster name
var ErrAuthenticationFailed = errors.New("transport: authentication failed")

// authenticationStatusName returns a readable name of an authentication status
func authenticationStatusName(status byte) string {
	switch status {
	case codec.AuthenticationStatusAuthenticated:
		return "authenticated"
	case codec.AuthenticationStatusCredentialsFailed:
		return "credentials failed"
	case codec.AuthenticationStatusSerializationVersionMismatch:
		return "serialization version mismatch"
	case codec.AuthenticationStatusNotAllowedInCluster:
		return "not allowed in cluster"
	default:
		return fmt.Sprintf("unknown status %d", status)
	}
}
