package frames

import (
	"encoding/hex"
	"fmt"
	"github.com/ValentinKolb/hzwire/lib/protocol"
	"github.com/ValentinKolb/hzwire/lib/protocol/codec"
	"github.com/spf13/cobra"
	"io"
	"os"
	"strings"
)

var (
	// FramesCommands represents the frames command group
	FramesCommands = &cobra.Command{
		Use:   "frames",
		Short: "Inspect encoded messages",
	}

	decodeCmd = &cobra.Command{
		Use:   "decode [hex]",
		Short: "Prints the frames and flags of an encoded message",
		Long: `Prints the header fields, the frames and the flags of a message in its wire
format. The message is given as hex string, whitespace and a 0x prefix are ignored.
Fragments are printed as they are, they are not merged.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := parseHex(args[0])
			if err != nil {
				return err
			}
			return dumpMessage(os.Stdout, data)
		},
	}
)

func init() {
	FramesCommands.AddCommand(decodeCmd)
}

// parseHex decodes a hex string, whitespace and a 0x prefix are ignored
func parseHex(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex string: %w", err)
	}
	return data, nil
}

// dumpMessage writes a readable description of the encoded message to w
func dumpMessage(w io.Writer, data []byte) error {
	msg, err := protocol.ReadMessageBytes(data)
	if err != nil {
		return fmt.Errorf("failed to read message: %w", err)
	}

	start := msg.StartFrame()
	if start.HasUnfragmentedMessageFlags() {
		fmt.Fprintf(w, "type:           %s (0x%06x)\n", codec.MessageTypeName(msg.MessageType()), msg.MessageType())
		fmt.Fprintf(w, "correlation id: %d\n", msg.CorrelationID())
		// requests carry the partition id, responses the backup acks at the same offset
		isRequest := msg.MessageType()&0xFF == 0 && msg.MessageType() != codec.ErrorMessageType
		if isRequest && len(start.Content) >= protocol.RequestInitialFrameSize {
			fmt.Fprintf(w, "partition id:   %d\n", msg.PartitionID())
		} else if !isRequest && len(start.Content) >= protocol.ResponseInitialFrameSize {
			fmt.Fprintf(w, "backup acks:    %d\n", msg.NumberOfBackupAcks())
		}
	} else {
		fmt.Fprintf(w, "fragment:       %d\n", msg.FragmentationID())
	}
	fmt.Fprintf(w, "length:         %d bytes in %d frames\n", msg.TotalLength(), len(msg.Frames))
	fmt.Fprintln(w)

	// frames, indented by data structure depth
	depth := 0
	for i, frame := range msg.Frames {
		if frame.IsEndFrame() && depth > 0 {
			depth--
		}
		fmt.Fprintf(w, "%3d %s%-8s %s\n", i, strings.Repeat("  ", depth), frameKind(frame), frame.Flags())
		if frame.IsBeginFrame() {
			depth++
		}
	}
	return nil
}

// frameKind returns the marker name of a frame or its content length
func frameKind(frame *protocol.Frame) string {
	switch {
	case frame.IsNullFrame():
		return "NULL"
	case frame.IsBeginFrame():
		return "BEGIN"
	case frame.IsEndFrame():
		return "END"
	default:
		return fmt.Sprintf("%dB", len(frame.Content))
	}
}
