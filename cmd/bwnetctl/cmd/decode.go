// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cmd

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"code.hybscloud.com/bwnet"
)

func addDecodeCommand(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "decode <hex>",
		Short: "Parse a hex-encoded datagram and print its decoded trailer fields",
		Args:  cobra.ExactArgs(1),
		RunE:  runDecode,
	}
	root.AddCommand(cmd)
}

func runDecode(cmd *cobra.Command, args []string) error {
	raw, err := hex.DecodeString(args[0])
	if err != nil {
		return fmt.Errorf("decoding hex argument: %w", err)
	}

	p := bwnet.NewPacket()
	if len(raw) > p.Raw().MaxLen() {
		return fmt.Errorf("datagram of %d bytes exceeds max %d", len(raw), p.Raw().MaxLen())
	}
	copy(p.Raw().RawDataMut(), raw)

	var cfg bwnet.PacketConfig
	if err := p.SyncState(len(raw), &cfg); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "body:       %s\n", hex.EncodeToString(p.Data()))
	fmt.Fprintf(out, "reliable:   %t\n", cfg.Reliable())
	fmt.Fprintf(out, "on_channel: %t\n", cfg.OnChannel())
	fmt.Fprintf(out, "checksum:   %t\n", cfg.HasChecksum())
	if first, last, ok := cfg.SequenceRange(); ok {
		fmt.Fprintf(out, "fragment:   [%d, %d]\n", first, last)
	}
	if cfg.Reliable() || cfg.SequenceNum() != 0 {
		fmt.Fprintf(out, "seq:        %d\n", cfg.SequenceNum())
	}
	if ack, ok := cfg.CumulativeAck(); ok {
		fmt.Fprintf(out, "cum_ack:    %d\n", ack)
	}
	if n := cfg.SingleAcks().Len(); n > 0 {
		fmt.Fprintf(out, "acks:       %d queued\n", n)
	}
	return nil
}
