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

var (
	encodeReliable bool
	encodeOnChan   bool
	encodeChecksum bool
	encodeSeq      uint32
	encodeAck      uint32
	encodeBodyHex  string
)

func addEncodeCommand(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Build a packet from flags and print it as hex",
		Args:  cobra.NoArgs,
		RunE:  runEncode,
	}
	f := cmd.Flags()
	f.BoolVar(&encodeReliable, "reliable", false, "Set the IS_RELIABLE flag")
	f.BoolVar(&encodeOnChan, "on-channel", false, "Set the ON_CHANNEL flag")
	f.BoolVar(&encodeChecksum, "checksum", false, "Append a trailer checksum")
	f.Uint32Var(&encodeSeq, "seq", 0, "Sequence number; encoded only together with --reliable")
	f.Uint32Var(&encodeAck, "cumulative-ack", 0, "Cumulative ack (0 to omit)")
	f.StringVar(&encodeBodyHex, "body", "", "Body bytes as hex")
	root.AddCommand(cmd)
}

func runEncode(cmd *cobra.Command, args []string) error {
	body, err := hex.DecodeString(encodeBodyHex)
	if err != nil {
		return fmt.Errorf("decoding --body: %w", err)
	}

	p := bwnet.NewPacket()
	if len(body) > p.MaxLen() {
		return fmt.Errorf("body of %d bytes exceeds max %d", len(body), p.MaxLen())
	}
	copy(p.Grow(len(body)), body)

	cfg := bwnet.NewPacketConfig()
	cfg.SetReliable(encodeReliable)
	cfg.SetOnChannel(encodeOnChan)
	cfg.SetChecksum(encodeChecksum)
	if encodeSeq != 0 {
		cfg.SetSequenceNum(encodeSeq)
	}
	if encodeAck != 0 {
		cfg.SetCumulativeAck(encodeAck)
	}

	p.SyncData(cfg)
	fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(p.Raw().Data()))
	return nil
}
