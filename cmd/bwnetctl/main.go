// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command bwnetctl encodes, decodes, and serves packets using the
// bwnet codec.
package main

import (
	"os"

	"code.hybscloud.com/bwnet/cmd/bwnetctl/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
