// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package bo provides native byte order selection.
//
// The bwnet wire format itself is hard little-endian and never
// consults this package; session's local-loopback PrefixPolicy uses
// Native() to avoid a pointless byteswap on the opaque prefix field
// when both ends of a connection are the same process.
//
// Implementation is architecture-specific via build tags where commonly known,
// and falls back to a portable runtime detection elsewhere.
package bo
