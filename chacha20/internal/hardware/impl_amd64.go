// Copyright (C) 2019 Yawning Angel
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

//go:build amd64 && !purego

package hardware

import (
	"github.com/klauspost/cpuid/v2"

	"github.com/RustCrypto/stream-ciphers-sub000/chacha20/internal/bulk"
)

func init() {
	// The interleaved two-block pipeline needs the register file and
	// out-of-order window of an AVX2-class core to come out ahead of the
	// single-block loop; older cores run it slower.
	if cpuid.CPU.Supports(cpuid.AVX2) {
		hardwareImpls = append(hardwareImpls, bulk.Wide)
	}
	if cpuid.CPU.Supports(cpuid.SSSE3) {
		hardwareImpls = append(hardwareImpls, bulk.Impl)
	}
}
