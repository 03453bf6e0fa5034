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

//go:build arm64 && !purego

package hardware

import (
	"golang.org/x/sys/cpu"

	"github.com/RustCrypto/stream-ciphers-sub000/salsa20/internal/bulk"
)

func init() {
	if cpu.ARM64.HasASIMD {
		hardwareImpls = append(hardwareImpls, bulk.Wide)
	}
}
