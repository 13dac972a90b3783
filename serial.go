// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package task

import "code.hybscloud.com/atomix"

// Serial is a monotonically increasing machine identifier.
// Each Run assigns the next serial value to its machine; serials
// appear in defect messages to attribute a bad jump to its task.
type Serial = uint32

// counter is the global monotonic counter for machine serials.
var counter atomix.Uint32

// nextSerial returns the next monotonically increasing serial.
func nextSerial() Serial {
	return counter.Add(1)
}
