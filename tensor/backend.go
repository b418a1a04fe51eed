// Copyright 2026 Chalk ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/chalk-ml/chalk/internal/tensor"
)

// Backend is the compute interface tensors are parameterized over.
// See backend/cpu for the reference implementation.
type Backend = tensor.Backend
