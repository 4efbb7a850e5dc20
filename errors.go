// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package encircuit

import "errors"

// Common errors.
var (
	// ErrInvalidWireReference is returned when a builder operand or a
	// declared output references a wire that does not exist yet.
	ErrInvalidWireReference = errors.New("encircuit: wire reference out of range")

	// ErrBuilderFinished is returned by builder operations after Finish
	// has consumed the builder.
	ErrBuilderFinished = errors.New("encircuit: builder already finished")

	// ErrNoOutputs is returned by Finish when no output wire is declared.
	ErrNoOutputs = errors.New("encircuit: circuit declares no outputs")

	// ErrInputCountMismatch is returned when the plaintext vector passed to
	// EncryptInputs (or the ciphertext vector passed to AttachInputs) does
	// not match the circuit's declared input count.
	ErrInputCountMismatch = errors.New("encircuit: input count mismatch")

	// ErrEvaluation is returned when a referenced wire has no ciphertext
	// during evaluation. Unreachable for circuits produced by a Builder.
	ErrEvaluation = errors.New("encircuit: missing ciphertext for wire")

	// ErrDecryption is returned when an output ciphertext cannot be
	// decrypted under the client key.
	ErrDecryption = errors.New("encircuit: decryption failed")
)
