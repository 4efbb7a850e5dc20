// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package bitfhe

import (
	"errors"
	"sync"
	"testing"
)

func testSetup(t *testing.T) (Parameters, *Encryptor, *Decryptor, *Evaluator) {
	t.Helper()

	params, err := NewParametersFromLiteral(PN10QP27)
	if err != nil {
		t.Fatalf("failed to create parameters: %v", err)
	}

	kgen := NewKeyGenerator(params)
	sk := kgen.GenSecretKey()
	bsk := kgen.GenBootstrapKey(sk)

	return params, NewEncryptor(params, sk), NewDecryptor(params, sk), NewEvaluator(params, bsk)
}

func TestSecretKeyShared(t *testing.T) {
	params, err := NewParametersFromLiteral(PN10QP27)
	if err != nil {
		t.Fatalf("failed to create parameters: %v", err)
	}

	// Bootstrap outputs are returned without key switching, which is only
	// sound when blind rotation runs under the encryption key itself.
	sk := NewKeyGenerator(params).GenSecretKey()
	if sk.SKLWE != sk.SKBR {
		t.Fatal("SKLWE and SKBR must be the same key")
	}
}

func TestEncryptDecrypt(t *testing.T) {
	_, enc, dec, _ := testSetup(t)

	for _, v := range []bool{false, true} {
		got, err := dec.Decrypt(enc.Encrypt(v))
		if err != nil {
			t.Fatalf("decrypt: %v", err)
		}
		if got != v {
			t.Errorf("decrypt(encrypt(%v)) = %v", v, got)
		}
	}
}

func TestTrivialEncrypt(t *testing.T) {
	params, _, dec, _ := testSetup(t)

	for _, v := range []bool{false, true} {
		got, err := dec.Decrypt(TrivialEncrypt(params, v))
		if err != nil {
			t.Fatalf("decrypt: %v", err)
		}
		if got != v {
			t.Errorf("decrypt(trivial(%v)) = %v", v, got)
		}
	}
}

func TestNOT(t *testing.T) {
	_, enc, dec, eval := testSetup(t)

	for _, v := range []bool{false, true} {
		got, err := dec.Decrypt(eval.NOT(enc.Encrypt(v)))
		if err != nil {
			t.Fatalf("decrypt: %v", err)
		}
		if got != !v {
			t.Errorf("NOT(%v) = %v, want %v", v, got, !v)
		}
	}
}

func TestBinaryGates(t *testing.T) {
	_, enc, dec, eval := testSetup(t)

	gates := []struct {
		name string
		op   func(*Ciphertext, *Ciphertext) (*Ciphertext, error)
		fn   func(a, b bool) bool
	}{
		{"AND", eval.AND, func(a, b bool) bool { return a && b }},
		{"OR", eval.OR, func(a, b bool) bool { return a || b }},
		{"XOR", eval.XOR, func(a, b bool) bool { return a != b }},
		{"NAND", eval.NAND, func(a, b bool) bool { return !(a && b) }},
		{"NOR", eval.NOR, func(a, b bool) bool { return !(a || b) }},
		{"XNOR", eval.XNOR, func(a, b bool) bool { return a == b }},
	}

	for _, g := range gates {
		t.Run(g.name, func(t *testing.T) {
			for _, a := range []bool{false, true} {
				for _, b := range []bool{false, true} {
					ct, err := g.op(enc.Encrypt(a), enc.Encrypt(b))
					if err != nil {
						t.Fatalf("%s error: %v", g.name, err)
					}
					got, err := dec.Decrypt(ct)
					if err != nil {
						t.Fatalf("decrypt: %v", err)
					}
					if want := g.fn(a, b); got != want {
						t.Errorf("%s(%v, %v) = %v, want %v", g.name, a, b, got, want)
					}
				}
			}
		})
	}
}

func TestGatesOnTrivialOperands(t *testing.T) {
	params, enc, dec, eval := testSetup(t)

	// A trivial constant must combine with a real ciphertext like any
	// other operand.
	ct, err := eval.AND(enc.Encrypt(true), TrivialEncrypt(params, true))
	if err != nil {
		t.Fatalf("AND error: %v", err)
	}
	got, err := dec.Decrypt(ct)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !got {
		t.Errorf("AND(enc(true), trivial(true)) = false, want true")
	}
}

func TestShallowCopyConcurrent(t *testing.T) {
	_, enc, dec, eval := testSetup(t)

	const n = 4
	cts := make([]*Ciphertext, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int, ev *Evaluator) {
			defer wg.Done()
			cts[i], errs[i] = ev.AND(enc.Encrypt(true), enc.Encrypt(i%2 == 0))
		}(i, eval.ShallowCopy())
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("AND error: %v", errs[i])
		}
		got, err := dec.Decrypt(cts[i])
		if err != nil {
			t.Fatalf("decrypt: %v", err)
		}
		if want := i%2 == 0; got != want {
			t.Errorf("worker %d: got %v, want %v", i, got, want)
		}
	}
}

func TestDecryptRejectsMalformed(t *testing.T) {
	_, _, dec, _ := testSetup(t)

	if _, err := dec.Decrypt(nil); !errors.Is(err, ErrMalformedCiphertext) {
		t.Errorf("Decrypt(nil): got %v, want ErrMalformedCiphertext", err)
	}
	if _, err := dec.Decrypt(&Ciphertext{}); !errors.Is(err, ErrMalformedCiphertext) {
		t.Errorf("Decrypt(empty): got %v, want ErrMalformedCiphertext", err)
	}
}

func TestCiphertextSerialization(t *testing.T) {
	_, enc, dec, _ := testSetup(t)

	ct := enc.Encrypt(true)
	data, err := ct.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got := new(Ciphertext)
	if err := got.UnmarshalBinary(data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	v, err := dec.Decrypt(got)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !v {
		t.Errorf("round-tripped ciphertext decrypts to false, want true")
	}
}

func TestCiphertextVectorSerialization(t *testing.T) {
	_, enc, dec, _ := testSetup(t)

	want := []bool{true, false, true, true}
	data, err := MarshalCiphertexts(enc.EncryptBits(want))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	cts, err := UnmarshalCiphertexts(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	got, err := dec.DecryptBits(cts)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("round trip: got %d bits, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("bit %d: got %v, want %v", i, got[i], want[i])
		}
	}
}
