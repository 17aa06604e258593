// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package password

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"golang.org/x/crypto/argon2"
)

// cheapParams keeps the tests fast. Production costs are exercised by
// nothing here except DefaultParams validation.
var cheapParams = Params{MemoryCost: 64, TimeCost: 1, Parallelism: 1}

func newTestHasher(t *testing.T, secret string) *Hasher {
	t.Helper()
	var key []byte
	if secret != "" {
		key = []byte(secret)
	}
	hasher, err := NewHasher(Config{Params: cheapParams, Secret: key})
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	return hasher
}

func TestHashAndVerify(t *testing.T) {
	hasher := newTestHasher(t, "")

	tests := []struct {
		name      string
		stored    string
		candidate string
		want      bool
	}{
		{name: "match", stored: "password", candidate: "password", want: true},
		{name: "mismatch", stored: "testfsdf", candidate: "sdkfjcce", want: false},
		{name: "empty_password", stored: "", candidate: "", want: true},
		{name: "empty_candidate", stored: "password", candidate: "", want: false},
		{name: "unicode", stored: "pässwörd🔑", candidate: "pässwörd🔑", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stored, err := hasher.Hash([]byte(tt.stored))
			if err != nil {
				t.Fatalf("Hash: %v", err)
			}
			got, err := hasher.Verify([]byte(tt.candidate), stored)
			if err != nil {
				t.Fatalf("Verify: %v", err)
			}
			if got != tt.want {
				t.Errorf("Verify = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHashRecordFormat(t *testing.T) {
	hasher := newTestHasher(t, "")
	stored, err := hasher.Hash([]byte("password"))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(stored), &fields); err != nil {
		t.Fatalf("stored hash is not JSON: %v", err)
	}
	wantScalars := map[string]any{
		"family":    "Argon2",
		"algorithm": "argon2id",
		"version":   float64(0x13),
		"m_cost":    float64(64),
		"t_cost":    float64(1),
		"p_cost":    float64(1),
	}
	for key, want := range wantScalars {
		if fields[key] != want {
			t.Errorf("%s = %v, want %v", key, fields[key], want)
		}
	}

	salt, err := base64.RawStdEncoding.DecodeString(fields["salt"].(string))
	if err != nil || len(salt) != saltLength {
		t.Errorf("salt decodes to %d bytes (err %v), want %d", len(salt), err, saltLength)
	}
	hash, err := base64.RawStdEncoding.DecodeString(fields["hash"].(string))
	if err != nil || len(hash) != hashLength {
		t.Errorf("hash decodes to %d bytes (err %v), want %d", len(hash), err, hashLength)
	}
}

func TestHashUsesFreshSalt(t *testing.T) {
	hasher := newTestHasher(t, "")
	first, err := hasher.Hash([]byte("password"))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	second, err := hasher.Hash([]byte("password"))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if first == second {
		t.Error("two hashes of the same password are identical")
	}
}

func TestVerifyUsesStoredParameters(t *testing.T) {
	old, err := NewHasher(Config{Params: cheapParams})
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	stored, err := old.Hash([]byte("password"))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	raised, err := NewHasher(Config{Params: Params{MemoryCost: 128, TimeCost: 2, Parallelism: 2}})
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	ok, err := raised.Verify([]byte("password"), stored)
	if err != nil || !ok {
		t.Errorf("Verify with raised costs = %v, %v; want true", ok, err)
	}
}

func TestVerifyKnownRecord(t *testing.T) {
	salt := []byte("0123456789abcdef")
	digest := argon2.IDKey([]byte("hunter2"), salt, 1, 64, 1, 32)
	stored := fmt.Sprintf(`{"family":"Argon2","salt":%q,"hash":%q,"p_cost":1,"m_cost":64,"t_cost":1,"version":19,"algorithm":"argon2id"}`,
		base64.RawStdEncoding.EncodeToString(salt), base64.RawStdEncoding.EncodeToString(digest))

	hasher := newTestHasher(t, "")
	ok, err := hasher.Verify([]byte("hunter2"), stored)
	if err != nil || !ok {
		t.Errorf("Verify = %v, %v; want true", ok, err)
	}

	argon2i := argon2.Key([]byte("hunter2"), salt, 1, 64, 1, 32)
	storedI := fmt.Sprintf(`{"family":"Argon2","salt":%q,"hash":%q,"p_cost":1,"m_cost":64,"t_cost":1,"version":19,"algorithm":"argon2i"}`,
		base64.RawStdEncoding.EncodeToString(salt), base64.RawStdEncoding.EncodeToString(argon2i))
	ok, err = hasher.Verify([]byte("hunter2"), storedI)
	if err != nil || !ok {
		t.Errorf("Verify argon2i = %v, %v; want true", ok, err)
	}
}

func TestSecret(t *testing.T) {
	peppered := newTestHasher(t, "pepper")
	stored, err := peppered.Hash([]byte("password"))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	if ok, err := peppered.Verify([]byte("password"), stored); err != nil || !ok {
		t.Errorf("same secret: Verify = %v, %v; want true", ok, err)
	}
	if ok, err := newTestHasher(t, "").Verify([]byte("password"), stored); err != nil || ok {
		t.Errorf("no secret: Verify = %v, %v; want false", ok, err)
	}
	if ok, err := newTestHasher(t, "other").Verify([]byte("password"), stored); err != nil || ok {
		t.Errorf("other secret: Verify = %v, %v; want false", ok, err)
	}
}

func TestVerifyMalformed(t *testing.T) {
	salt := base64.RawStdEncoding.EncodeToString([]byte("0123456789abcdef"))
	hash := base64.RawStdEncoding.EncodeToString(make([]byte, 32))
	valid := func(override string) string {
		return fmt.Sprintf(`{"family":"Argon2","salt":%q,"hash":%q,"p_cost":1,"m_cost":64,"t_cost":1,"version":19,"algorithm":"argon2id"%s}`,
			salt, hash, override)
	}

	tests := []struct {
		name   string
		stored string
	}{
		{name: "not_json", stored: "$argon2id$v=19$m=64,t=1,p=1$c2FsdA$aGFzaA"},
		{name: "empty", stored: ""},
		{name: "unknown_family", stored: `{"family":"Bcrypt"}`},
		{name: "argon2d", stored: valid(`,"algorithm":"argon2d"`)},
		{name: "old_version", stored: valid(`,"version":16`)},
		{name: "zero_time_cost", stored: valid(`,"t_cost":0`)},
		{name: "too_little_memory", stored: valid(`,"m_cost":8,"p_cost":4`)},
		{name: "parallelism_overflow", stored: valid(`,"p_cost":256`)},
		{name: "padded_salt", stored: valid(`,"salt":"c2FsdA=="`)},
		{name: "bad_hash_encoding", stored: valid(`,"hash":"!!!"`)},
		{name: "empty_hash", stored: valid(`,"hash":""`)},
	}
	hasher := newTestHasher(t, "")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := hasher.Verify([]byte("password"), tt.stored)
			if ok {
				t.Error("Verify accepted a malformed record")
			}
			if !errors.Is(err, ErrMalformedHash) {
				t.Errorf("error = %v, want ErrMalformedHash", err)
			}
		})
	}
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		wantErr bool
	}{
		{name: "defaults", params: DefaultParams()},
		{name: "minimum", params: Params{MemoryCost: 8, TimeCost: 1, Parallelism: 1}},
		{name: "zero_time", params: Params{MemoryCost: 64, TimeCost: 0, Parallelism: 1}, wantErr: true},
		{name: "zero_parallelism", params: Params{MemoryCost: 64, TimeCost: 1, Parallelism: 0}, wantErr: true},
		{name: "memory_below_lanes", params: Params{MemoryCost: 31, TimeCost: 1, Parallelism: 4}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			_, err = NewHasher(Config{Params: tt.params})
			if (err != nil) != tt.wantErr {
				t.Errorf("NewHasher() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
