package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity. The version suffix
// enables future algorithm migration.
const (
	DomainModule   = "ferrule/module/v1"
	DomainFunction = "ferrule/function/v1"
	DomainConfig   = "ferrule/config/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null byte separator prevents
// domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ModuleHash computes the content-addressed identity of a module's IR.
// Stable across runs for the same parse; derived properties and overlays
// are excluded by construction (EncodeModule skips them).
func ModuleHash(m *Module) (string, error) {
	canonical, err := MarshalCanonical(EncodeModule(m))
	if err != nil {
		return "", fmt.Errorf("ModuleHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainModule, canonical), nil
}

// FunctionHash computes the content-addressed identity of one function.
func FunctionHash(fn *Function) (string, error) {
	canonical, err := MarshalCanonical(EncodeFunction(fn))
	if err != nil {
		return "", fmt.Errorf("FunctionHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainFunction, canonical), nil
}

// ConfigHash computes the identity of an annotation configuration rendered
// as a plain map. Runs with the same (ModuleHash, ConfigHash) pair must
// produce byte-identical output.
func ConfigHash(cfg map[string]any) (string, error) {
	canonical, err := MarshalCanonical(cfg)
	if err != nil {
		return "", fmt.Errorf("ConfigHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainConfig, canonical), nil
}

// MustModuleHash is like ModuleHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustModuleHash(m *Module) string {
	h, err := ModuleHash(m)
	if err != nil {
		panic(err)
	}
	return h
}

// MustFunctionHash is like FunctionHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustFunctionHash(fn *Function) string {
	h, err := FunctionHash(fn)
	if err != nil {
		panic(err)
	}
	return h
}
