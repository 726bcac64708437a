package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainCase       = "literality/case/v1"
	DomainTable      = "literality/table/v1"
	DomainCaseResult = "literality/case-result/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// CaseID computes the content-addressed ID of an evaluation input.
// The same tree and environment always produce the same ID, which is what
// makes evaluation results cacheable and comparable across runs.
func CaseID(n Node, env Env) (string, error) {
	obj := map[string]any{
		"expr": n,
		"env":  env,
	}
	if env == nil {
		obj["env"] = map[string]any{}
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("CaseID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainCase, canonical), nil
}

// TableFingerprint hashes a canonical description of a signature table.
// Callers pass the table's definitions in their canonical map form.
func TableFingerprint(definitions []any) (string, error) {
	canonical, err := MarshalCanonical(definitions)
	if err != nil {
		return "", fmt.Errorf("TableFingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainTable, canonical), nil
}

// CaseResultID computes the ID of a case result within a run.
func CaseResultID(runID string, ordinal int, caseID string) (string, error) {
	obj := map[string]any{
		"run_id":  runID,
		"ordinal": ordinal,
		"case_id": caseID,
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("CaseResultID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainCaseResult, canonical), nil
}
