package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestGetVersion(t *testing.T) {
	version := getVersion()

	if version == "" {
		t.Error("getVersion() returned empty string")
	}

	// "dev" under go test, a semver when installed with go install @version
	if version != "dev" && !strings.HasPrefix(version, "v") {
		t.Errorf("getVersion() = %q, want 'dev' or 'vX.Y.Z'", version)
	}
}

func TestGetVersion_Ldflags(t *testing.T) {
	old := version
	version = "v1.2.3"
	defer func() { version = old }()

	if got := getVersion(); got != "v1.2.3" {
		t.Errorf("getVersion() = %q, want v1.2.3", got)
	}
}

func TestGetVersionInfo_Handler(t *testing.T) {
	info := getVersionInfo()

	if info.HandlerRuntime != "provided.al2023" {
		t.Errorf("HandlerRuntime = %q, want provided.al2023", info.HandlerRuntime)
	}
	want := []string{
		"Custom::EksCleanup",
		"Custom::SubnetTagging",
		"Custom::VpcPeerDnsResolution",
		"Custom::VpcPeeringAccepter",
		"Custom::VpcPeeringRoutes",
	}
	if strings.Join(info.HandlerTypes, ",") != strings.Join(want, ",") {
		t.Errorf("HandlerTypes = %v, want %v", info.HandlerTypes, want)
	}
}

func TestOutputVersion(t *testing.T) {
	info := versionInfo{
		Version:        "v1.2.3",
		Commit:         "abc123",
		Go:             "go1.24.0",
		HandlerRuntime: "provided.al2023",
		HandlerTypes:   []string{"Custom::EksCleanup", "Custom::SubnetTagging"},
	}

	var text bytes.Buffer
	if err := outputVersion(info, "text", &text); err != nil {
		t.Fatalf("outputVersion(text) error = %v", err)
	}
	for _, want := range []string{"wetwire-constructs v1.2.3", "commit:  abc123", "handler: provided.al2023 (Custom::EksCleanup, Custom::SubnetTagging)"} {
		if !strings.Contains(text.String(), want) {
			t.Errorf("text output missing %q:\n%s", want, text.String())
		}
	}

	var data bytes.Buffer
	if err := outputVersion(info, "json", &data); err != nil {
		t.Fatalf("outputVersion(json) error = %v", err)
	}
	var parsed versionInfo
	if err := json.Unmarshal(data.Bytes(), &parsed); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if parsed.Version != "v1.2.3" || len(parsed.HandlerTypes) != 2 {
		t.Errorf("parsed = %+v", parsed)
	}

	if err := outputVersion(info, "xml", &data); err == nil {
		t.Error("expected error for unknown format")
	}
}
