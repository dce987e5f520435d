//go:build integration

// Package integration exercises the full pipeline end to end: parse a
// Zemax design, compute its metadata, seal it into an envelope on
// disk, then inspect and decrypt it with freshly generated keys.
//
// Run with:
//
//	go test -tags integration ./integration/
package integration

import (
	"os"
	"path/filepath"
	"testing"

	obb "github.com/opticalblackbox/obb-go"
	"github.com/opticalblackbox/obb-go/keys"
	"github.com/opticalblackbox/obb-go/optics"
	"github.com/opticalblackbox/obb-go/zmx"
)

const doubletZMX = `MODE SEQ
NAME Achromatic Doublet
WAVM 1 0.4861 1
WAVM 2 0.5876 1
WAVM 3 0.6563 1
SURF 0
  TYPE STANDARD
  CURV 0.0
  THIC INFINITY
  DIAM 10.0
SURF 1
  STOP
  TYPE STANDARD
  CURV 0.030167
  THIC 4.0
  GLAS N-BK7 0 0
  DIAM 12.7
SURF 2
  TYPE STANDARD
  CURV -0.044506
  THIC 2.5
  GLAS N-SF5 0 0
  DIAM 12.7
SURF 3
  TYPE STANDARD
  CURV -0.007306
  THIC 43.2
  DIAM 12.7
`

func TestIntegration_FullPipeline(t *testing.T) {
	dir := t.TempDir()

	zmxPath := filepath.Join(dir, "doublet.zmx")
	if err := os.WriteFile(zmxPath, []byte(doubletZMX), 0o644); err != nil {
		t.Fatal(err)
	}

	// Vendor and platform key pairs, persisted through the keys package
	// the way the CLI does it.
	vendorKey, err := keys.Generate()
	if err != nil {
		t.Fatal(err)
	}
	platformKey, err := keys.Generate()
	if err != nil {
		t.Fatal(err)
	}
	vendorKeyPath := filepath.Join(dir, "vendor.key")
	if err := keys.SavePrivateKey(vendorKeyPath, vendorKey, "test-password"); err != nil {
		t.Fatal(err)
	}
	loadedVendor, err := keys.LoadPrivateKey(vendorKeyPath, "test-password")
	if err != nil {
		t.Fatal(err)
	}

	group, err := zmx.ParseFile(zmxPath)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := group.NumSurfaces(); got != 4 {
		t.Fatalf("surfaces = %d, want 4", got)
	}

	// Encrypt the cemented surface, redact the rear.
	group.Surfaces[2].Visibility = obb.VisibilityEncrypted
	group.Surfaces[3].Visibility = obb.VisibilityRedacted

	meta, err := optics.ExtractMetadata(group, "acme-optics", "50mm Achromat",
		optics.WithPartNumber("AC254-050-A"))
	if err != nil {
		t.Fatalf("extract metadata: %v", err)
	}
	if meta.EFLmm <= 0 {
		t.Errorf("EFL = %v, want positive", meta.EFLmm)
	}

	obbPath := filepath.Join(dir, "doublet.obb")
	if _, err := obb.WriteFile(obbPath, group, meta, loadedVendor, &platformKey.PublicKey); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !obb.IsOBBFile(obbPath) {
		t.Error("IsOBBFile() = false for a written envelope")
	}

	// Keyless inspection sees the visibility arrangement.
	info, err := obb.ReadMetadataFile(obbPath)
	if err != nil {
		t.Fatalf("read metadata: %v", err)
	}
	if info.Mode != obb.ModeSelective {
		t.Errorf("mode = %v, want selective", info.Mode)
	}
	if info.PublicSurfaces != 2 || info.EncryptedSurfaces != 1 || info.RedactedSurfaces != 1 {
		t.Errorf("visibility counts = %d/%d/%d, want 2/1/1",
			info.PublicSurfaces, info.EncryptedSurfaces, info.RedactedSurfaces)
	}

	// Full decryption with the platform key.
	gotMeta, recovered, err := obb.ReadFile(obbPath, platformKey, &vendorKey.PublicKey)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if gotMeta.VendorID != "acme-optics" {
		t.Errorf("vendor = %q", gotMeta.VendorID)
	}
	if got := recovered.NumSurfaces(); got != 4 {
		t.Fatalf("recovered surfaces = %d, want 4", got)
	}
	if recovered.Surfaces[2].Material != "N-SF5" {
		t.Errorf("encrypted surface lost its material: %+v", recovered.Surfaces[2])
	}
	if recovered.Surfaces[3].Visibility != obb.VisibilityRedacted {
		t.Errorf("rear surface not redacted: %+v", recovered.Surfaces[3])
	}
	if recovered.Surfaces[3].Material != "" || !recovered.Surfaces[3].Radius.IsInf() {
		t.Errorf("redacted surface leaked fields: %+v", recovered.Surfaces[3])
	}

	// A third party with the wrong platform key gets nothing.
	intruder, err := keys.Generate()
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := obb.ReadFile(obbPath, intruder, &vendorKey.PublicKey); err == nil {
		t.Error("read with wrong platform key succeeded")
	}
}
