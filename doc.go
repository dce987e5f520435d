// Package obb reads and writes Optical BlackBox (.obb) envelopes:
// signed, partially encrypted containers for distributing proprietary
// optical-component designs.
//
// An envelope carries public metadata (vendor, component name,
// paraxial properties) readable by anyone, alongside surface geometry
// that is encrypted to a single recipient using ephemeral ECDH over
// P-256, HKDF-SHA-256 and AES-256-GCM. An ECDSA signature by the
// vendor binds the cleartext structure and the ciphertext together, so
// neither the public fields nor the visibility arrangement can be
// altered without detection.
//
// Individual surfaces carry a visibility tag: public surfaces are
// stored in clear, encrypted surfaces only inside the ciphertext, and
// redacted surfaces contribute nothing but their index.
//
// Basic usage:
//
//	group, err := zmx.ParseFile("doublet.zmx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	meta, err := optics.ExtractMetadata(group, "acme-optics", "50mm Doublet")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	_, err = obb.WriteFile("doublet.obb", group, meta, vendorPriv, platformPub)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Anyone can inspect the public metadata.
//	meta, err = obb.ReadMetadataFile("doublet.obb")
//
//	// The platform holding the matching private key recovers the design.
//	meta, group, err = obb.ReadFile("doublet.obb", platformPriv, vendorPub)
package obb
