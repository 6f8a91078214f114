// Package vaultbak provides the client-side cryptographic core for the
// vaultbak backup service.
//
// All encryption happens on the device: data is sealed under keys derived
// from a user master key that never leaves the client, signed with a
// per-device keypair, and only then handed to the storage service. The
// service can verify integrity through the device's public key but can
// never recover plaintext, even with full access to its own infrastructure.
//
// Basic usage:
//
//	client, err := vaultbak.New(
//	    vaultbak.WithKeystore(vaultbak.NewMemoryKeystore()),
//	    vaultbak.WithTransport(store),
//	    vaultbak.WithDeviceID("laptop"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// First run: create the account and this device's keys.
//	session, err := client.Enroll(ctx, password)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer session.Close()
//
//	// Back up and restore.
//	id, err := session.Backup(ctx, "notes", plaintext, vaultbak.ClassificationConfidential)
//	plaintext, err = session.Restore(ctx, "notes", id)
//
// Subsequent runs unlock the existing account instead:
//
//	session, err := client.Unlock(ctx, password)
//
// The serverstore package is the storage-side counterpart: it links only the
// envelope parser and signature verification, so a deployed storage binary
// physically contains no decryption path.
package vaultbak
