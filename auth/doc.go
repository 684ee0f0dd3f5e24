// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides voter anonymization and admin key utilities.

# Voter Fingerprints

Ballots never store a raw voter id. The Anonymizer derives a per-election
fingerprint with HMAC-SHA256 keyed by the configured vote secret:

	anon, err := auth.NewAnonymizer(cfg.VoteSecret)
	fp := anon.Fingerprint(electionID, voterID)

The election id is mixed into the MAC input, so the same person has unrelated
fingerprints in different elections. NewAnonymizer refuses an empty secret or
the sample placeholder with ErrSecretUnconfigured; callers treat that as fatal.

# Admin Keys

Admin keys use HMAC-SHA256 to create deterministic, verifiable keys:

	adminKey := auth.GenerateAdminKey(electionID, salt)
	err := auth.ValidateAdminKey(electionID, adminKey, salt)

The key is URL-safe base64 encoded without padding. Since it's deterministic,
it can be validated without storing it in the database.

# ID Generation

Random hex IDs for ballots:

	id, err := auth.GenerateID(16)  // 32 hex characters
*/
package auth
