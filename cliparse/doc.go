// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - DatabaseURL: sqlite path or PostgreSQL connection string
  - VoteSecret: Key for voter fingerprints (required)
  - AdminKeySalt: Secret for admin key HMAC (required)
  - WebhookURL: Optional endpoint that receives final results
  - DefaultDuration: Election length when none is given (default: 1h)
  - DefaultThreshold: Two-round majority threshold (default: 0.5)

# CLI Flags

	-p            Server port
	-d            Database URL
	-t            Database type
	-webhook      Result webhook URL
	-duration     Default election duration
	-threshold    Default two-round threshold
	-vote-secret  Voter fingerprint key
	-admin-salt   Admin key salt

# Environment Variables

Flags fall back to environment variables:

	PORT                → -p
	DATABASE_URL        → -d
	DATABASE_TYPE       → -t
	PUBLISH_WEBHOOK_URL → -webhook
	DEFAULT_DURATION    → -duration
	DEFAULT_THRESHOLD   → -threshold
	VOTE_SECRET         → -vote-secret
	ADMIN_KEY_SALT      → -admin-salt

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if:

  - VOTE_SECRET or ADMIN_KEY_SALT is missing
  - DATABASE_TYPE is neither sqlite nor postgres
  - DATABASE_URL is missing for postgres
  - the threshold is outside (0, 1] or the duration is not positive
*/
package cliparse
